package studio

import (
	"fmt"
	"strings"
	"time"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/pipeline"
	"mockupstudio/internal/pixel"
	"mockupstudio/pkg/zip"
)

// Download is a file offered to the browser.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Asset names accepted by Download. Mockups are addressed as
// "mockup-<item id>".
const (
	AssetSource     = "source"
	AssetPrimary    = "primary"
	AssetPrintReady = "print-ready"
	mockupPrefix    = "mockup-"
)

type asset struct {
	key      string
	filename string
	img      *pixel.Image
}

func assets(snap pipeline.Snapshot) []asset {
	out := []asset{
		{key: AssetSource, filename: "original-upload.png", img: snap.Source},
		{key: AssetPrimary, filename: domain.DownloadName(snap.Title), img: snap.PrimaryImage},
		{key: AssetPrintReady, filename: domain.DownloadName(snap.Title + " print ready"), img: snap.PrintReady},
	}
	for _, it := range snap.Items {
		if it.Status == domain.StatusSuccess {
			out = append(out, asset{key: mockupPrefix + it.ID, filename: domain.DownloadName("Mockup " + it.Name), img: it.Result})
		}
	}
	return out
}

// Download encodes one image of the run as PNG.
func (s *Service) Download(runID, name string) (Download, error) {
	snap, err := s.snapshotOf(runID)
	if err != nil {
		return Download{}, err
	}
	name = strings.TrimSuffix(strings.TrimSpace(name), ".png")
	for _, a := range assets(snap) {
		if a.key != name || a.img == nil {
			continue
		}
		data, err := a.img.PNG()
		if err != nil {
			return Download{}, err
		}
		return Download{Filename: a.filename, ContentType: "image/png", Data: data}, nil
	}
	return Download{}, fmt.Errorf("%w: image %q is not available", domain.ErrNotFound, name)
}

// MockupsZip bundles every successful mockup of the run.
func (s *Service) MockupsZip(runID string) (Download, error) {
	snap, err := s.snapshotOf(runID)
	if err != nil {
		return Download{}, err
	}
	var files []zip.Asset
	for _, a := range assets(snap) {
		if !strings.HasPrefix(a.key, mockupPrefix) {
			continue
		}
		data, err := a.img.PNG()
		if err != nil {
			return Download{}, err
		}
		files = append(files, zip.Asset{Filename: a.filename, Data: data})
	}
	if len(files) == 0 {
		return Download{}, fmt.Errorf("%w: no successful mockups", domain.ErrNotFound)
	}
	data, err := zip.ArchiveAssets(files, time.Now())
	if err != nil {
		return Download{}, err
	}
	return Download{Filename: "mockups.zip", ContentType: "application/zip", Data: data}, nil
}

func (s *Service) snapshotOf(runID string) (pipeline.Snapshot, error) {
	snap, ok := s.orch.Snapshot()
	if !ok || snap.RunID != runID {
		return pipeline.Snapshot{}, fmt.Errorf("%w: run %s", domain.ErrNotFound, runID)
	}
	return snap, nil
}
