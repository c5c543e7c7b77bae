package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/pipeline"
	"mockupstudio/internal/pixel"
	"mockupstudio/internal/studio"
)

type startRunRequest struct {
	Image        string `json:"image"`
	Mode         string `json:"mode"`
	Instructions string `json:"instructions"`
}

type processRequest struct {
	Products []string `json:"products"`
}

type itemView struct {
	pipeline.ItemView
	ImageURL string `json:"image_url,omitempty"`
}

type runView struct {
	pipeline.Snapshot
	Busy   bool              `json:"busy"`
	Items  []itemView        `json:"items"`
	Images map[string]string `json:"images"`
}

func imageURL(runID, name string) string {
	return fmt.Sprintf("/v1/runs/%s/images/%s", runID, name)
}

func newRunView(s pipeline.Snapshot) runView {
	v := runView{Snapshot: s, Busy: s.Busy(), Items: make([]itemView, len(s.Items)), Images: map[string]string{}}
	for name, img := range map[string]*pixel.Image{
		studio.AssetSource:     s.Source,
		studio.AssetPrimary:    s.PrimaryImage,
		studio.AssetPrintReady: s.PrintReady,
	} {
		if img != nil {
			v.Images[name] = imageURL(s.RunID, name)
		}
	}
	for i, it := range s.Items {
		v.Items[i] = itemView{ItemView: it}
		if it.Status == domain.StatusSuccess && it.Result != nil {
			v.Items[i].ImageURL = imageURL(s.RunID, "mockup-"+it.ID)
		}
	}
	return v
}

func (a *App) StartRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	img, err := decodeImage(req.Image, "image")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := a.Studio.StartRun(r.Context(), studio.StartInput{Image: img, Mode: req.Mode, Instructions: req.Instructions})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, newRunView(snap))
}

func (a *App) CurrentRun(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.Studio.Current()
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "no run in progress")
		return
	}
	a.json(w, http.StatusOK, newRunView(snap))
}

func (a *App) ResetRun(w http.ResponseWriter, r *http.Request) {
	a.Studio.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ProcessRun(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := a.Studio.Process(chi.URLParam(r, "run_id"), req.Products)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, newRunView(snap))
}

func (a *App) RunDetails(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Studio.GenerateDetails(chi.URLParam(r, "run_id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, newRunView(snap))
}

func (a *App) RetryMockup(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Studio.RetryMockup(chi.URLParam(r, "run_id"), chi.URLParam(r, "item_id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, newRunView(snap))
}

func (a *App) RunImage(w http.ResponseWriter, r *http.Request) {
	dl, err := a.Studio.Download(chi.URLParam(r, "run_id"), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.file(w, dl)
}

func (a *App) RunMockupsZip(w http.ResponseWriter, r *http.Request) {
	dl, err := a.Studio.MockupsZip(chi.URLParam(r, "run_id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.file(w, dl)
}

func (a *App) ListRuns(w http.ResponseWriter, r *http.Request) {
	if a.Runs == nil {
		a.error(w, http.StatusNotFound, "not_found", "run history requires DATABASE_URL")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := a.Runs.ListRecent(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": runs})
}

func (a *App) file(w http.ResponseWriter, dl studio.Download) {
	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Data)
}

// decodeImage decodes a data URL field. An empty field is a validation
// error naming the field.
func decodeImage(raw, field string) (*pixel.Image, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	return pixel.DecodeDataURL(raw)
}
