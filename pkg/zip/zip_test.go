package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"
)

func TestArchiveAssetsDeduplicatesNames(t *testing.T) {
	data, err := ArchiveAssets([]Asset{
		{Filename: "mockup-mug.png", Data: []byte("one")},
		{Filename: "mockup-mug.png", Data: []byte("two")},
		{Filename: "../escape.png", Data: []byte("three")},
	}, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ArchiveAssets error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader error: %v", err)
	}
	want := map[string]string{"mockup-mug.png": "one", "mockup-mug-2.png": "two", "escape.png": "three"}
	if len(zr.File) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(zr.File))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, _ := io.ReadAll(rc)
		rc.Close()
		if want[f.Name] != string(body) {
			t.Fatalf("%s: got %q want %q", f.Name, body, want[f.Name])
		}
	}
}
