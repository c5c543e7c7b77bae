package domain

import (
	"errors"
	"testing"
)

func TestResolveProducts(t *testing.T) {
	got, err := ResolveProducts([]string{"mug", "tshirt"})
	if err != nil {
		t.Fatalf("ResolveProducts error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "mug" || got[1].ID != "tshirt" {
		t.Fatalf("unexpected selection: %#v", got)
	}
}

func TestResolveProductsRejects(t *testing.T) {
	cases := map[string][]string{
		"unknown":   {"spaceship"},
		"duplicate": {"mug", "mug"},
		"too many":  {"tshirt", "hoodie", "mug", "tote", "poster", "phonecase", "sticker"},
	}
	for name, ids := range cases {
		if _, err := ResolveProducts(ids); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestDownloadName(t *testing.T) {
	if got := DownloadName("Mockup  Throw Pillow"); got != "mockup-throw-pillow.png" {
		t.Fatalf("DownloadName = %q", got)
	}
	if got := DownloadName("   "); got != "design.png" {
		t.Fatalf("DownloadName blank = %q", got)
	}
}
