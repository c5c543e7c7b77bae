package segment

import (
	"image"
	"image/color"
	"testing"

	"mockupstudio/internal/pixel"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	px := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px.SetNRGBA(x, y, c)
		}
	}
	return px
}

func fill(px *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			px.SetNRGBA(x, y, c)
		}
	}
}

func mustWrap(t *testing.T, px *image.NRGBA) *pixel.Image {
	t.Helper()
	img, err := pixel.Wrap(px)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	return img
}

func TestSegmentUniformWhiteIsTransparent(t *testing.T) {
	img := mustWrap(t, solid(32, 24, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	out, err := Segment(img)
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			if a := out.At(x, y).A; a != 0 {
				t.Fatalf("pixel (%d,%d) alpha = %d, want 0", x, y, a)
			}
		}
	}
}

func TestSegmentKeepsSubjectAndRGB(t *testing.T) {
	px := solid(60, 60, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
	fill(px, image.Rect(20, 20, 40, 40), color.NRGBA{R: 200, G: 20, B: 20, A: 255})
	img := mustWrap(t, px)

	out, err := Segment(img)
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	if out.Size() != img.Size() {
		t.Fatalf("size changed: %v -> %v", img.Size(), out.Size())
	}
	if got := out.At(30, 30); got.A != 255 || got.R != 200 || got.G != 20 {
		t.Fatalf("subject pixel = %+v, want opaque red", got)
	}
	if got := out.At(5, 5); got.A != 0 {
		t.Fatalf("backdrop alpha = %d, want 0", got.A)
	}
	if got := out.At(5, 5); got.R != 250 {
		t.Fatalf("backdrop RGB must be untouched, got %+v", got)
	}
	if img.At(5, 5).A != 255 {
		t.Fatalf("input image was mutated")
	}
}

func TestSegmentSoftBand(t *testing.T) {
	px := solid(100, 100, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	// Distance 40 from the backdrop: neither flat nor near-border, so it
	// lands in the soft band.
	fill(px, image.Rect(40, 40, 60, 60), color.NRGBA{R: 140, G: 100, B: 100, A: 255})
	out, err := Segment(mustWrap(t, px))
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	if got := out.At(50, 50).A; got != 170 {
		t.Fatalf("soft band alpha = %d, want 170", got)
	}
}

func TestSegmentEdgePixelsSurviveFlatRule(t *testing.T) {
	px := solid(100, 100, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	// A one pixel line 32 units from the backdrop: the flat rule would clear
	// it, but every line pixel is an edge.
	fill(px, image.Rect(20, 50, 80, 51), color.NRGBA{R: 132, G: 100, B: 100, A: 255})
	out, err := Segment(mustWrap(t, px))
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	if got := out.At(50, 50).A; got != 136 {
		t.Fatalf("edge pixel alpha = %d, want 136", got)
	}
}

func TestBackdropAveragesAnchors(t *testing.T) {
	px := solid(8, 8, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	px.SetNRGBA(0, 0, color.NRGBA{R: 80, G: 0, B: 0, A: 255})
	bg := Backdrop(mustWrap(t, px))
	if bg.R != 10 || bg.G != 0 {
		t.Fatalf("backdrop = %+v, want R=10", bg)
	}
}

func TestSegmentSinglePixel(t *testing.T) {
	out, err := Segment(mustWrap(t, solid(1, 1, color.NRGBA{R: 10, G: 200, B: 10, A: 255})))
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	if out.At(0, 0).A != 0 {
		t.Fatalf("a lone pixel equals its own backdrop and must be cleared")
	}
}
