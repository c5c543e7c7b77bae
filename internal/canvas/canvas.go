// Package canvas resizes images for upload, display and print.
package canvas

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/pixel"
)

// Cap is a maximum (or, for letterboxing, exact) canvas size.
type Cap struct {
	W, H int
}

// Print target and the per-studio upload caps.
var (
	PrintTarget = Cap{W: 4500, H: 5400}

	StudioUpload   = Cap{W: 1536, H: 1536}
	DisplayCopy    = Cap{W: 1024, H: 1024}
	RemixUpload    = Cap{W: 1024, H: 1024}
	SeedreamUpload = Cap{W: 2048, H: 2048}
	RedesignUpload = PrintTarget
)

// DownscaleIfLarger shrinks img uniformly so it fits inside maxW x maxH. An
// image that already fits is returned as is; the result is never padded.
func DownscaleIfLarger(img *pixel.Image, maxW, maxH int) (*pixel.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", domain.ErrDecode)
	}
	if maxW < 1 || maxH < 1 {
		return nil, fmt.Errorf("%w: invalid cap %dx%d", domain.ErrValidation, maxW, maxH)
	}
	w, h := img.Width(), img.Height()
	if w <= maxW && h <= maxH {
		return img, nil
	}
	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw, nh := scaled(w, ratio), scaled(h, ratio)
	if _, err := pixel.Alloc(nw, nh); err != nil {
		return nil, err
	}
	return pixel.Wrap(imaging.Resize(img.Std(), nw, nh, imaging.Lanczos))
}

// Downscale applies DownscaleIfLarger with a named cap.
func Downscale(img *pixel.Image, c Cap) (*pixel.Image, error) {
	return DownscaleIfLarger(img, c.W, c.H)
}

// LetterboxResize scales img to fit targetW x targetH (enlarging if needed),
// centres it and leaves the uncovered border fully transparent. The output is
// always exactly targetW x targetH. An image that already fills the target
// is copied without resampling, so letterboxing is idempotent.
func LetterboxResize(img *pixel.Image, targetW, targetH int) (*pixel.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", domain.ErrDecode)
	}
	bg, err := pixel.Alloc(targetW, targetH)
	if err != nil {
		return nil, err
	}
	rect := FitRect(img.Width(), img.Height(), targetW, targetH)

	// imaging only reads its source, so the shared buffer is safe here.
	var content image.Image = img.Std()
	if rect.Dx() != img.Width() || rect.Dy() != img.Height() {
		content = imaging.Resize(content, rect.Dx(), rect.Dy(), imaging.Lanczos)
	}
	return pixel.Wrap(imaging.Paste(bg, content, rect.Min))
}

// PrintReady letterboxes img to the print target.
func PrintReady(img *pixel.Image) (*pixel.Image, error) {
	return LetterboxResize(img, PrintTarget.W, PrintTarget.H)
}

// FitRect returns where a srcW x srcH image lands when letterboxed into a
// targetW x targetH canvas.
func FitRect(srcW, srcH, targetW, targetH int) image.Rectangle {
	ratio := math.Min(float64(targetW)/float64(srcW), float64(targetH)/float64(srcH))
	nw := min(scaled(srcW, ratio), targetW)
	nh := min(scaled(srcH, ratio), targetH)
	x := (targetW - nw) / 2
	y := (targetH - nh) / 2
	return image.Rect(x, y, x+nw, y+nh)
}

func scaled(n int, ratio float64) int {
	return max(1, int(math.Round(float64(n)*ratio)))
}
