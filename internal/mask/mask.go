// Package mask turns freehand brush strokes into the black and white masks
// consumed by inpaint and remix requests.
package mask

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/pixel"
)

// Spec is a set of strokes plus the brush width they were drawn with, both
// in display coordinates.
type Spec struct {
	Paths      []Path  `json:"paths"`
	BrushWidth float64 `json:"brush_width"`
}

// Size is a width and height in pixels.
type Size struct {
	W int `json:"width"`
	H int `json:"height"`
}

// Validate rejects specs that would produce an empty mask.
func (s Spec) Validate() error {
	if len(s.Paths) == 0 {
		return fmt.Errorf("%w: mask has no strokes", domain.ErrValidation)
	}
	for i, p := range s.Paths {
		if len(p) == 0 {
			return fmt.Errorf("%w: mask stroke %d is empty", domain.ErrValidation, i)
		}
	}
	if !(s.BrushWidth > 0) || math.IsInf(s.BrushWidth, 0) {
		return fmt.Errorf("%w: brush width must be positive", domain.ErrValidation)
	}
	return nil
}

// Scale returns the per-axis factors mapping display to target coordinates
// and the factor applied to the brush width.
func Scale(display, target Size) (sx, sy, brush float64) {
	sx = float64(target.W) / float64(display.W)
	sy = float64(target.H) / float64(display.H)
	return sx, sy, math.Min(sx, sy)
}

// Rasterize strokes every path of spec in white onto a black raster of
// target size. Points are mapped from display space per axis and the brush
// is scaled by the smaller of the two factors. Strokes have round caps and
// joins; the result is binarized so every pixel is pure black or pure white.
func Rasterize(spec Spec, display, target Size) (*pixel.Image, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if display.W < 1 || display.H < 1 {
		return nil, fmt.Errorf("%w: display size %dx%d", domain.ErrValidation, display.W, display.H)
	}
	dst, err := pixel.Alloc(target.W, target.H)
	if err != nil {
		return nil, err
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	sx, sy, bs := Scale(display, target)
	scanner := rasterx.NewScannerGV(target.W, target.H, dst, dst.Bounds())
	stroker := rasterx.NewDasher(target.W, target.H, scanner)
	stroker.SetColor(color.White)
	stroker.SetStroke(toFixed(spec.BrushWidth*bs), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)

	for _, path := range spec.Paths {
		stroker.Clear()
		first := fixed.Point26_6{X: toFixed(path[0].X * sx), Y: toFixed(path[0].Y * sy)}
		stroker.Start(first)
		if len(path) == 1 {
			// A tap leaves a dot; nudge the end so the caps have a direction.
			stroker.Line(first.Add(fixed.Point26_6{X: 1}))
		}
		for _, p := range path[1:] {
			stroker.Line(fixed.Point26_6{X: toFixed(p.X * sx), Y: toFixed(p.Y * sy)})
		}
		stroker.Stop(false)
		stroker.Draw()
	}

	binarize(dst)
	return pixel.Wrap(dst)
}

func binarize(img *image.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		v := uint8(0)
		if img.Pix[i] >= 128 {
			v = 255
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
