// Package segment removes flat backdrops from generated designs by
// classifying every pixel against a colour sampled from the image border.
package segment

import (
	"fmt"
	"math"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/pixel"
)

const (
	edgeThreshold  = 30
	nearWhiteFloor = 240
	nearWhiteDist  = 25
	flatDist       = 35
	borderDist     = 50
	borderFraction = 0.05
	brightDist     = 20
	brightMean     = 200
	softBandDist   = 60
	bytesPerPixel  = 4
)

// RGB is a floating point colour used for the sampled backdrop average.
type RGB struct {
	R, G, B float64
}

// Segment returns a copy of img whose alpha channel has been rewritten:
// backdrop pixels become transparent, pixels close to the backdrop colour
// fade in proportionally, everything else keeps its alpha. RGB samples and
// dimensions are unchanged.
func Segment(img *pixel.Image) (*pixel.Image, error) {
	if img == nil || img.Width() < 1 || img.Height() < 1 {
		return nil, fmt.Errorf("%w: no pixels to segment", domain.ErrDecode)
	}
	out := img.Clone()
	w, h := img.Width(), img.Height()
	pix := out.Pix
	stride := out.Stride

	bg := Backdrop(img)
	edges := edgeMap(pix, stride, w, h)
	border := math.Min(float64(w), float64(h)) * borderFraction

	for y := 0; y < h; y++ {
		row := y * stride
		for x := 0; x < w; x++ {
			i := row + x*bytesPerPixel
			r, g, b := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])
			d := math.Sqrt((r-bg.R)*(r-bg.R) + (g-bg.G)*(g-bg.G) + (b-bg.B)*(b-bg.B))
			nearBorder := float64(min(x, y, w-x-1, h-y-1)) < border

			switch {
			case r > nearWhiteFloor && g > nearWhiteFloor && b > nearWhiteFloor && d < nearWhiteDist,
				d < flatDist && !edges[y*w+x],
				nearBorder && d < borderDist,
				d < brightDist && (r+g+b)/3 > brightMean:
				pix[i+3] = 0
			case d < softBandDist:
				pix[i+3] = uint8(math.RoundToEven(math.Max(0, math.Min(255, d/softBandDist*255))))
			}
		}
	}
	return pixel.Wrap(out)
}

// Backdrop averages the eight anchor samples: the four corners, the top edge
// at one and three quarters of the width, and the left and right edges at a
// quarter of the height.
func Backdrop(img *pixel.Image) RGB {
	w, h := img.Width(), img.Height()
	anchors := [8][2]int{
		{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1},
		{w / 4, 0}, {3 * w / 4, 0},
		{0, h / 4}, {w - 1, h / 4},
	}
	var avg RGB
	for _, a := range anchors {
		c := img.At(a[0], a[1])
		avg.R += float64(c.R) / float64(len(anchors))
		avg.G += float64(c.G) / float64(len(anchors))
		avg.B += float64(c.B) / float64(len(anchors))
	}
	return avg
}

// edgeMap marks interior pixels whose strongest neighbour difference (sum of
// absolute channel differences) exceeds edgeThreshold. Border rows and
// columns are never edges.
func edgeMap(pix []uint8, stride, w, h int) []bool {
	edges := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*stride + x*bytesPerPixel
			strength := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					n := (y+dy)*stride + (x+dx)*bytesPerPixel
					diff := absDiff(pix[i], pix[n]) + absDiff(pix[i+1], pix[n+1]) + absDiff(pix[i+2], pix[n+2])
					strength = max(strength, diff)
				}
			}
			edges[y*w+x] = strength > edgeThreshold
		}
	}
	return edges
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
