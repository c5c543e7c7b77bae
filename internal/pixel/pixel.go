// Package pixel holds the immutable RGBA buffer shared by every transform.
package pixel

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"mockupstudio/internal/domain"
)

// MaxPixels bounds the surfaces this package will allocate.
const MaxPixels = 64 << 20

// Image is an immutable, non-premultiplied RGBA raster anchored at (0,0).
// Transforms never mutate an Image; they build a new one.
type Image struct {
	px *image.NRGBA
}

// Alloc allocates a cleared (fully transparent) surface. It fails with
// ErrContext when the requested surface is empty or too large.
func Alloc(width, height int) (*image.NRGBA, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: invalid surface %dx%d", domain.ErrContext, width, height)
	}
	if err := checkBound(width, height); err != nil {
		return nil, err
	}
	return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
}

func checkBound(width, height int) error {
	if int64(width)*int64(height) > MaxPixels {
		return fmt.Errorf("%w: surface %dx%d exceeds %d pixels", domain.ErrContext, width, height, MaxPixels)
	}
	return nil
}

// Wrap takes ownership of px. Callers must not modify px afterwards.
func Wrap(px *image.NRGBA) (*Image, error) {
	if px == nil {
		return nil, fmt.Errorf("%w: nil buffer", domain.ErrDecode)
	}
	b := px.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("%w: empty image %dx%d", domain.ErrDecode, b.Dx(), b.Dy())
	}
	if b.Min != (image.Point{}) || px.Stride != 4*b.Dx() {
		px = imaging.Clone(px)
	}
	return &Image{px: px}, nil
}

// FromImage copies any image.Image into a new Image.
func FromImage(src image.Image) (*Image, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", domain.ErrDecode)
	}
	b := src.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("%w: empty image %dx%d", domain.ErrDecode, b.Dx(), b.Dy())
	}
	return &Image{px: imaging.Clone(src)}, nil
}

// Decode reads an encoded image (PNG, JPEG, GIF, BMP, TIFF or WebP).
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", domain.ErrDecode, err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an in-memory blob. The header is checked against
// MaxPixels before any pixel data is decoded.
func DecodeBytes(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrDecode)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, fmt.Errorf("%w: empty %s image %dx%d", domain.ErrDecode, format, cfg.Width, cfg.Height)
	}
	if err := checkBound(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	img, err := FromImage(src)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return img, nil
}

// DecodeDataURL accepts "data:<mime>;base64,<payload>" or a bare base64 payload.
func DecodeDataURL(s string) (*Image, error) {
	payload := strings.TrimSpace(s)
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.Contains(header, ";base64") {
			return nil, fmt.Errorf("%w: malformed data url", domain.ErrDecode)
		}
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", domain.ErrDecode, err)
	}
	return DecodeBytes(data)
}

func (m *Image) Width() int  { return m.px.Rect.Dx() }
func (m *Image) Height() int { return m.px.Rect.Dy() }

// Size returns the dimensions as a point.
func (m *Image) Size() image.Point { return m.px.Rect.Size() }

// At returns the sample at (x, y).
func (m *Image) At(x, y int) color.NRGBA { return m.px.NRGBAAt(x, y) }

// Std exposes the buffer as an image.Image for readers such as imaging.
// The dynamic type is the shared *image.NRGBA; callers must not assert it
// back or draw into it. Use Clone for a writable copy.
func (m *Image) Std() image.Image { return m.px }

// Clone returns a mutable copy of the pixels.
func (m *Image) Clone() *image.NRGBA {
	out := image.NewNRGBA(m.px.Rect)
	copy(out.Pix, m.px.Pix)
	return out
}

// PNG encodes the image as PNG.
func (m *Image) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.px); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL encodes the image as a base64 PNG data URL.
func (m *Image) DataURL() (string, error) {
	data, err := m.PNG()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Equal reports whether a and b have the same size and identical samples.
func Equal(a, b *Image) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Size() != b.Size() {
		return false
	}
	return bytes.Equal(a.px.Pix, b.px.Pix)
}
