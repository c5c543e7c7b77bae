// Package synthetic is an offline generation client. It derives every result
// from a hash of its inputs so runs are reproducible without network access.
package synthetic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/pixel"
)

// Client implements imagegen.Client without remote calls.
type Client struct {
	// Delay simulates remote latency; zero answers immediately.
	Delay time.Duration
}

var _ imagegen.Client = (*Client)(nil)

// New returns a client that waits delay before each answer.
func New(delay time.Duration) *Client {
	return &Client{Delay: delay}
}

func (c *Client) Clone(ctx context.Context, img *pixel.Image) (*pixel.Image, error) {
	return c.design(ctx, img, "clone", "")
}

func (c *Client) Transform(ctx context.Context, img *pixel.Image, instructions string) (*pixel.Image, error) {
	return c.design(ctx, img, "transform", instructions)
}

func (c *Client) Redesign(ctx context.Context, img *pixel.Image, instructions string) (*pixel.Image, error) {
	return c.design(ctx, img, "redesign", instructions)
}

// AnalyzeColor answers with a hex code derived from the image.
func (c *Client) AnalyzeColor(ctx context.Context, img *pixel.Image) (string, error) {
	if err := c.wait(ctx, img); err != nil {
		return "", err
	}
	col := colorFromSeed(deterministicSeed("color", digest(img)), 0)
	return fmt.Sprintf("#%02X%02X%02X", col.R, col.G, col.B), nil
}

// CreateMockup centres the design on a product-coloured square.
func (c *Client) CreateMockup(ctx context.Context, design *pixel.Image, productPrompt, hexColor string) (*pixel.Image, error) {
	if err := c.wait(ctx, design); err != nil {
		return nil, err
	}
	product, err := parseHex(hexColor)
	if err != nil {
		return nil, err
	}
	const side = 1024
	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(product), image.Point{}, draw.Src)

	frame := colorFromSeed(deterministicSeed("mockup", productPrompt), 1)
	inset := image.Rect(side/8, side/8, side-side/8, side-side/8)
	draw.Draw(dst, inset, image.NewUniform(frame), image.Point{}, draw.Over)
	draw.Draw(dst, inset.Inset(8), image.NewUniform(product), image.Point{}, draw.Src)

	art := imaging.Fit(design.Std(), side/2, side/2, imaging.Lanczos)
	at := image.Pt((side-art.Bounds().Dx())/2, (side-art.Bounds().Dy())/2)
	draw.Draw(dst, art.Bounds().Add(at), art, image.Point{}, draw.Over)
	return pixel.Wrap(dst)
}

// GenerateDetails builds marketing copy from the image digest.
func (c *Client) GenerateDetails(ctx context.Context, design *pixel.Image) (domain.ProductDetails, error) {
	if err := c.wait(ctx, design); err != nil {
		return domain.ProductDetails{}, err
	}
	seed := deterministicSeed("details", digest(design))
	adjectives := []string{"Bold", "Retro", "Minimal", "Vivid", "Classic", "Playful", "Moody", "Sunny"}
	nouns := []string{"Emblem", "Wave", "Bloom", "Skyline", "Badge", "Motif", "Pattern", "Crest"}
	a := adjectives[int(mustParseHexByte(seed[0:2]))%len(adjectives)]
	n := nouns[int(mustParseHexByte(seed[2:4]))%len(nouns)]
	return domain.ProductDetails{
		Title:       fmt.Sprintf("%s %s Graphic", a, n),
		Description: fmt.Sprintf("A %s %s design made for everyday wear. Clean lines and balanced colour keep it easy to style.", strings.ToLower(a), strings.ToLower(n)),
		Tags:        fmt.Sprintf("#%s, #%s, #graphic, #design, #print, #gift, #apparel, #art, #style, #%s", strings.ToLower(a), strings.ToLower(n), seed[:6]),
	}, nil
}

// Inpaint paints the white area of mask with a colour derived from the
// instructions and leaves every other pixel untouched.
func (c *Client) Inpaint(ctx context.Context, img, mask *pixel.Image, instructions string) (*pixel.Image, error) {
	if err := c.wait(ctx, img, mask); err != nil {
		return nil, err
	}
	fill := colorFromSeed(deterministicSeed("inpaint", instructions), 0)
	return blendMasked(img, mask, func(x, y int) color.NRGBA {
		return color.NRGBA{R: fill.R, G: fill.G, B: fill.B, A: 255}
	})
}

// Remix copies ref into the white area of mask on base.
func (c *Client) Remix(ctx context.Context, base, ref, mask *pixel.Image, instructions string) (*pixel.Image, error) {
	if err := c.wait(ctx, base, ref, mask); err != nil {
		return nil, err
	}
	fitted := imaging.Resize(ref.Std(), base.Width(), base.Height(), imaging.Lanczos)
	return blendMasked(base, mask, fitted.NRGBAAt)
}

func (c *Client) design(ctx context.Context, img *pixel.Image, op, instructions string) (*pixel.Image, error) {
	if err := c.wait(ctx, img); err != nil {
		return nil, err
	}
	seed := deterministicSeed(op, instructions, digest(img))
	return pixel.Wrap(renderDesign(img.Width(), img.Height(), seed))
}

func (c *Client) wait(ctx context.Context, images ...*pixel.Image) error {
	for _, img := range images {
		if img == nil {
			return fmt.Errorf("%w: missing input image", domain.ErrValidation)
		}
	}
	if c.Delay <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrRemote, err)
		}
		return nil
	}
	select {
	case <-time.After(c.Delay):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", domain.ErrRemote, ctx.Err())
	}
}

func blendMasked(img, mask *pixel.Image, source func(x, y int) color.NRGBA) (*pixel.Image, error) {
	out := img.Clone()
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			mx := x * mask.Width() / img.Width()
			my := y * mask.Height() / img.Height()
			if mask.At(mx, my).R >= 128 {
				out.SetNRGBA(x, y, source(x, y))
			}
		}
	}
	return pixel.Wrap(out)
}

// renderDesign draws striped artwork on a pure white backdrop.
func renderDesign(width, height int, seed string) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	base := ink(colorFromSeed(seed, 0))
	accent := ink(colorFromSeed(seed, 1))
	art := image.Rect(width/5, height/5, width-width/5, height-height/5)
	if art.Empty() {
		art = img.Bounds()
	}
	draw.Draw(img, art, image.NewUniform(base), image.Point{}, draw.Src)

	stripeHeight := max(2, art.Dy()/12)
	for y := art.Min.Y; y < art.Max.Y; y += stripeHeight * 2 {
		stripe := image.Rect(art.Min.X, y, art.Max.X, min(art.Max.Y, y+stripeHeight))
		draw.Draw(img, stripe, image.NewUniform(accent), image.Point{}, draw.Src)
	}
	return img
}

// ink darkens c so artwork always stands apart from the white backdrop.
func ink(c color.NRGBA) color.NRGBA {
	return color.NRGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: 255}
}

func digest(img *pixel.Image) string {
	sum := sha256.New()
	fmt.Fprintf(sum, "%dx%d|", img.Width(), img.Height())
	for y := 0; y < img.Height(); y += max(1, img.Height()/64) {
		for x := 0; x < img.Width(); x += max(1, img.Width()/64) {
			c := img.At(x, y)
			sum.Write([]byte{c.R, c.G, c.B, c.A})
		}
	}
	return hex.EncodeToString(sum.Sum(nil))[:16]
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

func colorFromSeed(seed string, shift int) color.NRGBA {
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.NRGBA{
		R: mustParseHexByte(segment[0:2]),
		G: mustParseHexByte(segment[2:4]),
		B: mustParseHexByte(segment[4:6]),
		A: 255,
	}
}

func parseHex(s string) (color.NRGBA, error) {
	canonical, ok := imagegen.ResolveHex(s)
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: invalid product colour %q", domain.ErrValidation, s)
	}
	return color.NRGBA{
		R: mustParseHexByte(canonical[1:3]),
		G: mustParseHexByte(canonical[3:5]),
		B: mustParseHexByte(canonical[5:7]),
		A: 255,
	}, nil
}

func mustParseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}
