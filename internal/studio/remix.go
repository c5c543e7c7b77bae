package studio

import (
	"context"
	"fmt"
	"path"
	"strings"

	"mockupstudio/internal/canvas"
	"mockupstudio/internal/domain"
	"mockupstudio/internal/mask"
	"mockupstudio/internal/pixel"
	"mockupstudio/internal/segment"
)

// RemixInput combines a base design with a reference image inside the
// masked area of the base.
type RemixInput struct {
	Base      *pixel.Image
	Reference *pixel.Image
	Mask      mask.Spec
	// Canvas is the full side-by-side canvas; the base occupies its left
	// half and strokes are in that half's coordinates.
	Canvas       mask.Size
	Instructions string
}

// RemixResult is the raw remix and, once processed, its print-ready form.
type RemixResult struct {
	ID         string
	Mask       *pixel.Image
	Result     *pixel.Image
	PrintReady *pixel.Image
}

// BasePane returns the display size of the base image on a side-by-side
// canvas.
func BasePane(c mask.Size) mask.Size {
	return mask.Size{W: c.W / 2, H: c.H}
}

// Remix runs the remix call and keeps the raw result for ProcessRemix.
func (s *Service) Remix(ctx context.Context, in RemixInput) (RemixResult, error) {
	instructions := strings.TrimSpace(in.Instructions)
	if instructions == "" {
		return RemixResult{}, fmt.Errorf("%w: describe how to combine the images", domain.ErrValidation)
	}
	if in.Base == nil || in.Reference == nil {
		return RemixResult{}, fmt.Errorf("%w: remix needs a base and a reference image", domain.ErrValidation)
	}
	if err := in.Mask.Validate(); err != nil {
		return RemixResult{}, err
	}
	client, err := s.client(ctx)
	if err != nil {
		return RemixResult{}, err
	}

	base, err := canvas.Downscale(in.Base, canvas.RemixUpload)
	if err != nil {
		return RemixResult{}, err
	}
	ref, err := canvas.Downscale(in.Reference, canvas.RemixUpload)
	if err != nil {
		return RemixResult{}, err
	}
	pane := BasePane(in.Canvas)
	if in.Canvas.W == 0 && in.Canvas.H == 0 {
		pane = mask.Size{W: base.Width(), H: base.Height()}
	}
	m, err := mask.Rasterize(in.Mask, pane, mask.Size{W: base.Width(), H: base.Height()})
	if err != nil {
		return RemixResult{}, err
	}

	res := RemixResult{ID: s.newID(), Mask: m}
	s.logger.Info().Str("remix_id", res.ID).Int("strokes", len(in.Mask.Paths)).Msg("studio: remix started")
	if res.Result, err = client.Remix(ctx, base, ref, m, instructions); err != nil {
		return RemixResult{}, err
	}

	s.mu.Lock()
	kept := res
	s.remix = &kept
	s.mu.Unlock()

	dir := path.Join("remix", res.ID)
	s.store(ctx, path.Join(dir, "mask.png"), res.Mask)
	s.store(ctx, path.Join(dir, "result.png"), res.Result)
	return res, nil
}

// ProcessRemix removes the background of the last remix result and
// letterboxes it to the print target.
func (s *Service) ProcessRemix(ctx context.Context) (RemixResult, error) {
	s.mu.Lock()
	var res RemixResult
	if s.remix != nil {
		res = *s.remix
	}
	s.mu.Unlock()
	if res.Result == nil {
		return RemixResult{}, fmt.Errorf("%w: no remix result to process", domain.ErrValidation)
	}

	cut, err := segment.Segment(res.Result)
	if err != nil {
		return RemixResult{}, err
	}
	if res.PrintReady, err = canvas.LetterboxResize(cut, s.printTarget.W, s.printTarget.H); err != nil {
		return RemixResult{}, err
	}

	s.mu.Lock()
	if s.remix != nil && s.remix.ID == res.ID {
		kept := res
		s.remix = &kept
	}
	s.mu.Unlock()
	s.store(ctx, path.Join("remix", res.ID, "print-ready.png"), res.PrintReady)
	return res, nil
}
