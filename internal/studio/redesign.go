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

// RedesignInput is a masked edit request from the Redesign studio.
type RedesignInput struct {
	// Image is the design to edit; nil uses the design handed off from the
	// Seedream studio.
	Image *pixel.Image
	Mask  mask.Spec
	// Canvas is the size of the canvas the strokes were drawn on.
	Canvas       mask.Size
	Instructions string
}

// RedesignResult holds every intermediate of a Redesign edit.
type RedesignResult struct {
	ID         string
	Display    *pixel.Image
	Mask       *pixel.Image
	Result     *pixel.Image
	PrintReady *pixel.Image
}

// PrepareRedesign caps an upload for the Redesign studio and returns the
// display copy strokes should be drawn over.
func PrepareRedesign(img *pixel.Image) (*pixel.Image, error) {
	capped, err := canvas.Downscale(img, canvas.RedesignUpload)
	if err != nil {
		return nil, err
	}
	return canvas.Downscale(capped, canvas.DisplayCopy)
}

// Redesign repaints the masked area of the display copy, then removes the
// background and letterboxes the result to the print target.
func (s *Service) Redesign(ctx context.Context, in RedesignInput) (RedesignResult, error) {
	instructions := strings.TrimSpace(in.Instructions)
	if instructions == "" {
		return RedesignResult{}, fmt.Errorf("%w: describe the change to make", domain.ErrValidation)
	}
	if err := in.Mask.Validate(); err != nil {
		return RedesignResult{}, err
	}
	img := in.Image
	if img == nil {
		s.mu.Lock()
		img = s.handoff
		s.mu.Unlock()
	}
	if img == nil {
		return RedesignResult{}, fmt.Errorf("%w: no design uploaded", domain.ErrValidation)
	}
	client, err := s.client(ctx)
	if err != nil {
		return RedesignResult{}, err
	}

	display, err := PrepareRedesign(img)
	if err != nil {
		return RedesignResult{}, err
	}
	canvasSize := in.Canvas
	if canvasSize.W == 0 && canvasSize.H == 0 {
		canvasSize = mask.Size{W: display.Width(), H: display.Height()}
	}
	m, err := mask.Rasterize(in.Mask, canvasSize, mask.Size{W: display.Width(), H: display.Height()})
	if err != nil {
		return RedesignResult{}, err
	}

	res := RedesignResult{ID: s.newID(), Display: display, Mask: m}
	s.logger.Info().Str("redesign_id", res.ID).Int("strokes", len(in.Mask.Paths)).Msg("studio: redesign started")
	if res.Result, err = client.Inpaint(ctx, display, m, instructions); err != nil {
		return RedesignResult{}, err
	}
	cut, err := segment.Segment(res.Result)
	if err != nil {
		return RedesignResult{}, err
	}
	if res.PrintReady, err = canvas.LetterboxResize(cut, s.printTarget.W, s.printTarget.H); err != nil {
		return RedesignResult{}, err
	}

	dir := path.Join("redesign", res.ID)
	s.store(ctx, path.Join(dir, "mask.png"), res.Mask)
	s.store(ctx, path.Join(dir, "result.png"), res.Result)
	s.store(ctx, path.Join(dir, "print-ready.png"), res.PrintReady)
	s.logger.Info().Str("redesign_id", res.ID).Msg("studio: redesign finished")
	return res, nil
}
