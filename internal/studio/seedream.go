package studio

import (
	"context"
	"fmt"
	"path"

	"mockupstudio/internal/canvas"
	"mockupstudio/internal/domain"
	"mockupstudio/internal/pixel"
	"mockupstudio/internal/segment"
)

type SeedreamInput struct {
	Image            *pixel.Image
	RemoveBackground bool
}

// SeedreamResult is a Seedream clone and, optionally, its cut-out.
type SeedreamResult struct {
	ID      string
	Result  *pixel.Image
	Cleaned *pixel.Image
}

// Seedream clones the upload through the Seedream edit endpoint.
func (s *Service) Seedream(ctx context.Context, in SeedreamInput) (SeedreamResult, error) {
	if in.Image == nil {
		return SeedreamResult{}, fmt.Errorf("%w: no design uploaded", domain.ErrValidation)
	}
	cloner, err := s.cloner(ctx)
	if err != nil {
		return SeedreamResult{}, err
	}
	src, err := canvas.Downscale(in.Image, canvas.SeedreamUpload)
	if err != nil {
		return SeedreamResult{}, err
	}

	res := SeedreamResult{ID: s.newID()}
	s.logger.Info().Str("seedream_id", res.ID).Msg("studio: seedream clone started")
	if res.Result, err = cloner.Clone(ctx, src); err != nil {
		return SeedreamResult{}, err
	}
	if in.RemoveBackground {
		if res.Cleaned, err = segment.Segment(res.Result); err != nil {
			return SeedreamResult{}, err
		}
	}

	s.mu.Lock()
	kept := res
	s.seedream = &kept
	s.mu.Unlock()

	dir := path.Join("seedream", res.ID)
	s.store(ctx, path.Join(dir, "result.png"), res.Result)
	s.store(ctx, path.Join(dir, "cleaned.png"), res.Cleaned)
	return res, nil
}

// Handoff passes the last Seedream design to the Redesign studio, preferring
// the cut-out when there is one. A Redesign call without an image uses it.
func (s *Service) Handoff() (*pixel.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seedream == nil || s.seedream.Result == nil {
		return nil, fmt.Errorf("%w: no seedream design to hand off", domain.ErrValidation)
	}
	img := s.seedream.Result
	if s.seedream.Cleaned != nil {
		img = s.seedream.Cleaned
	}
	s.handoff = img
	s.logger.Info().Str("seedream_id", s.seedream.ID).Bool("cleaned", s.seedream.Cleaned != nil).Msg("studio: design handed off to redesign")
	return img, nil
}
