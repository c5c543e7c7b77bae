package studio

import (
	"context"
	"errors"
	"fmt"

	"mockupstudio/internal/canvas"
	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/pipeline"
	"mockupstudio/internal/pixel"
	"mockupstudio/internal/storage"
)

// StartInput is a fresh upload for the main studio.
type StartInput struct {
	Image *pixel.Image
	// Mode is "clone" or "redesign"; clone with instructions transforms.
	Mode         string
	Instructions string
}

// StartRun resets the studio and begins primary generation of the upload.
// The returned snapshot already shows the primary stage as pending.
func (s *Service) StartRun(ctx context.Context, in StartInput) (pipeline.Snapshot, error) {
	mode, err := imagegen.ParseMode(in.Mode, in.Instructions)
	if err != nil {
		return pipeline.Snapshot{}, err
	}
	if in.Image == nil {
		return pipeline.Snapshot{}, fmt.Errorf("%w: no design uploaded", domain.ErrValidation)
	}
	source, err := canvas.Downscale(in.Image, canvas.StudioUpload)
	if err != nil {
		return pipeline.Snapshot{}, err
	}
	client, err := s.client(ctx)
	if err != nil {
		return pipeline.Snapshot{}, err
	}
	task, err := s.orch.Start(client, source, mode, in.Instructions)
	if err != nil {
		return pipeline.Snapshot{}, err
	}
	return s.launch(task)
}

// Process removes the background, builds the print-ready design and
// creates one mockup per product.
func (s *Service) Process(runID string, productIDs []string) (pipeline.Snapshot, error) {
	task, err := s.orch.Process(runID, productIDs)
	if err != nil {
		return pipeline.Snapshot{}, err
	}
	return s.launch(task)
}

// GenerateDetails asks for title, description and tags of the print-ready
// design.
func (s *Service) GenerateDetails(runID string) (pipeline.Snapshot, error) {
	task, err := s.orch.GenerateDetails(runID)
	if err != nil {
		return pipeline.Snapshot{}, err
	}
	return s.launch(task)
}

// RetryMockup re-issues one failed mockup.
func (s *Service) RetryMockup(runID, itemID string) (pipeline.Snapshot, error) {
	task, err := s.orch.RetryItem(runID, itemID)
	if err != nil {
		return pipeline.Snapshot{}, err
	}
	return s.launch(task)
}

// Current returns the current run, or false when the studio is idle.
func (s *Service) Current() (pipeline.Snapshot, bool) {
	return s.orch.Snapshot()
}

// Reset discards the current run along with any in-flight work.
func (s *Service) Reset() {
	s.orch.Reset()
	s.logger.Info().Msg("studio: reset")
}

func (s *Service) launch(task *pipeline.Task) (pipeline.Snapshot, error) {
	snap, _ := s.orch.Snapshot()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := task.Run(s.ctx)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrSuperseded):
			s.logger.Debug().Str("run_id", task.RunID).Str("stage", string(task.Stage)).Msg("studio: task discarded")
			return
		case errors.Is(err, domain.ErrPartialFailure):
			s.logger.Info().Err(err).Str("run_id", task.RunID).Msg("studio: task finished with failures")
		default:
			s.logger.Warn().Err(err).Str("run_id", task.RunID).Str("stage", string(task.Stage)).Msg("studio: task failed")
		}
		s.persist(task.RunID)
	}()
	return snap, nil
}

// persist writes the images of the current run to the asset store.
func (s *Service) persist(runID string) {
	if s.blobs == nil {
		return
	}
	snap, ok := s.orch.Snapshot()
	if !ok || snap.RunID != runID {
		return
	}
	for _, a := range assets(snap) {
		s.store(s.ctx, storage.RunKey(runID, a.key+".png"), a.img)
	}
}
