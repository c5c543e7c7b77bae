// Package studio is the session service behind the HTTP surface and the
// CLIs. It prepares uploads, drives the pipeline orchestrator in the
// background, runs the mask-based Redesign and Remix flows and the Seedream
// clone, and keeps produced images in the asset store.
package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"mockupstudio/internal/canvas"
	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/infra/credentials"
	"mockupstudio/internal/pipeline"
	"mockupstudio/internal/pixel"
	"mockupstudio/internal/storage"
)

// ClientFactory builds a generation client from the current settings. It
// fails with domain.ErrValidation when a required key is missing.
type ClientFactory func(credentials.Settings) (imagegen.Client, error)

// ClonerFactory builds the Seedream clone client.
type ClonerFactory func(credentials.Settings) (imagegen.Cloner, error)

type Options struct {
	Logger *infra.Logger
	// Settings persists API keys; nil keeps only EnvKeys.
	Settings credentials.SettingsStore
	// EnvKeys fill keys that were never saved.
	EnvKeys credentials.Settings
	Clients ClientFactory
	Cloners ClonerFactory
	// Blobs receives every produced PNG; nil keeps results in memory only.
	Blobs       *storage.FileStore
	Recorder    pipeline.Recorder
	PrintTarget canvas.Cap
	NewID       func() string
}

type Service struct {
	logger      *infra.Logger
	settings    credentials.SettingsStore
	envKeys     credentials.Settings
	clients     ClientFactory
	cloners     ClonerFactory
	blobs       *storage.FileStore
	orch        *pipeline.Orchestrator
	printTarget canvas.Cap
	newID       func() string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	remix    *RemixResult
	seedream *SeedreamResult
	handoff  *pixel.Image
}

func New(opts Options) (*Service, error) {
	if opts.Clients == nil {
		return nil, errors.New("studio: client factory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.Discard()
	}
	target := opts.PrintTarget
	if target.W == 0 || target.H == 0 {
		target = canvas.PrintTarget
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		logger:   logger,
		settings: opts.Settings,
		envKeys:  opts.EnvKeys.Normalized(),
		clients:  opts.Clients,
		cloners:  opts.Cloners,
		blobs:    opts.Blobs,
		orch: pipeline.New(pipeline.Options{
			Logger:      logger,
			Recorder:    opts.Recorder,
			PrintTarget: target,
			NewID:       newID,
		}),
		printTarget: target,
		newID:       newID,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Settings returns the saved keys with environment keys filling the gaps.
func (s *Service) Settings(ctx context.Context) (credentials.Settings, error) {
	if s.settings == nil {
		return s.envKeys, nil
	}
	saved, err := s.settings.Load(ctx)
	if err != nil {
		return credentials.Settings{}, err
	}
	return saved.WithFallback(s.envKeys), nil
}

// SaveSettings persists the keys as given; empty keys clear saved ones.
func (s *Service) SaveSettings(ctx context.Context, settings credentials.Settings) error {
	if s.settings == nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, credentials.ErrNoStore)
	}
	if err := s.settings.Save(ctx, settings); err != nil {
		return err
	}
	s.logger.Info().
		Bool("gemini", settings.Normalized().GeminiAPIKey != "").
		Bool("fal", settings.Normalized().FalAPIKey != "").
		Msg("studio: settings saved")
	return nil
}

func (s *Service) client(ctx context.Context) (imagegen.Client, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return s.clients(settings)
}

func (s *Service) cloner(ctx context.Context) (imagegen.Cloner, error) {
	if s.cloners == nil {
		return nil, fmt.Errorf("%w: seedream is not configured", domain.ErrValidation)
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return s.cloners(settings)
}

// Wait blocks until every background task has returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels background tasks and waits for them.
func (s *Service) Close() {
	s.cancel()
	s.orch.Reset()
	s.wg.Wait()
}

func (s *Service) store(ctx context.Context, key string, img *pixel.Image) {
	if s.blobs == nil || img == nil {
		return
	}
	if _, err := s.blobs.WritePNG(ctx, key, img); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("studio: store image failed")
	}
}
