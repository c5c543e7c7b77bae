package studio

import (
	"context"
	"fmt"

	"mockupstudio/internal/adapter/repo"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/infra/credentials"
	"mockupstudio/internal/sqlinline"
	"mockupstudio/internal/storage"
)

// Wiring is a service built from configuration plus what it opened.
type Wiring struct {
	Service *Service
	// Runs is nil when no database is configured.
	Runs  *repo.RunRepositoryPG
	Blobs *storage.FileStore
	close func()
}

// Close stops the service and releases the database pool.
func (w *Wiring) Close() {
	w.Service.Close()
	if w.close != nil {
		w.close()
	}
}

// Wire builds the studio service from cfg. With DATABASE_URL set, settings
// and run history live in Postgres; otherwise settings are a JSON document
// in the asset store and no history is kept.
func Wire(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*Wiring, error) {
	blobs, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		return nil, err
	}
	w := &Wiring{Blobs: blobs}
	opts := Options{
		Logger:  logger,
		EnvKeys: credentials.Settings{GeminiAPIKey: cfg.GeminiAPIKey, FalAPIKey: cfg.FalAPIKey},
		Clients: NewClientFactory(cfg, logger),
		Cloners: NewClonerFactory(cfg, logger),
		Blobs:   blobs,
	}

	if cfg.HasDatabase() {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		runner := infra.NewSQLRunner(pool, *logger)
		if _, err := runner.Exec(ctx, sqlinline.QEnsureSchema); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		w.Runs = repo.NewRunRepository(runner)
		w.close = pool.Close
		opts.Settings = credentials.NewStore(runner)
		opts.Recorder = w.Runs
		logger.Info().Msg("studio: using postgres for settings and run history")
	} else {
		opts.Settings = credentials.NewFileSettings(blobs)
		logger.Info().Str("path", blobs.BasePath()).Msg("studio: using file settings, run history disabled")
	}

	svc, err := New(opts)
	if err != nil {
		if w.close != nil {
			w.close()
		}
		return nil, err
	}
	w.Service = svc
	return w, nil
}
