package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	httpapi "mockupstudio/internal/http"
	"mockupstudio/internal/http/handlers"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/studio"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wiring, err := studio.Wire(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("studio: startup failed")
	}
	defer wiring.Close()

	app := &handlers.App{Studio: wiring.Service, Logger: &logger}
	if wiring.Runs != nil {
		app.Runs = wiring.Runs
	}
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("provider", cfg.GenerationProvider).Msg("studio: listening")
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("studio: http server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("studio: shutdown failed")
	}
	logger.Info().Msg("studio: stopped")
}
