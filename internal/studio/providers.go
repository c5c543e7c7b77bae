package studio

import (
	"fmt"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/infra/credentials"
	"mockupstudio/internal/providers/fal"
	"mockupstudio/internal/providers/genai"
	"mockupstudio/internal/providers/synthetic"
)

// NewClientFactory selects the generation provider named in cfg.
func NewClientFactory(cfg *infra.Config, logger *infra.Logger) ClientFactory {
	if cfg.GenerationProvider == infra.ProviderSynthetic {
		client := synthetic.New(0)
		return func(credentials.Settings) (imagegen.Client, error) { return client, nil }
	}
	return func(s credentials.Settings) (imagegen.Client, error) {
		if s.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: Gemini API key is not set", domain.ErrValidation)
		}
		return genai.NewClient(genai.Options{
			APIKey:     s.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			ImageModel: cfg.GeminiImageModel,
			TextModel:  cfg.GeminiTextModel,
			Logger:     logger,
		}), nil
	}
}

// NewClonerFactory builds the Seedream client, or the synthetic one when
// generation is offline.
func NewClonerFactory(cfg *infra.Config, logger *infra.Logger) ClonerFactory {
	if cfg.GenerationProvider == infra.ProviderSynthetic {
		client := synthetic.New(0)
		return func(credentials.Settings) (imagegen.Cloner, error) { return client, nil }
	}
	return func(s credentials.Settings) (imagegen.Cloner, error) {
		client := fal.NewClient(fal.Options{APIKey: s.FalAPIKey, BaseURL: cfg.FalBaseURL, Logger: logger})
		if !client.HasCredentials() {
			return nil, fmt.Errorf("%w: fal.ai API key is not set", domain.ErrValidation)
		}
		return client, nil
	}
}
