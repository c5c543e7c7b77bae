package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
	ProviderFal    = "fal"
)

// Settings are the API keys the studio needs. An empty key means "not set".
type Settings struct {
	GeminiAPIKey string `json:"gemini_api_key"`
	FalAPIKey    string `json:"fal_api_key"`
}

// Normalized returns s with surrounding whitespace removed from every key.
func (s Settings) Normalized() Settings {
	return Settings{
		GeminiAPIKey: strings.TrimSpace(s.GeminiAPIKey),
		FalAPIKey:    strings.TrimSpace(s.FalAPIKey),
	}
}

// WithFallback fills empty keys from fallback, typically the environment.
func (s Settings) WithFallback(fallback Settings) Settings {
	s = s.Normalized()
	fallback = fallback.Normalized()
	if s.GeminiAPIKey == "" {
		s.GeminiAPIKey = fallback.GeminiAPIKey
	}
	if s.FalAPIKey == "" {
		s.FalAPIKey = fallback.FalAPIKey
	}
	return s
}

// Masked hides all but the last four characters of every key.
func (s Settings) Masked() Settings {
	return Settings{GeminiAPIKey: mask(s.GeminiAPIKey), FalAPIKey: mask(s.FalAPIKey)}
}

func mask(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// SettingsStore loads and saves Settings.
type SettingsStore interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// Store keeps keys in the integration_tokens table, one row per provider.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

func (s *Store) FalAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderFal)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("credentials: load %s token: %w", provider, err)
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: gemini api key is required", domain.ErrValidation)
	}
	return s.upsert(ctx, ProviderGemini, key, nil)
}

func (s *Store) SetFalAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: fal api key is required", domain.ErrValidation)
	}
	return s.upsert(ctx, ProviderFal, key, map[string]any{"endpoint": "seedream/v4/edit"})
}

// Load reads both keys.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	gemini, err := s.GeminiAPIKey(ctx)
	if err != nil {
		return Settings{}, err
	}
	fal, err := s.FalAPIKey(ctx)
	if err != nil {
		return Settings{}, err
	}
	return Settings{GeminiAPIKey: gemini, FalAPIKey: fal}, nil
}

// Save writes both keys. Empty keys are stored empty, which clears them.
func (s *Store) Save(ctx context.Context, settings Settings) error {
	settings = settings.Normalized()
	if err := s.upsert(ctx, ProviderGemini, settings.GeminiAPIKey, nil); err != nil {
		return err
	}
	return s.upsert(ctx, ProviderFal, settings.FalAPIKey, nil)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw); err != nil {
		return fmt.Errorf("credentials: save %s token: %w", provider, err)
	}
	return nil
}

var _ SettingsStore = (*Store)(nil)

// ErrNoStore is returned when neither a database nor a file store is configured.
var ErrNoStore = errors.New("credentials: no settings store configured")
