package infra

import (
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "DATABASE_URL", "STORAGE_PATH", "GENERATION_PROVIDER",
		"GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_IMAGE_MODEL", "GEMINI_TEXT_MODEL",
		"FAL_API_KEY", "FAL_BASE_URL", "HTTP_READ_TIMEOUT_SECONDS", "HTTP_WRITE_TIMEOUT_SECONDS",
		"HTTP_IDLE_TIMEOUT_SECONDS", "RATE_LIMIT_PER_MINUTE", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q", cfg.Port)
	}
	if cfg.StoragePath != "./storage" {
		t.Fatalf("StoragePath mismatch: got %q", cfg.StoragePath)
	}
	if cfg.GenerationProvider != ProviderGemini {
		t.Fatalf("GenerationProvider mismatch: got %q", cfg.GenerationProvider)
	}
	if cfg.GeminiImageModel != "gemini-2.5-flash-image-preview" || cfg.GeminiTextModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected models: %q %q", cfg.GeminiImageModel, cfg.GeminiTextModel)
	}
	if cfg.FalBaseURL != "https://fal.run" {
		t.Fatalf("FalBaseURL mismatch: got %q", cfg.FalBaseURL)
	}
	if cfg.HasDatabase() {
		t.Fatal("expected database to be disabled without DATABASE_URL")
	}
	if cfg.HTTPWriteTimeout != 300*time.Second {
		t.Fatalf("HTTPWriteTimeout mismatch: got %s", cfg.HTTPWriteTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("GENERATION_PROVIDER", "Synthetic")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "12")
	t.Setenv("HTTP_READ_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://studio.example.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.HasDatabase() {
		t.Fatal("expected database to be enabled")
	}
	if cfg.GenerationProvider != ProviderSynthetic {
		t.Fatalf("GenerationProvider mismatch: got %q", cfg.GenerationProvider)
	}
	if cfg.RateLimitPerMin != 12 {
		t.Fatalf("RateLimitPerMin mismatch: got %d", cfg.RateLimitPerMin)
	}
	if cfg.HTTPReadTimeout != 30*time.Second {
		t.Fatalf("invalid timeout should fall back, got %s", cfg.HTTPReadTimeout)
	}
	expected := []string{"http://localhost:5173", "https://studio.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v", cfg.CORSAllowedOrigins)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GENERATION_PROVIDER", "dalle")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
