package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production")
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("level mismatch: %s", logger.GetLevel())
	}

	logger.Debug().Msg("hidden")
	logger.Info().Str("run_id", "r1").Msg("pipeline: stage settled")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["run_id"] != "r1" || entry["service"] != "mockupstudio" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestNewLoggerDevelopmentIsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "development")
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("level mismatch: %s", logger.GetLevel())
	}
}
