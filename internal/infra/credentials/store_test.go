package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/storage"
)

type execCall struct {
	query string
	args  []any
}

type stubExecutor struct {
	tokens map[string]string
	err    error
	execs  []execCall
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.err != nil {
		return stubRow{err: s.err}
	}
	provider, _ := args[0].(string)
	token, ok := s.tokens[provider]
	if !ok {
		return stubRow{err: pgx.ErrNoRows}
	}
	return stubRow{token: token}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	token string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.token
	return nil
}

func TestGeminiAPIKey(t *testing.T) {
	store := NewStore(&stubExecutor{tokens: map[string]string{ProviderGemini: " abc123 "}})
	key, err := store.GeminiAPIKey(context.Background())
	if err != nil {
		t.Fatalf("GeminiAPIKey error: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("expected abc123, got %q", key)
	}
}

func TestLoadMissingRowsAreEmpty(t *testing.T) {
	store := NewStore(&stubExecutor{tokens: map[string]string{ProviderFal: "fal-key"}})
	settings, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if settings.GeminiAPIKey != "" || settings.FalAPIKey != "fal-key" {
		t.Fatalf("unexpected settings: %#v", settings)
	}
}

func TestLoadPropagatesDatabaseErrors(t *testing.T) {
	store := NewStore(&stubExecutor{err: errors.New("connection refused")})
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSaveUpsertsBothProviders(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.Save(context.Background(), Settings{GeminiAPIKey: " g-secret ", FalAPIKey: ""}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if len(exec.execs) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(exec.execs))
	}
	want := [][2]string{{ProviderGemini, "g-secret"}, {ProviderFal, ""}}
	for i, call := range exec.execs {
		if len(call.args) != 3 {
			t.Fatalf("expected 3 args, got %d", len(call.args))
		}
		if call.args[0] != want[i][0] || call.args[1] != want[i][1] {
			t.Fatalf("upsert %d args mismatch: %v", i, call.args[:2])
		}
	}
}

func TestSetFalAPIKeyEmpty(t *testing.T) {
	store := NewStore(&stubExecutor{})
	err := store.SetFalAPIKey(context.Background(), " ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSettingsMaskedAndFallback(t *testing.T) {
	s := Settings{GeminiAPIKey: "AIzaSecret1234"}
	if got := s.Masked().GeminiAPIKey; got != "**********1234" {
		t.Fatalf("masked key mismatch: %q", got)
	}
	if got := (Settings{FalAPIKey: "abc"}).Masked().FalAPIKey; got != "***" {
		t.Fatalf("short key mismatch: %q", got)
	}

	merged := Settings{GeminiAPIKey: " "}.WithFallback(Settings{GeminiAPIKey: "env-key", FalAPIKey: "env-fal"})
	if merged.GeminiAPIKey != "env-key" || merged.FalAPIKey != "env-fal" {
		t.Fatalf("fallback mismatch: %#v", merged)
	}
	kept := Settings{GeminiAPIKey: "saved"}.WithFallback(Settings{GeminiAPIKey: "env-key"})
	if kept.GeminiAPIKey != "saved" {
		t.Fatalf("saved key should win, got %q", kept.GeminiAPIKey)
	}
}

func TestFileSettingsRoundTrip(t *testing.T) {
	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	settings := NewFileSettings(fs)
	ctx := context.Background()

	empty, err := settings.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty store error: %v", err)
	}
	if empty != (Settings{}) {
		t.Fatalf("expected empty settings, got %#v", empty)
	}

	if err := settings.Save(ctx, Settings{GeminiAPIKey: " g ", FalAPIKey: "f"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	loaded, err := settings.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded != (Settings{GeminiAPIKey: "g", FalAPIKey: "f"}) {
		t.Fatalf("unexpected settings: %#v", loaded)
	}
}

func TestFileSettingsWithoutStore(t *testing.T) {
	var settings *FileSettings
	if _, err := settings.Load(context.Background()); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
}
