package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// SettingsKey is where FileSettings keeps its document inside the blob store.
const SettingsKey = "settings/settings.json"

// Blobs is the subset of the asset store FileSettings needs.
type Blobs interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// FileSettings keeps Settings as a JSON document. It is used when no
// database is configured.
type FileSettings struct {
	mu    sync.Mutex
	blobs Blobs
}

func NewFileSettings(blobs Blobs) *FileSettings {
	return &FileSettings{blobs: blobs}
}

func (f *FileSettings) Load(ctx context.Context) (Settings, error) {
	if f == nil || f.blobs == nil {
		return Settings{}, ErrNoStore
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := f.blobs.Read(ctx, SettingsKey)
	if errors.Is(err, fs.ErrNotExist) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("credentials: read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("credentials: decode settings: %w", err)
	}
	return s.Normalized(), nil
}

func (f *FileSettings) Save(ctx context.Context, s Settings) error {
	if f == nil || f.blobs == nil {
		return ErrNoStore
	}
	raw, err := json.MarshalIndent(s.Normalized(), "", "  ")
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.blobs.Write(ctx, SettingsKey, raw); err != nil {
		return fmt.Errorf("credentials: write settings: %w", err)
	}
	return nil
}

var _ SettingsStore = (*FileSettings)(nil)
