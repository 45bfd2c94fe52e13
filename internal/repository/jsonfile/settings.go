// Package jsonfile stores the user settings document as an indented JSON file.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ozo-extended/ozo-agent/internal/domain/settings"
)

type settingsRepository struct {
	path string
	mu   sync.Mutex
}

func NewSettingsRepository(path string) settings.Repository {
	return &settingsRepository{path: path}
}

// Load implements settings.Repository. Stored values override the defaults field by field.
func (r *settingsRepository) Load(ctx context.Context) (settings.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings.Defaults(), nil
	}
	if err != nil {
		return settings.Defaults(), fmt.Errorf("failed to read settings: %w", err)
	}

	s := settings.Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return settings.Defaults(), fmt.Errorf("%w: %w", settings.ErrSettingsCorrupt, err)
	}
	return s, nil
}

// Save implements settings.Repository. The file is replaced atomically.
func (r *settingsRepository) Save(ctx context.Context, s settings.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set settings permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
