package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

const settingsFileName = "settings.json"

// FileSettingsStore implements domain.SettingsStore as a single JSON
// document, replaced atomically on every save.
type FileSettingsStore struct {
	path   string
	logger *zap.Logger
}

// NewFileSettingsStore creates a settings store under dataDir.
func NewFileSettingsStore(dataDir string, logger *zap.Logger) *FileSettingsStore {
	return &FileSettingsStore{
		path:   filepath.Join(dataDir, settingsFileName),
		logger: logger,
	}
}

// Load returns the stored settings. A missing or unreadable document
// falls back to defaults so the user is never blocked; the failure is
// logged and reported alongside the defaults.
func (s *FileSettingsStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultSettings(), nil
		}
		s.logger.Warn("settings unreadable, using defaults",
			zap.String("path", s.path),
			zap.Error(err))
		return domain.DefaultSettings(), &domain.PersistenceError{Op: "load", Key: "settings", Err: err}
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		s.logger.Warn("settings corrupt, using defaults",
			zap.String("path", s.path),
			zap.Error(err))
		return domain.DefaultSettings(), &domain.PersistenceError{Op: "load", Key: "settings", Err: err}
	}

	if err := settings.Validate(); err != nil {
		s.logger.Warn("settings out of range, using defaults", zap.Error(err))
		return domain.DefaultSettings(), nil
	}

	return settings, nil
}

// Save replaces the settings document atomically.
func (s *FileSettingsStore) Save(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := atomicWriteJSON(s.path, settings); err != nil {
		return &domain.PersistenceError{Op: "save", Key: "settings", Err: err}
	}
	return nil
}

// atomicWriteJSON marshals v and replaces path via tmp file + rename,
// so readers see either the prior or the new document, never a mix.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	// Write to temp file first (unique per process to avoid race)
	tmpPath := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up on failure
		return err
	}
	return nil
}

// Ensure FileSettingsStore implements domain.SettingsStore.
var _ domain.SettingsStore = (*FileSettingsStore)(nil)
