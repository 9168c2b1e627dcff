// Package config loads the frictiond process configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	appDirName     = ".frictiond"
	configFileName = "config.toml"
)

// Config is the daemon/CLI process configuration. Engine settings
// (delay duration, quiz mode, targets) live in the settings store, not
// here; this file covers process concerns only.
type Config struct {
	// DataDir holds the settings, ledger, card database and key files.
	DataDir string `toml:"data_dir"`

	// LogFile is the rotating log destination. Empty logs to stderr.
	LogFile string `toml:"log_file"`

	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string `toml:"log_level"`

	// ScanIntervalSeconds is how often the gatekeeper polls for
	// flagged-app launches.
	ScanIntervalSeconds int `toml:"scan_interval_seconds"`

	// FlaggedProcesses are process name patterns fed to the local
	// app-watch provider.
	FlaggedProcesses []string `toml:"flagged_processes"`
}

// AppDir returns the base frictiond directory (~/.frictiond).
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, appDirName), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() (Config, error) {
	dir, err := AppDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		DataDir:             dir,
		LogFile:             filepath.Join(dir, "frictiond.log"),
		LogLevel:            "info",
		ScanIntervalSeconds: 2,
	}, nil
}

// Load reads the config file under the app directory, falling back to
// defaults when it is absent. Fields left empty in the file keep their
// defaults.
func Load() (Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	dir, err := AppDir()
	if err != nil {
		return Config{}, err
	}
	path := filepath.Join(dir, configFileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var fileCfg Config
	if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if fileCfg.DataDir != "" {
		cfg.DataDir = fileCfg.DataDir
	}
	if fileCfg.LogFile != "" {
		cfg.LogFile = fileCfg.LogFile
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.ScanIntervalSeconds > 0 {
		cfg.ScanIntervalSeconds = fileCfg.ScanIntervalSeconds
	}
	if len(fileCfg.FlaggedProcesses) > 0 {
		cfg.FlaggedProcesses = fileCfg.FlaggedProcesses
	}

	return cfg, nil
}
