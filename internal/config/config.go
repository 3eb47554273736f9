// Package config loads application configuration from an optional YAML
// file with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all taskdeck configuration.
type Config struct {
	// Backend selects persistence: "local" or "sqlite".
	Backend string `yaml:"backend"`
	// DataDir holds the database or collection files. Defaults to the
	// XDG data directory.
	DataDir string `yaml:"data_dir"`
	Logging Logging `yaml:"logging"`
}

// Logging configures the zap logger.
type Logging struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// File receives log output. Defaults to taskdeck.log in the data
	// dir; the terminal is owned by the UI.
	File string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() (Config, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Backend: "local",
		DataDir: dataDir,
		Logging: Logging{
			Level: "info",
			File:  filepath.Join(dataDir, "taskdeck.log"),
		},
	}, nil
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Environment variables override the file:
// TASKDECK_BACKEND, TASKDECK_DATA_DIR, TASKDECK_LOG_LEVEL.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("TASKDECK_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TASKDECK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return Config{}, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, nil
}

// DefaultDataDir returns the XDG data directory for taskdeck, falling
// back to ~/.local/share.
func DefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "taskdeck"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "taskdeck.yaml"
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "taskdeck", "config.yaml")
}
