// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and saves the .scriptpatch/project.yaml project
// configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDir  = ".scriptpatch"
	defaultConfigFile = "project.yaml"
	configVersion     = "1"
)

// Config represents the .scriptpatch/project.yaml configuration file.
type Config struct {
	Version   string         `yaml:"version"`
	ProjectID string         `yaml:"project_id"`
	Archive   ArchiveConfig  `yaml:"archive"`
	Logging   LoggingConfig  `yaml:"logging"`
	Metrics   MetricsConfig  `yaml:"metrics,omitempty"`
}

// ArchiveConfig describes where the target archive and its diff files live.
type ArchiveConfig struct {
	Path     string `yaml:"path"`      // path to the .pak archive to patch
	DiffsDir string `yaml:"diffs_dir"` // directory whose regular files are applied as diffs, in lexical order
}

// LoggingConfig controls the slog handler cmd/scriptpatch installs.
type LoggingConfig struct {
	Level string `yaml:"level"`         // debug, info, warn, error
	JSON  bool   `yaml:"json,omitempty"`
}

// MetricsConfig controls the optional Prometheus exporter.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// DefaultConfig returns sensible defaults for local use.
func DefaultConfig(projectID string) *Config {
	return &Config{
		Version:   configVersion,
		ProjectID: projectID,
		Archive: ArchiveConfig{
			Path:     "game.pak",
			DiffsDir: "diffs",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9090",
		},
	}
}

// LoadConfig loads configuration from configPath. When configPath is
// empty it uses $SCRIPTPATCH_CONFIG_PATH, and when that is empty too it
// finds the file by walking up from the current directory.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("SCRIPTPATCH_CONFIG_PATH")
	}
	if configPath == "" {
		var err error
		configPath, err = findConfigFile()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // path comes from user config or discovery
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}
	if cfg.Version != configVersion {
		return nil, fmt.Errorf("config %s: unsupported version %q (expected %q)", configPath, cfg.Version, configVersion)
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

// SaveConfig writes cfg to configPath as YAML, creating the parent
// directory if needed.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", configPath, err)
	}
	return nil
}

// ConfigPath joins dir with the default config dir and file name.
func ConfigPath(dir string) string {
	return filepath.Join(dir, defaultConfigDir, defaultConfigFile)
}

// ConfigDir joins dir with the default config dir name.
func ConfigDir(dir string) string {
	return filepath.Join(dir, defaultConfigDir)
}

func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		p := ConfigPath(dir)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no %s/%s found in this or any parent directory", defaultConfigDir, defaultConfigFile)
}

func (c *Config) applyEnvOverrides() {
	if id := os.Getenv("SCRIPTPATCH_PROJECT_ID"); id != "" {
		c.ProjectID = id
	}
	if p := os.Getenv("SCRIPTPATCH_ARCHIVE_PATH"); p != "" {
		c.Archive.Path = p
	}
	if d := os.Getenv("SCRIPTPATCH_DIFFS_DIR"); d != "" {
		c.Archive.DiffsDir = d
	}
	if lvl := os.Getenv("SCRIPTPATCH_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}
