// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates the application configuration
// from ~/.lingcode/config.toml, with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/lingcode/lingcode-tui/internal/sanitize"
)

// =============================================================================
// CONFIGURATION TYPES
// =============================================================================

// Config is the root application configuration.
type Config struct {
	// DefaultModel names the model used when none is given on the CLI.
	DefaultModel string `toml:"default_model"`

	Server    ServerConfig    `toml:"server"`
	Index     IndexConfig     `toml:"index"`
	Sanitizer SanitizerConfig `toml:"sanitizer"`
	UI        UIConfig        `toml:"ui"`
}

// ServerConfig configures the model server connection.
type ServerConfig struct {
	// URL is the Ollama-compatible API base URL.
	URL string `toml:"url"`

	// TimeoutSecs bounds non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs"`
}

// IndexConfig configures the codebase index.
type IndexConfig struct {
	// MaxFileSizeKB caps the size of files read during indexing.
	MaxFileSizeKB int `toml:"max_file_size_kb"`

	// IgnoreDirs are directory names skipped during indexing, in
	// addition to hidden directories.
	IgnoreDirs []string `toml:"ignore_dirs"`

	// Watch enables incremental reindexing on file changes.
	Watch bool `toml:"watch"`
}

// SanitizerConfig is the narrative-stripping policy. The rules are
// configurable because model output conventions drift between releases.
type SanitizerConfig struct {
	// StripHeadings removes markdown headings outside fences.
	StripHeadings bool `toml:"strip_headings"`

	// StripNumberedSteps removes "1. do this" style plan lines.
	StripNumberedSteps bool `toml:"strip_numbered_steps"`

	// NarrativePrefixes are lowercase line prefixes treated as
	// narrative outside fences. An empty list keeps the defaults.
	NarrativePrefixes []string `toml:"narrative_prefixes"`
}

// Policy converts the configuration into a sanitizer policy. An empty
// prefix list keeps the built-in defaults.
func (c SanitizerConfig) Policy() sanitize.Policy {
	p := sanitize.DefaultPolicy()
	p.StripHeadings = c.StripHeadings
	p.StripNumberedSteps = c.StripNumberedSteps
	if len(c.NarrativePrefixes) > 0 {
		p.NarrativePrefixes = c.NarrativePrefixes
	}
	return p
}

// UIConfig configures rendering.
type UIConfig struct {
	// Theme is the syntax highlighting theme name.
	Theme string `toml:"theme"`

	// StreamBatchSize is how many tokens accumulate before a repaint.
	StreamBatchSize int `toml:"stream_batch_size"`

	// StreamMaxFPS caps repaints per second while streaming.
	StreamMaxFPS int `toml:"stream_max_fps"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DefaultModel: "qwen2.5-coder:7b",
		Server: ServerConfig{
			URL:         "http://127.0.0.1:11434",
			TimeoutSecs: 30,
		},
		Index: IndexConfig{
			MaxFileSizeKB: 512,
			IgnoreDirs: []string{
				"node_modules", "vendor", "__pycache__", ".venv", "venv",
				"dist", "build", "target",
			},
			Watch: true,
		},
		Sanitizer: SanitizerConfig{
			StripHeadings:      true,
			StripNumberedSteps: true,
		},
		UI: UIConfig{
			Theme:           "monokai",
			StreamBatchSize: 15,
			StreamMaxFPS:    30,
		},
	}
}

// Dir returns the configuration directory, ~/.lingcode.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(home, ".lingcode"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads ~/.lingcode/config.toml, falling back to defaults when the
// file does not exist, then applies environment overrides and validates.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(filepath.Join(dir, "config.toml"))
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values from the environment. Only a small,
// documented set of variables is honored.
func applyEnv(cfg *Config) {
	if v := os.Getenv("LINGCODE_MODEL"); v != "" {
		cfg.DefaultModel = v
	}
	if v := os.Getenv("LINGCODE_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("LINGCODE_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.TimeoutSecs = n
		}
	}
	if v := os.Getenv("LINGCODE_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// Validate checks ranges and rejects configurations that would
// misbehave at runtime.
func (c *Config) Validate() error {
	if c.DefaultModel == "" {
		return errors.New("config: default_model must not be empty")
	}
	if c.Server.URL == "" {
		return errors.New("config: server.url must not be empty")
	}
	if c.Server.TimeoutSecs <= 0 {
		return fmt.Errorf("config: server.timeout_secs must be positive, got %d", c.Server.TimeoutSecs)
	}
	if c.Index.MaxFileSizeKB <= 0 {
		return fmt.Errorf("config: index.max_file_size_kb must be positive, got %d", c.Index.MaxFileSizeKB)
	}
	if c.UI.StreamBatchSize <= 0 || c.UI.StreamBatchSize > 1000 {
		return fmt.Errorf("config: ui.stream_batch_size out of range: %d", c.UI.StreamBatchSize)
	}
	if c.UI.StreamMaxFPS <= 0 || c.UI.StreamMaxFPS > 60 {
		return fmt.Errorf("config: ui.stream_max_fps out of range: %d", c.UI.StreamMaxFPS)
	}
	return nil
}

// Save writes the configuration to ~/.lingcode/config.toml.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}
	return SaveToPath(cfg, filepath.Join(dir, "config.toml"))
}

// SaveToPath writes the configuration to an explicit file path.
func SaveToPath(cfg *Config, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}
