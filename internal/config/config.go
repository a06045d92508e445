// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for pdftutor.
//
// Configuration lives in ~/.pdftutor/config.toml, with sensible defaults,
// environment variable overrides, and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/pdftutor/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete pdftutor configuration.
type Config struct {
	Version string `toml:"version"`

	// Tutor holds the Gemini backend settings.
	Tutor TutorConfig `toml:"tutor"`

	// Storage selects and configures the persistence backend.
	Storage StorageConfig `toml:"storage"`

	// Reveal tunes the typewriter animation for answers.
	Reveal RevealConfig `toml:"reveal"`

	// UI holds terminal UI settings.
	UI UIConfig `toml:"ui"`
}

// TutorConfig contains Gemini backend configuration.
type TutorConfig struct {
	// GeminiKey is the Gemini API key.
	GeminiKey string `toml:"gemini_key"`
	// Model is the model used for answers.
	Model string `toml:"model"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries is the retry budget for transient failures.
	MaxRetries int `toml:"max_retries"`
}

// StorageConfig contains persistence configuration.
type StorageConfig struct {
	// Backend selects the persistence backend: "file" or "sqlite".
	Backend string `toml:"backend"`
	// Dir is the directory for the file backend (empty = default).
	Dir string `toml:"dir"`
	// SQLitePath is the database path for the sqlite backend (empty = default).
	SQLitePath string `toml:"sqlite_path"`
}

// RevealConfig tunes the answer typewriter animation. Answers reveal a fixed
// number of runes on a fixed tick, independent of answer length.
type RevealConfig struct {
	// IntervalMs is the tick interval in milliseconds.
	IntervalMs int `toml:"interval_ms"`
	// CharsPerTick is how many runes appear per tick.
	CharsPerTick int `toml:"chars_per_tick"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is the color theme name: "dark" or "light".
	Theme string `toml:"theme"`
	// ShowWelcome shows the welcome screen when no session exists.
	ShowWelcome bool `toml:"show_welcome"`
	// MarkdownWidth is the render width for markdown answers (0 = terminal width).
	MarkdownWidth int `toml:"markdown_width"`
	// ELIFDefault starts new sessions with ELIF mode already on.
	ELIFDefault bool `toml:"elif_default"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Tutor: TutorConfig{
			Model:       "gemini-1.5-flash",
			TimeoutSecs: 120,
			MaxRetries:  3,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Reveal: RevealConfig{
			IntervalMs:   33,
			CharsPerTick: 3,
		},
		UI: UIConfig{
			Theme:       "dark",
			ShowWelcome: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the pdftutor configuration directory (~/.pdftutor).
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".pdftutor"), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, applies env overrides and defaults, and
// validates. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads a configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to its default location.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific file.
// Mode 0600: the file may hold the API key.
func SaveToPath(cfg *Config, path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// ENV OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies PDFTUTOR_* environment variables on top of the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("PDFTUTOR_GEMINI_KEY"); key != "" {
		c.Tutor.GeminiKey = key
	}
	// GEMINI_API_KEY is the conventional name; accept it as a fallback.
	if c.Tutor.GeminiKey == "" {
		c.Tutor.GeminiKey = os.Getenv("GEMINI_API_KEY")
	}
	if model := os.Getenv("PDFTUTOR_MODEL"); model != "" {
		c.Tutor.Model = model
	}
	if backend := os.Getenv("PDFTUTOR_STORAGE"); backend != "" {
		c.Storage.Backend = backend
	}
	if theme := os.Getenv("PDFTUTOR_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if interval := os.Getenv("PDFTUTOR_REVEAL_INTERVAL_MS"); interval != "" {
		if v, err := strconv.Atoi(interval); err == nil {
			c.Reveal.IntervalMs = v
		}
	}
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.Tutor.Model == "" {
		c.Tutor.Model = def.Tutor.Model
	}
	if c.Tutor.TimeoutSecs == 0 {
		c.Tutor.TimeoutSecs = def.Tutor.TimeoutSecs
	}
	if c.Tutor.MaxRetries == 0 {
		c.Tutor.MaxRetries = def.Tutor.MaxRetries
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Reveal.IntervalMs == 0 {
		c.Reveal.IntervalMs = def.Reveal.IntervalMs
	}
	if c.Reveal.CharsPerTick == 0 {
		c.Reveal.CharsPerTick = def.Reveal.CharsPerTick
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return ValidationError{Field: "storage.backend", Message: fmt.Sprintf("unknown backend %q", c.Storage.Backend)}
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return ValidationError{Field: "ui.theme", Message: fmt.Sprintf("unknown theme %q", c.UI.Theme)}
	}

	if c.Reveal.IntervalMs < 1 || c.Reveal.IntervalMs > 1000 {
		return ValidationError{Field: "reveal.interval_ms", Message: "must be between 1 and 1000"}
	}
	if c.Reveal.CharsPerTick < 1 || c.Reveal.CharsPerTick > 100 {
		return ValidationError{Field: "reveal.chars_per_tick", Message: "must be between 1 and 100"}
	}
	if c.Tutor.TimeoutSecs < 1 {
		return ValidationError{Field: "tutor.timeout_secs", Message: "must be positive"}
	}
	return nil
}
