// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Tutor.Model != "gemini-1.5-flash" {
		t.Errorf("Model = %q", cfg.Tutor.Model)
	}
	if cfg.Reveal.IntervalMs != 33 || cfg.Reveal.CharsPerTick != 3 {
		t.Errorf("Reveal defaults = %+v", cfg.Reveal)
	}
}

func TestLoadFromPath_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1"

[tutor]
model = "gemini-1.5-pro"

[reveal]
interval_ms = 50
chars_per_tick = 5

[storage]
backend = "sqlite"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Tutor.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q", cfg.Tutor.Model)
	}
	if cfg.Reveal.IntervalMs != 50 || cfg.Reveal.CharsPerTick != 5 {
		t.Errorf("Reveal = %+v", cfg.Reveal)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q", cfg.Storage.Backend)
	}
	// Unset fields still pick up defaults.
	if cfg.Tutor.TimeoutSecs != 120 {
		t.Errorf("TimeoutSecs = %d", cfg.Tutor.TimeoutSecs)
	}
}

func TestLoadFromPath_EnvOverride(t *testing.T) {
	t.Setenv("PDFTUTOR_MODEL", "gemini-2.0-flash")
	t.Setenv("PDFTUTOR_GEMINI_KEY", "env-key")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tutor.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q", cfg.Tutor.Model)
	}
	if cfg.Tutor.GeminiKey != "env-key" {
		t.Errorf("GeminiKey = %q", cfg.Tutor.GeminiKey)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"zero interval", func(c *Config) { c.Reveal.IntervalMs = 0 }},
		{"huge interval", func(c *Config) { c.Reveal.IntervalMs = 5000 }},
		{"zero chars", func(c *Config) { c.Reveal.CharsPerTick = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if cfg.Validate() == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Tutor.Model = "gemini-1.5-pro"
	cfg.Reveal.CharsPerTick = 7
	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if got.Tutor.Model != "gemini-1.5-pro" || got.Reveal.CharsPerTick != 7 {
		t.Errorf("Reloaded config = %+v", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Config file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestWatch_DeliversReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveToPath(Default(), path); err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Config, 1)
	w, err := Watch(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	updated := Default()
	updated.Reveal.IntervalMs = 66
	if err := os.WriteFile(path, mustEncode(t, updated), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changed:
		if cfg.Reveal.IntervalMs != 66 {
			t.Errorf("Reloaded IntervalMs = %d, want 66", cfg.Reveal.IntervalMs)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}
}

func mustEncode(t *testing.T, cfg *Config) []byte {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), "enc.toml")
	if err := SaveToPath(cfg, tmp); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
