// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"

	"github.com/morganforge/pdftutor/internal/config"
	"github.com/morganforge/pdftutor/internal/util"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfig shows and edits the configuration file.
func HandleConfig(args Args) error {
	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "", "show":
		return configShow()

	case "path":
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "set":
		key := p.Positional(1)
		value := p.Positional(2)
		if key == "" || value == "" {
			return fmt.Errorf("usage: pdftutor config set <key> <value>")
		}
		return configSet(key, value)

	default:
		return fmt.Errorf("unknown config subcommand %q", p.Subcommand())
	}
}

func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println("Tutor:")
	fmt.Println("  model         " + cfg.Tutor.Model)
	fmt.Println("  gemini_key    " + maskKey(cfg.Tutor.GeminiKey))
	fmt.Println("  timeout_secs  " + util.IntToString(cfg.Tutor.TimeoutSecs))
	fmt.Println("  max_retries   " + util.IntToString(cfg.Tutor.MaxRetries))
	fmt.Println("Storage:")
	fmt.Println("  backend       " + cfg.Storage.Backend)
	fmt.Println("Reveal:")
	fmt.Println("  interval_ms   " + util.IntToString(cfg.Reveal.IntervalMs))
	fmt.Println("  chars_per_tick " + util.IntToString(cfg.Reveal.CharsPerTick))
	fmt.Println("UI:")
	fmt.Println("  theme         " + cfg.UI.Theme)
	return nil
}

func configSet(key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch key {
	case "tutor.model", "model":
		cfg.Tutor.Model = value
	case "tutor.gemini_key", "gemini_key":
		cfg.Tutor.GeminiKey = value
	case "tutor.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		cfg.Tutor.TimeoutSecs = n
	case "storage.backend":
		cfg.Storage.Backend = value
	case "reveal.interval_ms":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		cfg.Reveal.IntervalMs = n
	case "reveal.chars_per_tick":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		cfg.Reveal.CharsPerTick = n
	case "ui.theme", "theme":
		cfg.UI.Theme = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("Set %s\n", key)
	return nil
}

// maskKey hides all but the length of an API key.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return fmt.Sprintf("[set, length=%d]", len(key))
}
