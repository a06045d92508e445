// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/morganforge/pdftutor/internal/storage"
)

// =============================================================================
// SESSION COMMAND
// =============================================================================

// HandleSession manages stored chat sessions from the command line.
func HandleSession(args Args) error {
	app, err := NewApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "", "list", "ls":
		return sessionList(app, args)

	case "select":
		id := p.Positional(1)
		if id == "" {
			return fmt.Errorf("usage: pdftutor session select <id>")
		}
		if !app.Store.Select(id) {
			return fmt.Errorf("no session with ID %q", id)
		}
		if !args.Quiet {
			fmt.Printf("Switched to %q\n", app.Store.Active().Title)
		}
		return nil

	case "delete", "rm":
		id := p.Positional(1)
		if id == "" {
			return fmt.Errorf("usage: pdftutor session delete <id>")
		}
		sess := app.Store.Get(id)
		if sess == nil {
			return fmt.Errorf("no session with ID %q", id)
		}
		if !p.BoolFlag("yes") && !p.BoolFlag("y") {
			if !ConfirmPrompt(fmt.Sprintf("Delete %q? This cannot be undone.", sess.Title)) {
				fmt.Println("Cancelled.")
				return nil
			}
		}
		if err := app.Store.Delete(id); err != nil {
			return fmt.Errorf("no session with ID %q", id)
		}
		if !args.Quiet {
			fmt.Println("Chat deleted.")
		}
		return nil

	case "show":
		id := p.Positional(1)
		if id == "" {
			id = app.Store.ActiveID()
		}
		sess := app.Store.Get(id)
		if sess == nil {
			return fmt.Errorf("no session with ID %q", id)
		}
		fmt.Print(storage.ExportMarkdown(sess))
		return nil

	case "export":
		return sessionExport(app, p)

	default:
		return fmt.Errorf("unknown session subcommand %q", p.Subcommand())
	}
}

func sessionList(app *App, args Args) error {
	sessions := app.Store.Sessions()
	if args.JSON {
		for _, s := range sessions {
			out, err := storage.ExportJSON(s)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		}
		return nil
	}
	fmt.Println(storage.FormatSessionList(sessions, app.Store.ActiveID()))
	return nil
}

func sessionExport(app *App, p *ArgParser) error {
	id := p.Positional(1)
	if id == "" {
		id = app.Store.ActiveID()
	}
	sess := app.Store.Get(id)
	if sess == nil {
		return fmt.Errorf("no session with ID %q", id)
	}

	var out []byte
	switch format := p.FlagOrDefault("format", "md"); format {
	case "md", "markdown":
		out = []byte(storage.ExportMarkdown(sess))
	case "json":
		data, err := storage.ExportJSON(sess)
		if err != nil {
			return err
		}
		out = data
	default:
		return fmt.Errorf("unknown export format %q", format)
	}

	if path := p.Flag("out"); path != "" {
		if err := os.WriteFile(path, out, 0600); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	}
	fmt.Print(string(out))
	return nil
}
