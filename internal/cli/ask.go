// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"

	"github.com/morganforge/pdftutor/internal/attach"
	"github.com/morganforge/pdftutor/internal/tutor"
	"github.com/morganforge/pdftutor/internal/ui/components"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAsk runs a one-shot question against a PDF and prints the answer.
// With --pdf it starts a fresh session; without it the active session's
// document is reused.
func HandleAsk(args Args) {
	if args.Query == "" {
		fmt.Fprintln(os.Stderr, "Error: no question given")
		fmt.Fprintln(os.Stderr, "Usage: pdftutor ask --pdf FILE \"question\"")
		os.Exit(1)
	}

	app, err := NewApp(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if args.PDF != "" {
		doc, err := attach.LoadPDF(args.PDF)
		if err != nil {
			if errors.Is(err, attach.ErrInvalidType) {
				fmt.Fprintln(os.Stderr, "Error: invalid file type, please provide a PDF")
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}
		app.CreateSession(doc)
	} else if app.Store.Active() == nil {
		fmt.Fprintln(os.Stderr, "Error: no active session, use --pdf to attach a document")
		os.Exit(1)
	}

	if args.ELIF {
		app.Store.SetELIFMode(app.Store.ActiveID(), true)
	}

	answer, err := app.Ctrl.Ask(context.Background(), args.Query)
	if err != nil {
		switch {
		case errors.Is(err, tutor.ErrNotConfigured):
			fmt.Fprintln(os.Stderr, "Error: no API key configured, set PDFTUTOR_GEMINI_KEY")
		case errors.Is(err, tutor.ErrAuthFailed):
			fmt.Fprintln(os.Stderr, "Error: the API key was rejected")
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if args.JSON {
		out, _ := json.Marshal(map[string]string{"answer": answer.Content})
		fmt.Println(string(out))
		return
	}
	fmt.Println(renderMarkdown(answer.Content, args.Quiet))
}

// renderMarkdown pretty-prints an answer for the terminal. Quiet mode and
// renderer failures fall back to the raw text.
func renderMarkdown(text string, quiet bool) string {
	if quiet {
		return text
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return components.RenderPlain(text)
	}
	out, err := r.Render(text)
	if err != nil {
		return components.RenderPlain(text)
	}
	return out
}
