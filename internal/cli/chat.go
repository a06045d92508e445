// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/morganforge/pdftutor/internal/attach"
	"github.com/morganforge/pdftutor/internal/config"
	"github.com/morganforge/pdftutor/internal/controller"
	"github.com/morganforge/pdftutor/internal/storage"
	"github.com/morganforge/pdftutor/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	errStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// replInput wraps liner with a persistent history file.
type replInput struct {
	line        *liner.State
	historyFile string
}

func newREPLInput() *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &replInput{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *replInput) Read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *replInput) Close() {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat runs the interactive REPL.
func HandleChat(args Args) {
	app, err := NewApp(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	input := newREPLInput()
	defer input.Close()

	if !args.Quiet {
		printBanner(app)
	}

	for {
		line, err := input.Read(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println(infoStyle.Render("Bye."))
				return
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runREPLCommand(app, line); quit {
				return
			}
			continue
		}

		askInREPL(app, line, args.Quiet)
	}
}

func printBanner(app *App) {
	fmt.Println(bannerStyle.Render("pdftutor chat"))
	if sess := app.Store.Active(); sess != nil {
		fmt.Println(infoStyle.Render("Active PDF: " + sess.Document.Name))
	} else {
		fmt.Println(infoStyle.Render("No PDF attached. Use /open <path> to start."))
	}
	fmt.Println(infoStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

func askInREPL(app *App, question string, quiet bool) {
	answer, err := app.Ctrl.Ask(context.Background(), question)
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrNoActiveSession):
			fmt.Println(errStyle.Render("No PDF attached. Use /open <path> first."))
		default:
			fmt.Println(errStyle.Render("Failed to get a response. Please try again."))
		}
		return
	}
	fmt.Println(renderMarkdown(answer.Content, quiet))
}

// =============================================================================
// REPL COMMANDS
// =============================================================================

func runREPLCommand(app *App, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		printREPLHelp()

	case "/open", "/o":
		if arg == "" {
			fmt.Println(errStyle.Render("Usage: /open <path to pdf>"))
			return false
		}
		doc, err := attach.LoadPDF(arg)
		if err != nil {
			if errors.Is(err, attach.ErrInvalidType) {
				fmt.Println(errStyle.Render("Invalid file type. Please provide a PDF."))
			} else {
				fmt.Println(errStyle.Render("Failed to open PDF: " + err.Error()))
			}
			return false
		}
		app.CreateSession(doc)
		fmt.Println(commandStyle.Render("PDF uploaded: " + doc.Name))

	case "/list", "/ls":
		fmt.Println(storage.FormatSessionList(app.Store.Sessions(), app.Store.ActiveID()))

	case "/select":
		if !app.Store.Select(arg) {
			fmt.Println(errStyle.Render("No session with that ID."))
			return false
		}
		sess := app.Store.Active()
		fmt.Println(commandStyle.Render("Switched to \"" + sess.Title + "\""))

	case "/delete", "/rm":
		id := arg
		if id == "" {
			id = app.Store.ActiveID()
		}
		if err := app.Store.Delete(id); err != nil {
			fmt.Println(errStyle.Render("No session with that ID."))
			return false
		}
		fmt.Println(commandStyle.Render("Chat deleted."))

	case "/elif":
		sess := app.Store.Active()
		if sess == nil {
			fmt.Println(errStyle.Render("No active session."))
			return false
		}
		app.Store.SetELIFMode(sess.ID, !sess.ELIFMode)
		if sess.ELIFMode {
			fmt.Println(commandStyle.Render("ELIF mode on."))
		} else {
			fmt.Println(commandStyle.Render("ELIF mode off."))
		}

	case "/history":
		sess := app.Store.Active()
		if sess == nil || sess.IsEmpty() {
			fmt.Println(infoStyle.Render("No messages yet."))
			return false
		}
		for _, msg := range sess.Messages {
			fmt.Println(promptStyle.Render(msg.Role.DisplayName()+":") + " " + msg.Content)
		}

	default:
		fmt.Println(errStyle.Render("Unknown command " + cmd + ". Try /help."))
	}
	return false
}

func printREPLHelp() {
	help := []struct{ cmd, desc string }{
		{"/open <path>", "Upload a PDF and start a new chat"},
		{"/list", "List chat sessions"},
		{"/select <id>", "Switch to another session"},
		{"/delete [id]", "Delete a session (default: active)"},
		{"/elif", "Toggle explain-like-I'm-five mode"},
		{"/history", "Show the conversation so far"},
		{"/quit", "Exit"},
	}
	for _, h := range help {
		fmt.Printf("  %s  %s\n", commandStyle.Render(fmt.Sprintf("%-14s", h.cmd)), infoStyle.Render(h.desc))
	}
}
