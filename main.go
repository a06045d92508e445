// pdftutor - chat with your PDFs from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/pdftutor/internal/auth"
	"github.com/morganforge/pdftutor/internal/cli"
	"github.com/morganforge/pdftutor/internal/config"
	"github.com/morganforge/pdftutor/internal/ui/chat"
	"github.com/morganforge/pdftutor/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdSession:
		if err := cli.HandleSession(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdAuth:
		if err := cli.HandleAuth(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdConfig:
		if err := cli.HandleConfig(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// runTUI wires the application together and runs the Bubble Tea program.
func runTUI(args cli.Args) {
	app, err := cli.NewApp(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	theme := styles.NewTheme()
	model := chat.New(app.Cfg, theme, app.Store, app.Ctrl, app.Client, app.Provider)
	model.SetVersion(Version)

	program := tea.NewProgram(model, tea.WithAltScreen())

	// Push identity transitions into the running program.
	unsubscribe := app.Provider.Subscribe(func(user auth.User, state auth.State) {
		program.Send(chat.AuthChangedMsg{User: user, State: state})
	})
	defer unsubscribe()

	// Pick up config file edits while the TUI is running.
	if path, err := config.Path(); err == nil {
		watcher, werr := config.Watch(path, func(cfg *config.Config) {
			program.Send(chat.ConfigReloadedMsg{Cfg: cfg})
		})
		if werr == nil {
			defer watcher.Close()
		}
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
