// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSession
	CmdAuth
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet bool
	JSON  bool
	Model string
	ELIF  bool

	// Command-specific
	Query string
	PDF   string

	// Raw args remaining after the command name
	Raw []string
}

const usageText = `pdftutor - chat with your PDFs from the terminal

Upload a PDF and ask questions about it. Answers come from a tutor
persona that explains concepts instead of just quoting the document.

Usage:
  pdftutor                        Start the TUI (default)
  pdftutor ask --pdf FILE "q"     Ask a single question about a PDF
  pdftutor chat                   Interactive chat REPL
  pdftutor session [subcommand]   Manage chat sessions
  pdftutor auth [subcommand]      Sign in, sign out, register
  pdftutor config [show|set|path] Configuration
  pdftutor version                Show version
  pdftutor help                   Show this help

Ask:
  pdftutor ask --pdf notes.pdf "What is chapter 2 about?"
    --pdf FILE      PDF to attach (required unless a session is active)
    --elif          Explain like I'm five
    --model NAME    Override the tutor model

Session Commands:
  pdftutor session list               List chat sessions
  pdftutor session show [id]          Print a session as markdown
  pdftutor session select <id>        Make a session active
  pdftutor session delete <id>        Delete a session (--yes skips confirm)
  pdftutor session export <id>        Export a session
    --format md|json                  Export format (default md)
    --out FILE                        Write to a file instead of stdout

Auth Commands:
  pdftutor auth login                 Sign in
  pdftutor auth logout                Sign out
  pdftutor auth whoami                Show the signed-in user
  pdftutor auth register              Create an account
  pdftutor auth mfa                   Enable TOTP for the current account

Global Flags:
  --quiet, -q     Minimal output
  --json          Machine-readable output where supported
  --model NAME    Override the tutor model

Environment:
  PDFTUTOR_GEMINI_KEY   Gemini API key (GEMINI_API_KEY also honored)
  PDFTUTOR_MODEL        Override the tutor model
`

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("pdftutor %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// Parse reads os.Args and returns the command to run.
func Parse() (Command, Args) {
	raw := os.Args[1:]
	remaining, parsed := parseGlobalFlags(raw)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed

	case "chat":
		return CmdChat, parsed

	case "session", "sessions":
		return CmdSession, parsed

	case "auth", "login", "logout", "whoami":
		// login/logout/whoami work as top-level shortcuts.
		if cmd != "auth" {
			parsed.Raw = append([]string{cmd}, remaining...)
		}
		return CmdAuth, parsed

	case "config":
		return CmdConfig, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags strips flags that apply to every command.
func parseGlobalFlags(raw []string) ([]string, Args) {
	var args Args
	remaining := make([]string, 0, len(raw))

	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case "--quiet", "-q":
			args.Quiet = true
		case "--json":
			args.JSON = true
		case "--elif":
			args.ELIF = true
		case "--model", "-m":
			if i+1 < len(raw) {
				args.Model = raw[i+1]
				i++
			}
		default:
			remaining = append(remaining, raw[i])
		}
	}
	return remaining, args
}

// parseAskArgs extracts the PDF path and joins the rest into the question.
func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.PDF = p.Flag("pdf")
	if p.BoolFlag("elif") {
		args.ELIF = true
	}
	args.Query = strings.Join(p.PositionalFrom(0), " ")
}
