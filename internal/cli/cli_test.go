// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"testing"
)

func TestArgParser_Formats(t *testing.T) {
	p := NewArgParser([]string{"export", "abc123", "--format=json", "--out", "chat.json", "--quiet"})

	if got := p.Subcommand(); got != "export" {
		t.Errorf("Subcommand = %q, want export", got)
	}
	if got := p.Positional(1); got != "abc123" {
		t.Errorf("Positional(1) = %q", got)
	}
	if got := p.Flag("format"); got != "json" {
		t.Errorf("Flag(format) = %q", got)
	}
	if got := p.Flag("out"); got != "chat.json" {
		t.Errorf("Flag(out) = %q", got)
	}
	if !p.BoolFlag("quiet") {
		t.Error("BoolFlag(quiet) = false")
	}
	if p.BoolFlag("missing") {
		t.Error("BoolFlag(missing) = true")
	}
}

func TestArgParser_ExplicitBooleans(t *testing.T) {
	p := NewArgParser([]string{"--json=false", "--verbose=true"})
	if p.BoolFlag("json") {
		t.Error("json should be false")
	}
	if !p.BoolFlag("verbose") {
		t.Error("verbose should be true")
	}
}

func TestArgParser_Defaults(t *testing.T) {
	p := NewArgParser([]string{"list"})
	if got := p.FlagOrDefault("format", "md"); got != "md" {
		t.Errorf("FlagOrDefault = %q, want md", got)
	}
	if got := p.FlagIntOrDefault("width", 80); got != 80 {
		t.Errorf("FlagIntOrDefault = %d, want 80", got)
	}
	if got := p.Positional(5); got != "" {
		t.Errorf("out-of-range Positional = %q", got)
	}
}

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{[]string{"pdftutor"}, CmdTUI},
		{[]string{"pdftutor", "ask", "--pdf", "a.pdf", "what", "is", "this"}, CmdAsk},
		{[]string{"pdftutor", "chat"}, CmdChat},
		{[]string{"pdftutor", "session", "list"}, CmdSession},
		{[]string{"pdftutor", "auth", "login"}, CmdAuth},
		{[]string{"pdftutor", "login"}, CmdAuth},
		{[]string{"pdftutor", "config", "show"}, CmdConfig},
		{[]string{"pdftutor", "version"}, CmdVersion},
		{[]string{"pdftutor", "help"}, CmdHelp},
		{[]string{"pdftutor", "bogus"}, CmdHelp},
	}

	for _, tt := range tests {
		os.Args = tt.args
		cmd, _ := Parse()
		if cmd != tt.want {
			t.Errorf("Parse(%v) = %v, want %v", tt.args[1:], cmd, tt.want)
		}
	}
}

func TestParse_AskArgs(t *testing.T) {
	os.Args = []string{"pdftutor", "ask", "--pdf", "notes.pdf", "--elif", "what", "is", "photosynthesis"}
	cmd, args := Parse()

	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.PDF != "notes.pdf" {
		t.Errorf("PDF = %q", args.PDF)
	}
	if !args.ELIF {
		t.Error("ELIF should be set")
	}
	if args.Query != "what is photosynthesis" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	os.Args = []string{"pdftutor", "--quiet", "--model", "gemini-1.5-pro", "chat"}
	cmd, args := Parse()

	if cmd != CmdChat {
		t.Fatalf("cmd = %v, want CmdChat", cmd)
	}
	if !args.Quiet {
		t.Error("Quiet should be set")
	}
	if args.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q", args.Model)
	}
}
