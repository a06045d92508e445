// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the pdftutor command line surface.
//
// Running the binary with no command starts the TUI. The remaining
// commands cover scripted use: a one-shot ask, an interactive REPL,
// session management, identity management, and configuration.
package cli
