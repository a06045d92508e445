// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the pdftutor TUI:
// toast notifications, the delete confirmation dialog, the session sidebar,
// the welcome screen, and the markdown renderer for tutor answers.
package components
