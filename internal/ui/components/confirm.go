// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/pdftutor/internal/ui/styles"
)

// ConfirmDialog is a modal yes/no prompt. Session deletion is destructive,
// so it always goes through this dialog.
type ConfirmDialog struct {
	Visible bool
	Title   string
	Message string

	// Payload identifies what is being confirmed (a session ID).
	Payload string

	// yesSelected tracks which button the cursor is on. Default is No.
	yesSelected bool
}

// Show opens the dialog for a payload.
func (d *ConfirmDialog) Show(title, message, payload string) {
	d.Visible = true
	d.Title = title
	d.Message = message
	d.Payload = payload
	d.yesSelected = false
}

// Hide closes the dialog.
func (d *ConfirmDialog) Hide() {
	d.Visible = false
	d.Payload = ""
}

// Toggle moves the cursor between Yes and No.
func (d *ConfirmDialog) Toggle() {
	d.yesSelected = !d.yesSelected
}

// Confirmed reports whether the cursor is on Yes.
func (d *ConfirmDialog) Confirmed() bool {
	return d.yesSelected
}

// Render draws the dialog box.
func (d *ConfirmDialog) Render(theme *styles.Theme) string {
	if !d.Visible {
		return ""
	}

	yes, no := theme.DialogButton.Render("Yes"), theme.DialogActive.Render("No")
	if d.yesSelected {
		yes, no = theme.DialogActive.Render("Yes"), theme.DialogButton.Render("No")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yes, "  ", no)

	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.DialogTitle.Render(d.Title),
		"",
		d.Message,
		"",
		buttons,
	)
	return theme.DialogBox.Render(body)
}
