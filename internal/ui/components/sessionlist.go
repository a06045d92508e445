// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/morganforge/pdftutor/internal/model"
	"github.com/morganforge/pdftutor/internal/ui/styles"
	"github.com/morganforge/pdftutor/internal/util"
)

// SessionList is the sidebar listing a user's sessions, newest first.
type SessionList struct {
	// Cursor is the highlighted row.
	Cursor int

	// Width is the sidebar width in columns.
	Width int
}

// NewSessionList creates a session list sidebar.
func NewSessionList(width int) *SessionList {
	return &SessionList{Width: width}
}

// Clamp keeps the cursor inside the list after the list changes.
func (l *SessionList) Clamp(count int) {
	if l.Cursor >= count {
		l.Cursor = count - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
}

// MoveUp moves the cursor up one row.
func (l *SessionList) MoveUp() {
	if l.Cursor > 0 {
		l.Cursor--
	}
}

// MoveDown moves the cursor down one row.
func (l *SessionList) MoveDown(count int) {
	if l.Cursor < count-1 {
		l.Cursor++
	}
}

// Render draws the sidebar. The active session carries a marker; the cursor
// row is highlighted.
func (l *SessionList) Render(theme *styles.Theme, sessions []*model.Session, activeID string) string {
	if len(sessions) == 0 {
		return theme.SessionMeta.Render("No documents yet")
	}

	var sb strings.Builder
	for i, sess := range sessions {
		marker := "  "
		if sess.ID == activeID {
			marker = "● "
		}

		title := util.TruncateRunes(sess.Title, l.Width-6)
		line := marker + title

		style := theme.SessionItem
		if i == l.Cursor {
			style = theme.SessionItemSelected
		}
		sb.WriteString(style.Render(line))
		sb.WriteString("\n")
		sb.WriteString(theme.SessionMeta.Render("    " +
			util.IntToString(sess.MessageCount()) + " messages"))
		if i < len(sessions)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
