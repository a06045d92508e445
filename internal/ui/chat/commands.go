// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/pdftutor/internal/attach"
	"github.com/morganforge/pdftutor/internal/controller"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// AskTutorCmd runs a started exchange against the tutor backend. The
// resulting message carries the exchange's session ID so a stale answer can
// be dropped after the session was switched or deleted.
func AskTutorCmd(client controller.TutorClient, ex *controller.Exchange, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp, err := client.Ask(ctx, ex.Request)
		if err != nil {
			return AnswerFailedMsg{SessionID: ex.SessionID, Err: err}
		}
		return AnswerReceivedMsg{SessionID: ex.SessionID, Answer: resp.Answer}
	}
}

// RevealTickCmd schedules the next typewriter tick.
func RevealTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return RevealTickMsg{Time: t}
	})
}

// LoadDocumentCmd reads and validates a PDF from disk.
func LoadDocumentCmd(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := attach.LoadPDF(path)
		return DocumentLoadedMsg{Doc: doc, Err: err}
	}
}
