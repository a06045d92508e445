// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/pdftutor/internal/model"
)

// =============================================================================
// TYPEWRITER REVEAL
// =============================================================================

// revealInterval returns the tick cadence for the typewriter animation.
func (m Model) revealInterval() time.Duration {
	ms := m.cfg.Reveal.IntervalMs
	if ms < 1 {
		ms = 33
	}
	return time.Duration(ms) * time.Millisecond
}

// revealingMessage returns the active session's newest message if it is an
// answer still mid-reveal.
func (m Model) revealingMessage() *model.Message {
	sess := m.st.Active()
	if sess == nil {
		return nil
	}
	last := sess.GetLastMessage()
	if last == nil || !last.IsRevealing {
		return nil
	}
	return last
}

// handleRevealTick advances the reveal by a fixed number of runes and
// schedules the next tick until the answer is fully visible.
func (m Model) handleRevealTick() (tea.Model, tea.Cmd) {
	msg := m.revealingMessage()
	if msg == nil {
		return m, nil
	}

	done := msg.AdvanceReveal(m.cfg.Reveal.CharsPerTick)
	m.refreshViewport()
	if done {
		return m, nil
	}
	return m, RevealTickCmd(m.revealInterval())
}

// finishReveal snaps any in-progress reveal to fully visible. Called before
// anything that changes which conversation is on screen.
func (m *Model) finishReveal() {
	if msg := m.revealingMessage(); msg != nil {
		msg.FinishReveal()
	}
}
