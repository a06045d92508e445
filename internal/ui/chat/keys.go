// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings for the chat view. The question
// input owns plain keys, so every shortcut lives on a control chord.
type KeyMap struct {
	Submit      key.Binding
	Quit        key.Binding
	Help        key.Binding
	NewSession  key.Binding
	DeleteChat  key.Binding
	OpenPDF     key.Binding
	ToggleELIF  key.Binding
	Sidebar     key.Binding
	PrevSession key.Binding
	NextSession key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Cancel      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "ask"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1", "ctrl+g"),
			key.WithHelp("F1", "help"),
		),
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		DeleteChat: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "delete chat"),
		),
		OpenPDF: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "open PDF"),
		),
		ToggleELIF: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "ELIF mode"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "sidebar"),
		),
		PrevSession: key.NewBinding(
			key.WithKeys("ctrl+up", "ctrl+k"),
			key.WithHelp("C-k", "previous chat"),
		),
		NextSession: key.NewBinding(
			key.WithKeys("ctrl+down", "ctrl+j"),
			key.WithHelp("C-j", "next chat"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "dismiss"),
		),
	}
}

// HelpLines returns the shortcut reference shown by the help overlay.
func (k KeyMap) HelpLines() []string {
	bindings := []key.Binding{
		k.Submit, k.OpenPDF, k.NewSession, k.DeleteChat, k.ToggleELIF,
		k.Sidebar, k.PrevSession, k.NextSession,
		k.PageUp, k.PageDown, k.Help, k.Quit,
	}
	lines := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, h.Key+"  "+h.Desc)
	}
	return lines
}
