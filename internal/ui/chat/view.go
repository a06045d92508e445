// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/pdftutor/internal/model"
	"github.com/morganforge/pdftutor/internal/ui/components"
	"github.com/morganforge/pdftutor/internal/util"
)

// Layout constants. chromeHeight is the header plus the input line plus the
// status bar.
const (
	sidebarWidth = 32
	chromeHeight = 5
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the tutoring view.
func (m Model) View() string {
	if m.width == 0 {
		m.width = 80
	}
	if m.height == 0 {
		m.height = 24
	}

	if m.confirm.Visible {
		dialog := m.confirm.Render(m.theme)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.st.Count() == 0 && m.cfg.UI.ShowWelcome {
		return m.welcome.View()
	}

	header := m.renderHeader()

	main := m.viewport.View()
	if m.showSidebar {
		sidebar := m.sessions.Render(m.theme, m.st.Sessions(), m.st.ActiveID())
		sidebar = lipgloss.NewStyle().
			Width(sidebarWidth).
			Height(m.viewport.Height).
			Render(sidebar)
		main = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	}

	inputLine := m.renderInputLine()
	status := m.renderStatusBar()

	view := lipgloss.JoinVertical(lipgloss.Left, header, main, inputLine, status)

	if m.toasts.HasToasts() {
		toasts := components.RenderToasts(m.theme, m.toasts.Toasts(), m.width)
		view = lipgloss.JoinVertical(lipgloss.Left, view, toasts)
	}
	return view
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("pdftutor")

	subtitle := ""
	if sess := m.st.Active(); sess != nil {
		doc := util.TruncateRunes(sess.Document.Name, 40)
		subtitle = m.theme.HeaderSubtitle.Render(doc)
		if sess.ELIFMode {
			subtitle += " " + m.theme.WarningStyle.Render("[ELIF]")
		}
	}

	user := ""
	if m.user.Username != "" {
		user = m.theme.HeaderSubtitle.Render(m.user.Username)
	}

	left := title
	if subtitle != "" {
		left += "  " + subtitle
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(user) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Container.Render(left + strings.Repeat(" ", gap) + user)
}

func (m Model) renderInputLine() string {
	if m.thinking {
		return m.theme.Container.Render(
			m.spinner.View() + " " + m.theme.ThinkingText.Render("The tutor is thinking..."),
		)
	}
	return m.theme.Container.Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	shortcuts := []struct{ key, desc string }{
		{"Enter", "ask"},
		{"C-o", "open PDF"},
		{"C-e", "ELIF"},
		{"C-d", "delete"},
		{"F1", "help"},
		{"C-c", "quit"},
	}
	parts := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		parts = append(parts, m.theme.ShortcutKey.Render(s.key)+" "+m.theme.ShortcutDesc.Render(s.desc))
	}
	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.DialogTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, line := range m.keyMap.HelpLines() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutDesc.Render("Press any key to close"))

	box := m.theme.DialogBox.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

// refreshViewport rebuilds the conversation content and pins the view to the
// bottom so the newest exchange stays visible.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	sess := m.st.Active()
	if sess == nil {
		return m.theme.ThinkingText.Render("Open a PDF to start a chat.")
	}

	width := m.viewport.Width - 4
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for i, msg := range sess.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg, width))
		b.WriteString("\n")
	}
	if sess.IsEmpty() {
		b.WriteString(m.theme.ThinkingText.Render("Ask your first question about " + sess.Document.Name + "."))
	}
	return b.String()
}

func (m Model) renderMessage(msg *model.Message, width int) string {
	label := msg.Role.DisplayName()
	content := msg.VisibleContent()

	if msg.Role == model.RoleUser {
		body := m.theme.UserBubble.Width(width).Render(content)
		return m.theme.SessionMeta.Render(label) + "\n" + body
	}

	// Markdown rendering waits until the reveal is done so partial
	// formatting never flashes on screen.
	if !msg.IsRevealing {
		if m.md != nil {
			content = m.md.Render(content)
		} else {
			content = components.RenderPlain(content)
		}
	}
	body := m.theme.TutorBubble.Width(width).Render(content)
	return m.theme.SessionMeta.Render(label) + "\n" + body
}
