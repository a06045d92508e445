// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/pdftutor/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN MODEL
// =============================================================================

// Welcome is the screen shown before a document is attached.
type Welcome struct {
	version   string
	modelName string
	username  string

	width  int
	height int

	theme *styles.Theme
}

// NewWelcome creates a new welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		version:   "dev",
		modelName: "gemini-1.5-flash",
		theme:     theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetModelName sets the tutor model name.
func (w *Welcome) SetModelName(name string) {
	w.modelName = name
}

// SetUsername sets the signed-in username shown under the logo.
func (w *Welcome) SetUsername(name string) {
	w.username = name
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the welcome screen.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}
	return w, nil
}

// View renders the welcome screen, centered in the terminal.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	boxWidth := 58
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	if boxWidth < 36 {
		boxWidth = 36
	}

	content := w.renderLogo()
	content += "\n\n" + w.renderVersion()
	content += "\n\n" + w.renderInfo()
	content += "\n\n" + w.renderHint()

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 4).
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(content)

	if lipgloss.Height(box) >= height {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// SECTION RENDERING
// =============================================================================

func (w Welcome) renderLogo() string {
	logo := `            _  __ _         _
  _ __   __| |/ _| |_ _   _| |_ ___  _ __
 | '_ \ / _` + "`" + ` | |_| __| | | | __/ _ \| '__|
 | |_) | (_| |  _| |_| |_| | || (_) | |
 | .__/ \__,_|_|  \__|\__,_|\__\___/|_|
 |_|`
	return w.theme.WelcomeLogo.Render(logo)
}

func (w Welcome) renderVersion() string {
	return w.theme.WelcomeInfo.Render("pdftutor " + w.version)
}

func (w Welcome) renderInfo() string {
	info := w.theme.WelcomeInfo

	user := w.username
	if user == "" {
		user = "not signed in"
	}
	return info.Render("Tutor:  "+w.modelName) + "\n" +
		info.Render("User:   "+user)
}

func (w Welcome) renderHint() string {
	return w.theme.WelcomePressKey.Render("Press o to open a PDF, ? for help")
}
