// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/pdftutor/internal/attach"
	"github.com/morganforge/pdftutor/internal/auth"
	"github.com/morganforge/pdftutor/internal/config"
	"github.com/morganforge/pdftutor/internal/controller"
	"github.com/morganforge/pdftutor/internal/store"
	"github.com/morganforge/pdftutor/internal/ui/components"
	"github.com/morganforge/pdftutor/internal/ui/styles"
)

// =============================================================================
// INPUT MODES
// =============================================================================

// inputMode selects what the input field currently captures.
type inputMode int

const (
	modeQuestion inputMode = iota // Typing a question for the tutor
	modePath                      // Typing a PDF path to open
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the tutoring view.
type Model struct {
	// Styling
	theme *styles.Theme
	cfg   *config.Config

	// Wiring
	st       *store.Store
	ctrl     *controller.Controller
	client   controller.TutorClient
	provider auth.Provider

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	sessions *components.SessionList
	confirm  components.ConfirmDialog
	toasts   *components.ToastManager
	welcome  components.Welcome
	md       *components.MarkdownRenderer

	// Key bindings
	keyMap KeyMap

	// Dimensions
	width  int
	height int

	// View state
	showSidebar bool
	showHelp    bool
	mode        inputMode

	// Pending state. thinking is true between submitting a question and
	// receiving its answer or failure.
	thinking      bool
	thinkingStart time.Time

	// Identity
	user      auth.User
	authState auth.State
}

// New creates the tutoring view.
func New(cfg *config.Config, theme *styles.Theme, st *store.Store, ctrl *controller.Controller, client controller.TutorClient, provider auth.Provider) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about your PDF..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	mdWidth := cfg.UI.MarkdownWidth
	if mdWidth == 0 {
		mdWidth = 76
	}
	md, err := components.NewMarkdownRenderer(mdWidth)
	if err != nil {
		md = nil
	}

	welcome := components.NewWelcome(theme)
	welcome.SetModelName(cfg.Tutor.Model)

	m := Model{
		theme:       theme,
		cfg:         cfg,
		st:          st,
		ctrl:        ctrl,
		client:      client,
		provider:    provider,
		viewport:    vp,
		input:       ti,
		spinner:     sp,
		sessions:    components.NewSessionList(30),
		toasts:      components.NewToastManager(),
		welcome:     welcome,
		md:          md,
		keyMap:      DefaultKeyMap(),
		showSidebar: true,
		authState:   auth.StateLoading,
	}
	if provider != nil {
		m.user, m.authState = provider.Current()
		if m.authState == auth.StateSignedIn {
			m.welcome.SetUsername(m.user.Username)
		}
	}
	m.syncSessionCursor()
	return m
}

// SetVersion sets the version shown on the welcome screen.
func (m *Model) SetVersion(v string) {
	m.welcome.SetVersion(v)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, components.ToastTickCmd())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case AnswerReceivedMsg:
		return m.handleAnswer(msg)

	case AnswerFailedMsg:
		return m.handleFailure(msg)

	case RevealTickMsg:
		return m.handleRevealTick()

	case DocumentLoadedMsg:
		return m.handleDocumentLoaded(msg)

	case ConfigReloadedMsg:
		m.cfg = msg.Cfg
		m.welcome.SetModelName(msg.Cfg.Tutor.Model)
		m.toasts.AddStatus("Config Reloaded", "Configuration changes applied.")
		return m, components.ToastTickCmd()

	case AuthChangedMsg:
		m.user, m.authState = msg.User, msg.State
		if msg.State == auth.StateSignedIn {
			m.welcome.SetUsername(msg.User.Username)
		} else {
			m.welcome.SetUsername("")
		}
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.thinking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal layers eat all input while visible.
	if m.confirm.Visible {
		return m.handleConfirmKey(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.st.Flush()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keyMap.Cancel):
		if m.mode == modePath {
			m.setQuestionMode()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.OpenPDF), key.Matches(msg, m.keyMap.NewSession):
		m.setPathMode()
		return m, nil

	case key.Matches(msg, m.keyMap.DeleteChat):
		if sess := m.st.Active(); sess != nil {
			m.confirm.Show("Delete Chat", "Delete \""+sess.Title+"\"? This cannot be undone.", sess.ID)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleELIF):
		if sess := m.st.Active(); sess != nil {
			m.st.SetELIFMode(sess.ID, !sess.ELIFMode)
			if sess.ELIFMode {
				m.toasts.AddStatus("ELIF Mode On", "Answers will use five-year-old explanations.")
			} else {
				m.toasts.AddStatus("ELIF Mode Off", "Answers return to normal depth.")
			}
			return m, components.ToastTickCmd()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Sidebar):
		m.showSidebar = !m.showSidebar
		m.resize(m.width, m.height)
		return m, nil

	case key.Matches(msg, m.keyMap.PrevSession):
		m.moveSession(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.NextSession):
		m.moveSession(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		m.confirm.Toggle()
	case "esc", "n":
		m.confirm.Hide()
	case "y":
		id := m.confirm.Payload
		m.confirm.Hide()
		return m.deleteSession(id)
	case "enter":
		confirmed := m.confirm.Confirmed()
		id := m.confirm.Payload
		m.confirm.Hide()
		if confirmed {
			return m.deleteSession(id)
		}
	}
	return m, nil
}

func (m Model) deleteSession(id string) (tea.Model, tea.Cmd) {
	m.finishReveal()
	if err := m.st.Delete(id); err != nil {
		m.toasts.AddError("Delete Failed", err.Error())
		return m, components.ToastTickCmd()
	}
	m.syncSessionCursor()
	m.refreshViewport()
	m.toasts.AddSuccess("Chat Deleted", "The chat session was removed.")
	return m, components.ToastTickCmd()
}

// =============================================================================
// SUBMIT HANDLING
// =============================================================================

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.mode == modePath {
		path := m.input.Value()
		m.setQuestionMode()
		if path == "" {
			return m, nil
		}
		return m, LoadDocumentCmd(path)
	}

	ex, err := m.ctrl.Begin(m.input.Value())
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrEmptyInput):
			// Nothing to do.
		case errors.Is(err, controller.ErrBusy):
			m.toasts.AddStatus("Please Wait", "The tutor is still answering.")
			return m, components.ToastTickCmd()
		case errors.Is(err, controller.ErrNoActiveSession):
			m.toasts.AddError("No PDF Uploaded", "Open a PDF before asking questions.")
			return m, components.ToastTickCmd()
		default:
			m.toasts.AddError("Error", err.Error())
			return m, components.ToastTickCmd()
		}
		return m, nil
	}

	m.finishReveal()
	m.input.Reset()
	m.thinking = true
	m.thinkingStart = time.Now()
	m.refreshViewport()

	timeout := time.Duration(m.cfg.Tutor.TimeoutSecs) * time.Second
	return m, tea.Batch(
		AskTutorCmd(m.client, ex, timeout),
		m.spinner.Tick,
	)
}

// =============================================================================
// ASYNC RESULT HANDLING
// =============================================================================

func (m Model) handleAnswer(msg AnswerReceivedMsg) (tea.Model, tea.Cmd) {
	m.thinking = false
	answer, err := m.ctrl.Complete(msg.SessionID, msg.Answer)
	if err != nil {
		m.toasts.AddError("Error", err.Error())
		return m, components.ToastTickCmd()
	}
	if answer == nil {
		// The session the answer belongs to is gone. Drop it.
		return m, nil
	}
	if msg.SessionID != m.st.ActiveID() {
		// The user moved on. Settle the answer now so it renders in
		// full when they come back; ticks only follow the active
		// session.
		answer.FinishReveal()
		return m, nil
	}
	m.refreshViewport()
	return m, RevealTickCmd(m.revealInterval())
}

func (m Model) handleFailure(msg AnswerFailedMsg) (tea.Model, tea.Cmd) {
	m.thinking = false
	restored, rolledBack := m.ctrl.Fail(msg.SessionID)
	if !rolledBack {
		return m, nil
	}
	m.input.SetValue(restored)
	m.input.CursorEnd()
	m.refreshViewport()
	m.toasts.AddError("Error", "Failed to get a response. Please try again.")
	return m, components.ToastTickCmd()
}

func (m Model) handleDocumentLoaded(msg DocumentLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, attach.ErrInvalidType):
			m.toasts.AddError("Invalid File Type", "Please upload a PDF file.")
		case errors.Is(msg.Err, attach.ErrTooLarge):
			m.toasts.AddError("File Too Large", "The PDF exceeds the size limit.")
		default:
			m.toasts.AddError("Upload Failed", msg.Err.Error())
		}
		return m, components.ToastTickCmd()
	}

	m.finishReveal()
	sess := m.st.Create(msg.Doc)
	if m.cfg.UI.ELIFDefault {
		m.st.SetELIFMode(sess.ID, true)
	}
	m.syncSessionCursor()
	m.refreshViewport()
	m.toasts.AddSuccess("PDF Uploaded", msg.Doc.Name)
	return m, components.ToastTickCmd()
}

// =============================================================================
// SESSION NAVIGATION
// =============================================================================

// moveSession moves the sidebar cursor and activates the session under it.
// Switching away from a revealing answer snaps it to fully visible first.
func (m *Model) moveSession(delta int) {
	sessions := m.st.Sessions()
	if len(sessions) == 0 {
		return
	}
	m.finishReveal()
	if delta < 0 {
		m.sessions.MoveUp()
	} else {
		m.sessions.MoveDown(len(sessions))
	}
	m.st.Select(sessions[m.sessions.Cursor].ID)
	m.refreshViewport()
}

// syncSessionCursor points the sidebar cursor at the active session.
func (m *Model) syncSessionCursor() {
	sessions := m.st.Sessions()
	activeID := m.st.ActiveID()
	for i, s := range sessions {
		if s.ID == activeID {
			m.sessions.Cursor = i
			return
		}
	}
	m.sessions.Clamp(len(sessions))
}

// =============================================================================
// INPUT MODE SWITCHING
// =============================================================================

func (m *Model) setPathMode() {
	m.mode = modePath
	m.input.Reset()
	m.input.Prompt = "pdf> "
	m.input.Placeholder = "Path to a PDF file..."
}

func (m *Model) setQuestionMode() {
	m.mode = modeQuestion
	m.input.Reset()
	m.input.Prompt = "> "
	m.input.Placeholder = "Ask a question about your PDF..."
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.welcome.SetSize(width, height)
	m.theme.SetSize(width, height)

	contentWidth := width
	if m.showSidebar {
		contentWidth -= sidebarWidth
	}
	// Header, input line, and status bar each take a row plus padding.
	contentHeight := height - chromeHeight
	if contentHeight < 3 {
		contentHeight = 3
	}
	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.input.Width = contentWidth - 6
	m.refreshViewport()
}
