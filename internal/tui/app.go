// Package tui is the interactive workspace: a login form, a session picker,
// and the writer screen driven by the orchestrator.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/atharva-labs/atharva-cli/internal/auth"
	"github.com/atharva-labs/atharva-cli/internal/errs"
	"github.com/atharva-labs/atharva-cli/internal/model"
	"github.com/atharva-labs/atharva-cli/internal/session"
	"github.com/atharva-labs/atharva-cli/internal/writer"
)

type screen int

const (
	screenLogin screen = iota
	screenSessions
	screenWriter
)

type (
	loginDoneMsg      struct{ err error }
	sessionsLoadedMsg struct {
		sessions []model.WritingSession
		err      error
	}
	sessionCreatedMsg struct {
		created *model.WritingSession
		err     error
	}
	sessionDeletedMsg struct {
		id  int64
		err error
	}
	workspaceReadyMsg struct{ err error }
	submitDoneMsg     struct{ err error }
)

// Model is the bubbletea application state.
type Model struct {
	log      *zap.Logger
	auth     *auth.Manager
	registry *session.Registry
	ws       *writer.Orchestrator
	th       theme

	screen screen
	width  int
	height int
	notice string
	errMsg string

	// login
	username textinput.Model
	password textinput.Model
	focus    int
	loggingIn bool

	// sessions
	sessions   []model.WritingSession
	cursor     int
	creating   bool
	title      textinput.Model
	loading    bool

	// writer
	input      textarea.Model
	stream     viewport.Model
	spin       spinner.Model
	submitting bool
}

// New builds the application model. When the auth manager already holds a
// restored identity the session picker is the entry screen.
func New(authMgr *auth.Manager, registry *session.Registry, ws *writer.Orchestrator, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	title := textinput.New()
	title.Placeholder = "session title"

	input := textarea.New()
	input.Placeholder = "Type your content or story prompt here..."
	input.SetHeight(4)
	input.CharLimit = 0

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		log:      log,
		auth:     authMgr,
		registry: registry,
		ws:       ws,
		th:       defaultTheme(),
		screen:   screenLogin,
		username: username,
		password: password,
		title:    title,
		input:    input,
		stream:   viewport.New(80, 20),
		spin:     spin,
	}
	if authMgr.Authenticated() {
		m.screen = screenSessions
		m.loading = true
	}
	return m
}

// Init kicks off the initial session fetch when an identity was restored, and
// jumps straight into the workspace when a session was pre-selected.
func (m Model) Init() tea.Cmd {
	if m.screen == screenSessions {
		if id := m.registry.ActiveID(); id != 0 {
			return tea.Batch(m.loadSessionsCmd(), m.openWorkspaceCmd(id))
		}
		return m.loadSessionsCmd()
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch t := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = t.Width
		m.height = t.Height
		m.stream.Width = t.Width - 4
		m.stream.Height = t.Height - 12
		if m.stream.Height < 5 {
			m.stream.Height = 5
		}
		m.input.SetWidth(t.Width - 6)
		return m, nil

	case loginDoneMsg:
		m.loggingIn = false
		if t.err != nil {
			m.errMsg = userMessage(t.err)
			return m, nil
		}
		m.errMsg = ""
		m.notice = ""
		m.password.SetValue("")
		m.screen = screenSessions
		m.loading = true
		return m, m.loadSessionsCmd()

	case sessionsLoadedMsg:
		m.loading = false
		if t.err != nil {
			return m.routeError(t.err), nil
		}
		m.errMsg = ""
		m.sessions = t.sessions
		if m.cursor >= len(m.sessions) {
			m.cursor = 0
		}
		return m, nil

	case sessionCreatedMsg:
		m.creating = false
		m.title.SetValue("")
		if t.err != nil {
			return m.routeError(t.err), nil
		}
		m.sessions = m.registry.Sessions()
		m.cursor = 0
		m.notice = "Session created"
		return m, m.openWorkspaceCmd(t.created.ID)

	case sessionDeletedMsg:
		if t.err != nil {
			return m.routeError(t.err), nil
		}
		m.sessions = m.registry.Sessions()
		if m.cursor >= len(m.sessions) && m.cursor > 0 {
			m.cursor--
		}
		m.notice = "Session deleted"
		return m, nil

	case workspaceReadyMsg:
		if t.err != nil {
			// No usable session: fail fast back to the picker.
			m.screen = screenSessions
			return m.routeError(t.err), nil
		}
		m.screen = screenWriter
		m.errMsg = ""
		m.input.SetValue(m.ws.Input())
		m.input.Focus()
		m.syncStream()
		return m, textarea.Blink

	case submitDoneMsg:
		m.submitting = false
		if t.err != nil {
			// Rolled back by the orchestrator: restore the draft on screen.
			m.input.SetValue(m.ws.Input())
			return m.routeError(t.err), nil
		}
		m.errMsg = ""
		m.input.SetValue("")
		m.syncStream()
		m.stream.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.submitting && !m.loading && !m.loggingIn {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(t)
		return m, cmd

	case tea.KeyMsg:
		if t.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(t)
		case screenSessions:
			return m.updateSessions(t)
		case screenWriter:
			return m.updateWriter(t)
		}
	}
	return m, nil
}

// routeError surfaces a failure and, on authorization failure, returns to the
// unauthenticated entry point. Persisted tokens were already cleared by the
// gateway's 401 hook.
func (m Model) routeError(err error) Model {
	if errors.Is(err, errs.ErrUnauthorized) {
		m.screen = screenLogin
		m.username.Focus()
		m.password.Blur()
		m.focus = 0
		m.notice = "Session expired, please log in again"
		m.errMsg = ""
		return m
	}
	m.errMsg = userMessage(err)
	return m
}

func (m Model) updateLogin(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.focus = (m.focus + 1) % 2
		if m.focus == 0 {
			m.username.Focus()
			m.password.Blur()
		} else {
			m.password.Focus()
			m.username.Blur()
		}
		return m, nil
	case tea.KeyEnter:
		if m.loggingIn {
			return m, nil
		}
		user := strings.TrimSpace(m.username.Value())
		pass := m.password.Value()
		if user == "" || pass == "" {
			m.errMsg = "username and password are required"
			return m, nil
		}
		m.loggingIn = true
		m.errMsg = ""
		return m, tea.Batch(m.spin.Tick, m.loginCmd(user, pass))
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(k)
	} else {
		m.password, cmd = m.password.Update(k)
	}
	return m, cmd
}

func (m Model) updateSessions(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.creating {
		switch k.Type {
		case tea.KeyEnter:
			title := m.title.Value()
			if strings.TrimSpace(title) == "" {
				// Blank title dispatches nothing.
				m.errMsg = "title must not be blank"
				return m, nil
			}
			m.errMsg = ""
			return m, m.createSessionCmd(title)
		case tea.KeyEsc:
			m.creating = false
			m.title.SetValue("")
			m.errMsg = ""
			return m, nil
		}
		var cmd tea.Cmd
		m.title, cmd = m.title.Update(k)
		return m, cmd
	}

	switch k.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.sessions) {
			return m, m.openWorkspaceCmd(m.sessions[m.cursor].ID)
		}
	case "n":
		m.creating = true
		m.title.Focus()
		m.notice = ""
		return m, textinput.Blink
	case "d":
		if m.cursor < len(m.sessions) {
			return m, m.deleteSessionCmd(m.sessions[m.cursor].ID)
		}
	case "r":
		m.loading = true
		return m, tea.Batch(m.spin.Tick, m.loadSessionsCmd())
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateWriter(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyEsc:
		if m.submitting {
			// No cancellation: the in-flight request resolves on its own.
			return m, nil
		}
		m.screen = screenSessions
		m.errMsg = ""
		return m, nil
	case tea.KeyTab:
		m.toggleMode()
		return m, nil
	case tea.KeyCtrlT:
		m.cycleOption(m.ws.SetTone, model.Tones, m.ws.Options().Tone)
		return m, nil
	case tea.KeyCtrlY:
		m.cycleOption(m.ws.SetLanguage, model.Languages, m.ws.Options().Language)
		return m, nil
	case tea.KeyCtrlG:
		opts := m.ws.Options()
		if opts.Mode == model.ModeGenerate {
			m.cycleOption(m.ws.SetGenre, model.Genres, opts.Genre)
		} else {
			m.cycleOption(m.ws.SetLevel, model.Levels, opts.Level)
		}
		return m, nil
	case tea.KeyCtrlW:
		opts := m.ws.Options()
		next := opts.TargetWords + 100
		if next > 1000 {
			next = 100
		}
		if err := m.ws.SetTargetWords(next); err == nil {
			m.notice = ""
		}
		return m, nil
	case tea.KeyPgUp:
		m.stream.LineUp(5)
		return m, nil
	case tea.KeyPgDown:
		m.stream.LineDown(5)
		return m, nil
	case tea.KeyEnter:
		if m.submitting {
			return m, nil
		}
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.submitting = true
		m.errMsg = ""
		m.input.SetValue("") // optimistic clear, restored by submitDoneMsg on failure
		return m, tea.Batch(m.spin.Tick, m.submitCmd(text))
	case tea.KeyCtrlJ:
		m.input.InsertString("\n")
		return m, nil
	}
	if m.submitting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

func (m *Model) toggleMode() {
	next := model.ModeGenerate
	if m.ws.Options().Mode == model.ModeGenerate {
		next = model.ModeEnhance
	}
	if err := m.ws.SetMode(next); err != nil {
		m.errMsg = userMessage(err)
	}
}

func (m *Model) cycleOption(set func(string) error, values []string, current string) {
	idx := 0
	for i, v := range values {
		if v == current {
			idx = (i + 1) % len(values)
			break
		}
	}
	if err := set(values[idx]); err != nil {
		m.errMsg = userMessage(err)
	}
}

func (m *Model) syncStream() {
	m.stream.SetContent(renderStream(m.th, m.ws.Paragraphs(), m.stream.Width))
}

// ---- commands ----

func (m Model) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{err: m.auth.Login(context.Background(), username, password)}
	}
}

func (m Model) loadSessionsCmd() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.registry.List(context.Background())
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func (m Model) createSessionCmd(title string) tea.Cmd {
	return func() tea.Msg {
		created, err := m.registry.Create(context.Background(), title)
		return sessionCreatedMsg{created: created, err: err}
	}
}

func (m Model) deleteSessionCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		return sessionDeletedMsg{id: id, err: m.registry.Delete(context.Background(), id)}
	}
}

func (m Model) openWorkspaceCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		return workspaceReadyMsg{err: m.ws.Start(context.Background(), id)}
	}
}

func (m Model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: m.ws.Submit(context.Background(), text)}
	}
}

// userMessage flattens an error chain into a short user-facing line.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		return "authorization failed"
	case errors.Is(err, errs.ErrNotFound):
		return "not found"
	case errors.Is(err, errs.ErrSubmissionInFlight):
		return "a request is already in flight"
	case errors.Is(err, errs.ErrBlankInput):
		return "input is blank"
	case errors.Is(err, errs.ErrNoSession):
		return "select a session first"
	}
	return err.Error()
}
