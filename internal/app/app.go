package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/grain/internal/config"
	"github.com/henri123lemoine/grain/internal/debug"
	"github.com/henri123lemoine/grain/internal/engine"
	"github.com/henri123lemoine/grain/internal/exec"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/ui"
	"github.com/henri123lemoine/grain/internal/watch"
)

// Model is the main application model.
type Model struct {
	// Configuration
	config *config.Config
	repo   *git.Repo

	engine  *engine.Engine
	watcher *watch.Watcher

	// Text input shared by commit, amend, reword and find
	input textinput.Model

	// Message body kept aside while only the subject is edited
	body string

	// A refresh arrived while the session was busy with a mode
	pendingRefresh bool

	// UI
	width    int
	height   int
	keys     KeyMap
	showHelp bool
	err      error
	warnings []string

	shouldQuit bool
}

// New creates a new Model.
func New(cfg *config.Config, repo *git.Repo, eng *engine.Engine) Model {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 500

	return Model{
		config: cfg,
		repo:   repo,
		engine: eng,
		input:  input,
		keys:   KeyMapFromConfig(&cfg.Keys),
	}
}

// WithWatcher makes the model refresh on file system changes.
func (m Model) WithWatcher(w *watch.Watcher) Model {
	m.watcher = w
	return m
}

// WithWarnings shows configuration warnings in the status line.
func (m Model) WithWarnings(warnings []string) Model {
	m.warnings = warnings
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.watcher)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		l := ui.ComputeLayout(msg.Width, msg.Height)
		m.engine.SetViewport(l.DiffWidth, l.BodyHeight)
		m.input.Width = max(l.DiffWidth, 20)
		return m, nil

	case tea.KeyMsg:
		// ctrl+c quits from everywhere, even while typing
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		return m.handleKeyPress(msg)

	case RefreshMsg:
		debug.Log("refresh: %s", msg.Reason)
		m.refresh()
		return m, waitForChange(m.watcher)

	case WatchErrorMsg:
		debug.Log("watch error: %v", msg.Err)
		return m, waitForChange(m.watcher)

	case EditorFinishedMsg:
		m.err = msg.Err
		if err := m.engine.Do(engine.Refresh); err != nil && m.err == nil {
			m.err = err
		}
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles key presses based on the engine's mode.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch mode := m.engine.Mode(); {
	case mode.EditsText():
		return m.handleInputKeys(msg)
	case mode == engine.ModeReorder:
		return m.handleReorderKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

// normalActions maps bindings to actions in normal mode, in match order.
func (m Model) normalActions() []struct {
	binding key.Binding
	action  engine.Action
} {
	k := m.keys
	return []struct {
		binding key.Binding
		action  engine.Action
	}{
		{k.Switch, engine.SwitchFocus},
		{k.Up, engine.MoveUp},
		{k.Down, engine.MoveDown},
		{k.Home, engine.MoveHome},
		{k.End, engine.MoveEnd},
		{k.DiffDown, engine.DiffDown},
		{k.DiffUp, engine.DiffUp},
		{k.PageDown, engine.PageDown},
		{k.PageUp, engine.PageUp},
		{k.HalfPageDown, engine.HalfPageDown},
		{k.HalfPageUp, engine.HalfPageUp},
		{k.Left, engine.ScrollLeft},
		{k.Right, engine.ScrollRight},
		{k.Stage, engine.StageOrEnter},
		{k.StageLine, engine.StageLine},
		{k.Discard, engine.DiscardSelection},
		{k.DiscardLine, engine.DiscardLine},
		{k.Ignore, engine.IgnoreSelection},
		{k.Undo, engine.Undo},
		{k.Redo, engine.Redo},
		{k.StageAll, engine.StageAllShortcut},
		{k.UnstageAll, engine.UnstageAllShortcut},
		{k.Amend, engine.BeginAmend},
		{k.Reorder, engine.BeginReorder},
		{k.Find, engine.BeginFind},
		{k.Refresh, engine.Refresh},
	}
}

// handleNormalKeys handles key presses while navigating.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		return m.openEditor()
	}

	for _, na := range m.normalActions() {
		if key.Matches(msg, na.binding) {
			return m.do(na.action)
		}
	}
	return m, nil
}

// handleReorderKeys handles key presses while a reorder plan is edited.
func (m Model) handleReorderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var action engine.Action
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		action = engine.CancelReorder
	case key.Matches(msg, m.keys.Confirm):
		action = engine.ConfirmReorder
	case key.Matches(msg, m.keys.SwapUp):
		action = engine.SwapUp
	case key.Matches(msg, m.keys.SwapDown):
		action = engine.SwapDown
	case key.Matches(msg, m.keys.Up):
		action = engine.MoveUp
	case key.Matches(msg, m.keys.Down):
		action = engine.MoveDown
	case key.Matches(msg, m.keys.Home):
		action = engine.MoveHome
	case key.Matches(msg, m.keys.End):
		action = engine.MoveEnd
	case key.Matches(msg, m.keys.Fixup):
		action = engine.ToggleFixup
	case key.Matches(msg, m.keys.Drop):
		action = engine.ToggleDiscard
	case key.Matches(msg, m.keys.Reword):
		action = engine.EditReorderMessage
	case key.Matches(msg, m.keys.Undo):
		action = engine.Undo
	case key.Matches(msg, m.keys.Redo):
		action = engine.Redo
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	default:
		return m, nil
	}
	return m.do(action)
}

// handleInputKeys handles key presses while text is being edited.
func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.engine.CancelEdit()
		m.endInput()
		return m, nil
	case tea.KeyEnter:
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.engine.Mode() == engine.ModeCommitMessage {
		m.engine.SetCommitDraft(m.input.Value())
	}
	return m, cmd
}

// submitInput confirms the text of the current mode.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	m.err = nil

	switch m.engine.Mode() {
	case engine.ModeCommitMessage:
		m.engine.SetCommitDraft(value)
		m.err = m.engine.Commit()
	case engine.ModeAmendMessage:
		m.err = m.engine.ConfirmAmend(joinMessage(value, m.body))
	case engine.ModeReorderMessage:
		m.engine.ConfirmReorderMessage(joinMessage(value, m.body))
	case engine.ModeFind:
		m.engine.JumpTo(value)
	}

	if m.engine.Mode().EditsText() {
		// The engine refused; keep editing.
		return m, nil
	}
	m.endInput()
	return m, nil
}

// do runs an engine action and prepares the text input when the action
// entered a text mode.
func (m Model) do(a engine.Action) (tea.Model, tea.Cmd) {
	before := m.engine.Mode()
	m.err = nil
	if err := m.engine.Do(a); err != nil {
		debug.Log("%s: %v", a, err)
	}

	after := m.engine.Mode()
	if after == before || !after.EditsText() {
		if after == engine.ModeNormal && m.pendingRefresh {
			m.refresh()
		}
		return m, nil
	}

	v := m.engine.View()
	m.body = ""
	switch after {
	case engine.ModeCommitMessage:
		m.input.Placeholder = "commit message"
		m.input.SetValue(v.CommitDraft)
	case engine.ModeAmendMessage:
		m.input.Placeholder = "message"
		subject, body := splitMessage(v.AmendText)
		m.input.SetValue(subject)
		m.body = body
	case engine.ModeReorderMessage:
		m.input.Placeholder = "message"
		subject, body := splitMessage(m.engine.ReorderMessage())
		m.input.SetValue(subject)
		m.body = body
	case engine.ModeFind:
		m.input.Placeholder = "file"
		m.input.SetValue("")
	}
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func (m *Model) endInput() {
	m.input.Blur()
	m.input.Reset()
	m.body = ""
	if m.engine.Mode() == engine.ModeNormal && m.pendingRefresh {
		m.refresh()
	}
}

// refresh re-reads the repository unless a mode is active, in which case
// it is postponed until the session is back to normal.
func (m *Model) refresh() {
	if m.engine.Mode() != engine.ModeNormal {
		m.pendingRefresh = true
		return
	}
	m.pendingRefresh = false
	if err := m.engine.Do(engine.Refresh); err != nil {
		m.err = err
	}
}

// openEditor suspends the program and opens the selected file.
func (m Model) openEditor() (tea.Model, tea.Cmd) {
	path, line, ok := m.engine.EditorTarget()
	if !ok {
		return m, nil
	}
	cmd := exec.EditorCommand(m.config.General.Editor, exec.Target{
		RepoRoot: m.repo.Root,
		Path:     path,
		Line:     line,
	})
	debug.Attrs("open editor", "path", path, "line", line)
	return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
		return EditorFinishedMsg{Path: path, Err: err}
	})
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.shouldQuit = true
	return m, tea.Quit
}

// View renders the UI.
func (m Model) View() string {
	v := m.engine.View()
	if m.err != nil && v.Err == nil {
		v.Err = m.err
	}
	input := ""
	if v.Mode.EditsText() {
		input = m.input.View()
	}
	return ui.Render(ui.Params{
		View:         v,
		Branch:       m.repo.Branch,
		Width:        m.width,
		Height:       m.height,
		Gutter:       m.config.Scroll.Gutter,
		Input:        input,
		ShowHelp:     m.showHelp,
		HelpSections: m.helpSections(),
		Warnings:     m.warnings,
	})
}

// ShouldQuit returns true if the app should quit.
func (m Model) ShouldQuit() bool {
	return m.shouldQuit
}

// helpSections lists the key bindings for the help screen.
func (m Model) helpSections() []ui.HelpSection {
	section := func(title string, bindings ...key.Binding) ui.HelpSection {
		s := ui.HelpSection{Title: title}
		for _, b := range bindings {
			h := b.Help()
			s.Bindings = append(s.Bindings, ui.HelpBinding{Keys: h.Key, Desc: h.Desc})
		}
		return s
	}
	k := m.keys
	return []ui.HelpSection{
		section("Navigation", k.Up, k.Down, k.Home, k.End, k.DiffDown, k.DiffUp,
			k.PageDown, k.PageUp, k.HalfPageDown, k.HalfPageUp, k.Left, k.Right, k.Switch, k.Find),
		section("Changes", k.Stage, k.StageLine, k.Discard, k.DiscardLine, k.Ignore,
			k.StageAll, k.UnstageAll, k.Undo, k.Redo),
		section("Commits", k.Amend, k.Reorder, k.SwapUp, k.SwapDown, k.Fixup, k.Drop, k.Reword, k.Confirm, k.Cancel),
		section("General", k.Edit, k.Refresh, k.Help, k.Quit),
	}
}

// Commands

// waitForChange turns the next watcher event into a message. A nil
// watcher never fires.
func waitForChange(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	wait := w.Wait()
	return func() tea.Msg {
		switch msg := wait().(type) {
		case watch.ChangedMsg:
			return RefreshMsg{Reason: msg.Path}
		case watch.ErrMsg:
			return WatchErrorMsg{Err: msg.Err}
		}
		// Closed
		return nil
	}
}

// Helper functions

// splitMessage separates the subject line from the rest of a message.
func splitMessage(message string) (subject, body string) {
	subject, body, _ = strings.Cut(message, "\n")
	return subject, body
}

// joinMessage puts an edited subject back in front of the body.
func joinMessage(subject, body string) string {
	if strings.TrimSpace(body) == "" {
		return subject
	}
	return subject + "\n" + body
}
