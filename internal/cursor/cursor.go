// Package cursor tracks the selection and scroll position of both screens.
//
// Each screen keeps its own State. The line cursor inside a diff is shared:
// only one diff is ever shown, so a single value serves whichever screen
// has focus.
package cursor

import "github.com/sahilm/fuzzy"

// Screen identifies one of the two views.
type Screen int

const (
	// Main shows staged files, the commit input and the commit log.
	Main Screen = iota
	// Unstaged shows unstaged and untracked files.
	Unstaged
)

// Other returns the opposite screen.
func (s Screen) Other() Screen {
	if s == Main {
		return Unstaged
	}
	return Main
}

func (s Screen) String() string {
	if s == Main {
		return "main"
	}
	return "unstaged"
}

// State is the cursor of one screen.
type State struct {
	SelectedIndex    int
	DiffCursorActive bool
	VerticalScroll   int
	HorizontalScroll int
}

// Snapshot captures the full cursor model for undo and redo.
type Snapshot struct {
	Focus   Screen
	States  [2]State
	Visited [2]bool
	Line    int
}

// Model holds both screen states and the shared line cursor.
type Model struct {
	focus   Screen
	states  [2]State
	visited [2]bool
	line    int

	steps  [2]int
	gutter int
	width  int
	height int
}

// New returns a model focused on the main screen. Steps are the
// horizontal scroll widths per screen; 0 scrolls by a page.
func New(mainStep, unstagedStep, gutter int) *Model {
	m := &Model{steps: [2]int{mainStep, unstagedStep}, gutter: gutter, height: 1, width: 80}
	m.visited[Main] = true
	return m
}

// SetViewport sets the size of the diff area.
func (m *Model) SetViewport(width, height int) {
	m.width = max(width, 1)
	m.height = max(height, 1)
}

// Viewport returns the size of the diff area.
func (m *Model) Viewport() (width, height int) { return m.width, m.height }

// Focus returns the focused screen.
func (m *Model) Focus() Screen { return m.focus }

// Visited reports whether s has ever had focus.
func (m *Model) Visited(s Screen) bool { return m.visited[s] }

// State returns a copy of the cursor of s.
func (m *Model) State(s Screen) State { return m.states[s] }

// Current returns the cursor of the focused screen.
func (m *Model) Current() *State { return &m.states[m.focus] }

// Line returns the shared line cursor.
func (m *Model) Line() int { return m.line }

// FocusAt moves focus to s and places its cursor at index. The diff cursor
// is deactivated and the line cursor reset. Scroll offsets survive only
// when the selection did not change.
func (m *Model) FocusAt(s Screen, index int) {
	st := &m.states[s]
	if st.SelectedIndex != index || !m.visited[s] {
		st.VerticalScroll = 0
		st.HorizontalScroll = 0
	}
	st.SelectedIndex = index
	st.DiffCursorActive = false
	m.line = 0
	m.focus = s
	m.visited[s] = true
}

// Select moves the focused screen's selection to index in the list
// regime, clamped to count items.
func (m *Model) Select(index, count int) {
	st := m.Current()
	st.SelectedIndex = clamp(index, 0, count-1)
	st.DiffCursorActive = false
	st.VerticalScroll = 0
	st.HorizontalScroll = 0
	m.line = 0
}

// MoveUp selects the previous item.
func (m *Model) MoveUp(count int) { m.Select(m.Current().SelectedIndex-1, count) }

// MoveDown selects the next item.
func (m *Model) MoveDown(count int) { m.Select(m.Current().SelectedIndex+1, count) }

// Home selects the first item.
func (m *Model) Home(count int) { m.Select(0, count) }

// End selects the last item.
func (m *Model) End(count int) { m.Select(count-1, count) }

// MoveLine moves the line cursor by delta within lineCount rows and makes
// the diff cursor active. It returns false when the diff is empty.
func (m *Model) MoveLine(delta, lineCount int) bool {
	if lineCount <= 0 {
		return false
	}
	st := m.Current()
	st.DiffCursorActive = true
	m.line = clamp(m.line+delta, 0, lineCount-1)
	m.reveal(st)
	return true
}

// Page moves the line cursor by a viewport (or half of one when half is
// set) in direction dir. The viewport follows only when the cursor leaves
// it.
func (m *Model) Page(dir int, half bool, lineCount int) bool {
	if lineCount <= 0 {
		return false
	}
	amount := m.height
	if half {
		amount = max(m.height/2, 1)
	}
	st := m.Current()
	st.DiffCursorActive = true

	if dir > 0 {
		m.line = clamp(m.line+amount, 0, lineCount-1)
		if m.line >= st.VerticalScroll+m.height {
			st.VerticalScroll = min(st.VerticalScroll+amount, lineCount-1)
		}
	} else {
		m.line = clamp(m.line-amount, 0, lineCount-1)
		if m.line < st.VerticalScroll {
			st.VerticalScroll = max(st.VerticalScroll-amount, 0)
		}
	}
	m.reveal(st)
	return true
}

// reveal scrolls the minimum needed to show the line cursor.
func (m *Model) reveal(st *State) {
	if m.line < st.VerticalScroll {
		st.VerticalScroll = m.line
	}
	if m.line >= st.VerticalScroll+m.height {
		st.VerticalScroll = m.line - m.height + 1
	}
}

// HorizontalStep returns the columns moved per horizontal scroll on the
// focused screen.
func (m *Model) HorizontalStep() int {
	if step := m.steps[m.focus]; step > 0 {
		return step
	}
	return max(m.width-m.gutter, 1)
}

// ScrollLeft scrolls the diff left by one step.
func (m *Model) ScrollLeft() {
	st := m.Current()
	st.HorizontalScroll = max(st.HorizontalScroll-m.HorizontalStep(), 0)
}

// ScrollRight scrolls the diff right by one step, never past the end of
// the widest line.
func (m *Model) ScrollRight(widest int) {
	st := m.Current()
	limit := max(widest-1, 0)
	st.HorizontalScroll = min(st.HorizontalScroll+m.HorizontalStep(), limit)
}

// Clamp fits the cursor of s to a list of count items whose selected item
// has lineCount diff rows. It is applied after every refresh.
func (m *Model) Clamp(s Screen, count, lineCount int) {
	st := &m.states[s]
	if count <= 0 {
		*st = State{}
		if s == m.focus {
			m.line = 0
		}
		return
	}
	st.SelectedIndex = clamp(st.SelectedIndex, 0, count-1)
	if s != m.focus {
		return
	}
	if lineCount <= 0 {
		st.DiffCursorActive = false
		st.VerticalScroll = 0
		m.line = 0
		return
	}
	m.line = clamp(m.line, 0, lineCount-1)
	st.VerticalScroll = clamp(st.VerticalScroll, 0, lineCount-1)
	m.reveal(st)
}

// Snapshot captures the model.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{Focus: m.focus, States: m.states, Visited: m.visited, Line: m.line}
}

// Restore resets the model to a snapshot.
func (m *Model) Restore(s Snapshot) {
	m.focus = s.Focus
	m.states = s.States
	m.visited = s.Visited
	m.line = s.Line
}

// JumpTo selects the path best matching query. It returns false when
// nothing matches.
func (m *Model) JumpTo(query string, paths []string) bool {
	if query == "" || len(paths) == 0 {
		return false
	}
	matches := fuzzy.Find(query, paths)
	if len(matches) == 0 {
		return false
	}
	m.Select(matches[0].Index, len(paths))
	return true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
