package engine

import (
	"github.com/henri123lemoine/grain/internal/cursor"
	"github.com/henri123lemoine/grain/internal/debug"
)

// SwitchFocus moves focus to the other screen. The destination selects,
// in order of preference: the file that was selected on the departing
// screen, its own previous selection, or its first item.
//
// The switch is refused while text is being edited, during reorder mode,
// and towards an empty unstaged screen.
func (e *Engine) SwitchFocus(manual bool) bool {
	if e.mode != ModeNormal {
		return false
	}
	dest := e.cur.Focus().Other()
	count := e.itemCount(dest)
	if dest == cursor.Unstaged && count == 0 {
		return false
	}

	idx, how := -1, "head"
	if path, ok := e.selectedPath(); ok {
		for i, f := range e.files(dest) {
			if f.Path == path {
				idx, how = i, "match"
				break
			}
		}
	}
	if idx < 0 && e.cur.Visited(dest) {
		idx = min(max(e.cur.State(dest).SelectedIndex, 0), max(count-1, 0))
		how = "restore"
	}
	if idx < 0 {
		idx = 0
	}

	e.cur.FocusAt(dest, idx)
	debug.Attrs("switch focus", "to", dest.String(), "index", idx, "by", how, "manual", manual)
	return true
}

// autoSwitch leaves a screen whose file list just became empty.
func (e *Engine) autoSwitch(hadFiles bool) {
	if hadFiles && len(e.files(e.cur.Focus())) == 0 {
		e.SwitchFocus(false)
	}
}
