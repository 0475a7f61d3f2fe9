// Package reorder implements commit reorder mode: a speculative plan over
// the local commits that is edited with its own undo history and applied
// in one atomic rebase.
package reorder

import (
	"fmt"

	"github.com/henri123lemoine/grain/internal/debug"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/history"
)

// Entry is one commit of the plan.
type Entry struct {
	Commit  git.Commit
	Intent  git.Intent
	Message string
}

// DisplayMessage returns the edited message, or the original one.
func (e Entry) DisplayMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Commit.Message
}

// Engine holds the reorder plan while the mode is active. The zero value
// is inactive.
type Engine struct {
	active bool
	plan   []Entry
	cursor int
	origin string
	start  []string
	hist   history.History[int]
}

// Active reports whether reorder mode is on.
func (e *Engine) Active() bool { return e.active }

// Begin enters reorder mode over the local commits of log with the cursor
// on log[selected]. It does nothing when that commit is already pushed.
func (e *Engine) Begin(log []git.Commit, selected int) bool {
	if e.active || selected < 0 || selected >= len(log) || log[selected].OnRemote {
		return false
	}
	var plan []Entry
	for _, c := range log {
		if c.OnRemote {
			break
		}
		plan = append(plan, Entry{Commit: c})
	}
	if len(plan) == 0 {
		return false
	}

	e.start = make([]string, len(plan))
	for i, entry := range plan {
		e.start[i] = entry.Commit.Hash
	}
	e.active = true
	e.plan = plan
	e.cursor = selected
	e.origin = log[selected].Hash
	e.hist.Clear()
	debug.Log("reorder: begin with %d local commits", len(plan))
	return true
}

// Plan returns a copy of the plan, newest first.
func (e *Engine) Plan() []Entry {
	return append([]Entry(nil), e.plan...)
}

// Cursor returns the plan position under the cursor.
func (e *Engine) Cursor() int { return e.cursor }

// Selected returns the entry under the cursor.
func (e *Engine) Selected() (Entry, bool) {
	if !e.active || e.cursor >= len(e.plan) {
		return Entry{}, false
	}
	return e.plan[e.cursor], true
}

// Move moves the cursor by delta within the plan.
func (e *Engine) Move(delta int) {
	if !e.active {
		return
	}
	e.cursor = min(max(e.cursor+delta, 0), len(e.plan)-1)
}

// Swap exchanges the selected commit with its neighbour in direction dir
// (-1 newer, +1 older). The cursor follows the commit.
func (e *Engine) Swap(dir int) bool {
	j := e.cursor + dir
	if !e.active || j < 0 || j >= len(e.plan) {
		return false
	}
	return e.do(&swapCmd{plan: e.plan, i: e.cursor, j: j}, j)
}

// ToggleFixup marks the selected commit to be squashed into the next
// older one, or back to kept. The oldest commit has nothing below it in
// the plan and is refused.
func (e *Engine) ToggleFixup() bool {
	if !e.active || e.cursor >= len(e.plan)-1 {
		return false
	}
	intent := git.Fixup
	if e.plan[e.cursor].Intent == git.Fixup {
		intent = git.Keep
	}
	return e.do(&intentCmd{plan: e.plan, i: e.cursor, to: intent, from: e.plan[e.cursor].Intent}, e.cursor)
}

// ToggleDiscard marks the selected commit to be dropped, or back to kept.
func (e *Engine) ToggleDiscard() bool {
	if !e.active {
		return false
	}
	intent := git.Discard
	if e.plan[e.cursor].Intent == git.Discard {
		intent = git.Keep
	}
	return e.do(&intentCmd{plan: e.plan, i: e.cursor, to: intent, from: e.plan[e.cursor].Intent}, e.cursor)
}

// EditMessage replaces the message of the selected commit. An unchanged
// message is not recorded.
func (e *Engine) EditMessage(message string) bool {
	if !e.active {
		return false
	}
	entry := e.plan[e.cursor]
	if message == entry.DisplayMessage() {
		return false
	}
	if message == entry.Commit.Message {
		message = ""
	}
	return e.do(&messageCmd{plan: e.plan, i: e.cursor, to: message, from: entry.Message}, e.cursor)
}

func (e *Engine) do(cmd history.Command, after int) bool {
	if err := e.hist.Execute(cmd, e.cursor); err != nil {
		return false
	}
	e.cursor = after
	e.hist.SetAfter(after)
	return true
}

// Undo reverts the last plan edit.
func (e *Engine) Undo() bool {
	if !e.active {
		return false
	}
	before, ok, _ := e.hist.Undo(e.cursor)
	if ok {
		e.cursor = before
	}
	return ok
}

// Redo re-applies the last undone plan edit.
func (e *Engine) Redo() bool {
	if !e.active {
		return false
	}
	after, ok, _ := e.hist.Redo()
	if ok {
		e.cursor = after
	}
	return ok
}

// CanUndo reports whether a plan edit can be undone.
func (e *Engine) CanUndo() bool { return e.active && e.hist.CanUndo() }

// CanRedo reports whether a plan edit can be redone.
func (e *Engine) CanRedo() bool { return e.active && e.hist.CanRedo() }

// Changed reports whether the plan differs from the log it started from.
func (e *Engine) Changed() bool {
	for i, entry := range e.plan {
		if entry.Intent != git.Keep || entry.Message != "" || entry.Commit.Hash != e.start[i] {
			return true
		}
	}
	return false
}

// Steps converts the plan to rebase steps, newest first.
func (e *Engine) Steps() []git.PlanStep {
	steps := make([]git.PlanStep, len(e.plan))
	for i, entry := range e.plan {
		steps[i] = git.PlanStep{Hash: entry.Commit.Hash, Intent: entry.Intent, Message: entry.Message}
	}
	return steps
}

// Validate checks that the plan keeps a commit and that every fixup has a
// kept commit below it to squash into.
func (e *Engine) Validate() error {
	kept := false
	for i := len(e.plan) - 1; i >= 0; i-- {
		switch e.plan[i].Intent {
		case git.Keep:
			kept = true
		case git.Fixup:
			if !kept {
				return fmt.Errorf("%w: %s has no commit to squash into", git.ErrInvalidPlan, e.plan[i].Commit.ShortHash())
			}
		}
	}
	if !kept {
		return fmt.Errorf("%w: every commit is dropped", git.ErrInvalidPlan)
	}
	return nil
}

// Confirm applies the plan and leaves reorder mode. A rejected or failed
// plan leaves the repository untouched and the mode is left all the same.
func (e *Engine) Confirm(b git.Backend) (string, error) {
	if !e.active {
		return "", nil
	}
	defer e.reset()

	if !e.Changed() {
		return e.start[0], nil
	}
	if err := e.Validate(); err != nil {
		return "", err
	}
	head, err := b.RebasePlan(e.Steps())
	if err != nil {
		return "", err
	}
	debug.Log("reorder: applied plan, HEAD now %s", head)
	return head, nil
}

// Cancel drops the plan and returns the hash that was selected when the
// mode began.
func (e *Engine) Cancel() string {
	origin := e.origin
	e.reset()
	return origin
}

func (e *Engine) reset() {
	e.active = false
	e.plan = nil
	e.cursor = 0
	e.origin = ""
	e.start = nil
	e.hist.Clear()
}
