// Package history implements a linear undo/redo stack over commands whose
// effects live outside the process.
package history

import "github.com/henri123lemoine/grain/internal/debug"

// Command is an undoable mutation.
type Command interface {
	Execute() error
	Undo() error
	Description() string
}

type entry[S any] struct {
	cmd    Command
	before S
	after  S
}

// History is a linear undo/redo stack. S is the cursor snapshot restored by
// Undo and Redo.
type History[S any] struct {
	past   []entry[S]
	future []entry[S]
}

// Execute runs cmd and records it with the snapshot taken before it ran.
// Nothing is recorded when cmd fails.
func (h *History[S]) Execute(cmd Command, before S) error {
	if err := cmd.Execute(); err != nil {
		return err
	}
	h.past = append(h.past, entry[S]{cmd: cmd, before: before, after: before})
	h.future = nil
	debug.Log("history: did %s (undo depth %d)", cmd.Description(), len(h.past))
	return nil
}

// SetAfter records the snapshot following the most recent command.
func (h *History[S]) SetAfter(after S) {
	if n := len(h.past); n > 0 {
		h.past[n-1].after = after
	}
}

// Undo reverts the most recent command and returns the snapshot from
// before it. ok is false when there is nothing to undo. On failure the
// stacks are left as they were.
func (h *History[S]) Undo(current S) (before S, ok bool, err error) {
	n := len(h.past)
	if n == 0 {
		return before, false, nil
	}
	e := h.past[n-1]
	if err := e.cmd.Undo(); err != nil {
		return before, false, err
	}
	e.after = current
	h.past = h.past[:n-1]
	h.future = append(h.future, e)
	debug.Log("history: undid %s", e.cmd.Description())
	return e.before, true, nil
}

// Redo re-executes the most recently undone command and returns the
// snapshot from after it.
func (h *History[S]) Redo() (after S, ok bool, err error) {
	n := len(h.future)
	if n == 0 {
		return after, false, nil
	}
	e := h.future[n-1]
	if err := e.cmd.Execute(); err != nil {
		return after, false, err
	}
	h.future = h.future[:n-1]
	h.past = append(h.past, e)
	debug.Log("history: redid %s", e.cmd.Description())
	return e.after, true, nil
}

// Clear forgets every command.
func (h *History[S]) Clear() {
	h.past = nil
	h.future = nil
}

// CanUndo reports whether Undo has something to revert.
func (h *History[S]) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether Redo has something to re-apply.
func (h *History[S]) CanRedo() bool { return len(h.future) > 0 }

// Len returns the undo and redo depths.
func (h *History[S]) Len() (undo, redo int) { return len(h.past), len(h.future) }
