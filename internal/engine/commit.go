package engine

import (
	"strings"

	"github.com/henri123lemoine/grain/internal/cursor"
	"github.com/henri123lemoine/grain/internal/debug"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/patch"
)

// SetCommitDraft updates the commit message being typed and persists it.
func (e *Engine) SetCommitDraft(text string) {
	e.commitDraft = text
	if err := e.opts.Drafts.Save(e.draftKey, e.opts.RepoRoot, text); err != nil {
		debug.Log("save draft: %v", err)
	}
}

// CommitDraft returns the commit message being typed.
func (e *Engine) CommitDraft() string { return e.commitDraft }

// Commit records the staged changes with the draft message. History is
// cleared since commits are not undoable.
func (e *Engine) Commit() error {
	if err := e.b.Commit(e.commitDraft); err != nil {
		return e.fail(err)
	}
	e.mode = ModeNormal
	e.SetCommitDraft("")
	e.hist.Clear()
	if err := e.reload(true); err != nil {
		return err
	}
	e.succeed("committed")
	return nil
}

// beginAmend opens the message editor for HEAD, or for the selected local
// commit, which is then reworded instead.
func (e *Engine) beginAmend() {
	if len(e.repo.Commits) == 0 {
		return
	}
	target := e.repo.Commits[0]
	if kind, i := e.item(cursor.Main, e.cur.State(cursor.Main).SelectedIndex); e.cur.Focus() == cursor.Main && kind == ItemCommit {
		target = e.repo.Commits[i]
	}
	if target.OnRemote {
		e.status = target.ShortHash() + " is already pushed"
		return
	}
	e.amendTarget = target.Hash
	e.amendText = target.Message
	e.mode = ModeAmendMessage
}

// ConfirmAmend applies message to the commit chosen by BeginAmend. HEAD is
// amended together with the staged changes; older commits are reworded.
// Amend messages are never saved as drafts.
func (e *Engine) ConfirmAmend(message string) error {
	if e.mode != ModeAmendMessage {
		return nil
	}
	var err error
	if e.amendTarget == e.repo.Head {
		err = e.b.Amend(message, true)
	} else {
		err = e.b.Reword(e.amendTarget, message)
	}
	if err != nil {
		return e.fail(err)
	}
	e.mode = ModeNormal
	e.amendTarget, e.amendText = "", ""
	e.hist.Clear()
	if err := e.reload(true); err != nil {
		return err
	}
	e.succeed("amended")
	return nil
}

func (e *Engine) beginReorder() {
	if e.cur.Focus() != cursor.Main {
		return
	}
	kind, i := e.item(cursor.Main, e.cur.State(cursor.Main).SelectedIndex)
	if kind != ItemCommit {
		return
	}
	if e.reorder.Begin(e.repo.Commits, i) {
		e.mode = ModeReorder
		e.succeed("reorder")
	}
}

func (e *Engine) confirmReorder() error {
	pos := e.reorder.Cursor()
	_, err := e.reorder.Confirm(e.b)
	e.mode = ModeNormal
	if err != nil {
		return e.fail(err)
	}
	e.hist.Clear()
	if err := e.reload(false); err != nil {
		return err
	}
	e.cur.Select(len(e.repo.Staged)+1+pos, e.itemCount(cursor.Main))
	e.succeed("reordered")
	return nil
}

func (e *Engine) cancelReorder() {
	hash := e.reorder.Cancel()
	e.mode = ModeNormal
	if i := e.repo.CommitIndex(hash); i >= 0 {
		e.cur.Select(len(e.repo.Staged)+1+i, e.itemCount(cursor.Main))
	}
	e.succeed("")
}

// ConfirmReorderMessage sets the message of the selected plan entry.
func (e *Engine) ConfirmReorderMessage(message string) {
	if e.mode != ModeReorderMessage {
		return
	}
	e.mode = ModeReorder
	if strings.TrimSpace(message) == "" {
		e.status = git.ErrEmptyMessage.Error()
		return
	}
	e.reorder.EditMessage(message)
}

// ReorderMessage returns the message of the plan entry being edited.
func (e *Engine) ReorderMessage() string {
	entry, ok := e.reorder.Selected()
	if !ok {
		return ""
	}
	return entry.DisplayMessage()
}

// CancelEdit leaves the current text mode. The commit draft is kept.
func (e *Engine) CancelEdit() {
	switch e.mode {
	case ModeReorderMessage:
		e.mode = ModeReorder
	case ModeAmendMessage:
		e.amendTarget, e.amendText = "", ""
		e.mode = ModeNormal
	case ModeCommitMessage, ModeFind:
		e.mode = ModeNormal
	}
}

// JumpTo selects the focused screen's file best matching query and leaves
// find mode.
func (e *Engine) JumpTo(query string) bool {
	if e.mode == ModeFind {
		e.mode = ModeNormal
	}
	if e.mode != ModeNormal {
		return false
	}
	files := e.files(e.cur.Focus())
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return e.cur.JumpTo(query, paths)
}

// EditorTarget returns the selected file and the work tree line under the
// diff cursor, for opening an editor.
func (e *Engine) EditorTarget() (path string, line int, ok bool) {
	file, row, onRow, ok := e.target()
	if !ok || (file.Diff != nil && file.Diff.IsDeleted) {
		return "", 0, false
	}
	line = 1
	if onRow {
		h := file.Diff.Hunks[row.Hunk]
		line = max(h.NewStart, 1)
		if row.Line >= 0 {
			l := h.Lines[row.Line]
			switch {
			case l.NewNum > 0:
				line = l.NewNum
			case l.OldNum > 0:
				// Removed lines sit where the next new line starts.
				line = max(nextNewLine(h.Lines, row.Line), 1)
			}
		}
	}
	return file.Path, line, true
}

func nextNewLine(lines []patch.Line, from int) int {
	for _, l := range lines[from:] {
		if l.NewNum > 0 {
			return l.NewNum
		}
	}
	for i := from - 1; i >= 0; i-- {
		if lines[i].NewNum > 0 {
			return lines[i].NewNum
		}
	}
	return 1
}
