package engine

import (
	"errors"
	"fmt"

	"github.com/henri123lemoine/grain/internal/command"
	"github.com/henri123lemoine/grain/internal/cursor"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/history"
	"github.com/henri123lemoine/grain/internal/patch"
	"github.com/henri123lemoine/grain/internal/state"
)

// execute runs a command built by build through the history, refreshes
// the snapshot and records the resulting cursor.
func (e *Engine) execute(build func() (history.Command, error)) error {
	cmd, err := build()
	if err != nil {
		return e.fail(err)
	}
	hadFiles := e.focusedFileCount() > 0
	if err := e.hist.Execute(cmd, e.cur.Snapshot()); err != nil {
		return e.fail(err)
	}
	if err := e.reload(true); err != nil {
		return err
	}
	e.autoSwitch(hadFiles)
	e.hist.SetAfter(e.cur.Snapshot())
	e.succeed(cmd.Description())
	return nil
}

// target returns the selected file and, when the diff cursor is active,
// the row under it.
func (e *Engine) target() (file state.FileEntry, row patch.Row, onRow bool, ok bool) {
	sel := e.selection()
	if sel.Kind != ItemFile {
		return file, row, false, false
	}
	file = sel.File
	if e.cur.Current().DiffCursorActive && file.Diff != nil {
		row, onRow = file.Diff.Locate(e.cur.Line())
	}
	return file, row, onRow, true
}

func (e *Engine) hunkCommand(file state.FileEntry, hunk int, target git.Target, dir patch.Direction) func() (history.Command, error) {
	return func() (history.Command, error) {
		text, err := patch.BuildHunkPatch(file.Diff, hunk, dir)
		if err != nil {
			return nil, err
		}
		return command.NewPatch(e.b, text, target, dir, fmt.Sprintf("%s hunk of %s", dir, file.Path)), nil
	}
}

func (e *Engine) lineCommand(file state.FileEntry, row patch.Row, target git.Target, dir patch.Direction) func() (history.Command, error) {
	return func() (history.Command, error) {
		text, err := patch.BuildLinePatch(file.Diff, row.Hunk, row.Line, dir)
		if err != nil {
			return nil, err
		}
		return command.NewPatch(e.b, text, target, dir, fmt.Sprintf("%s line of %s", dir, file.Path)), nil
	}
}

func (e *Engine) stageOrEnter() error {
	sel := e.selection()
	if sel.Kind == ItemCommitInput {
		e.mode = ModeCommitMessage
		return nil
	}
	file, row, onRow, ok := e.target()
	if !ok {
		return nil
	}

	if e.cur.Focus() == cursor.Main {
		if onRow {
			return e.execute(e.hunkCommand(file, row.Hunk, git.Index, patch.Unstage))
		}
		return e.execute(func() (history.Command, error) {
			return command.NewUnstageFile(e.b, file.Path)
		})
	}

	if onRow {
		return e.execute(e.hunkCommand(file, row.Hunk, git.Index, patch.Stage))
	}
	return e.execute(func() (history.Command, error) {
		return command.NewStageFile(e.b, file.Path, file.Status == git.Untracked)
	})
}

func (e *Engine) stageLine() error {
	file, row, onRow, ok := e.target()
	if !ok || !onRow || row.Line < 0 {
		return nil
	}
	dir := patch.Stage
	if e.cur.Focus() == cursor.Main {
		dir = patch.Unstage
	}
	return e.lineOrIgnore(e.lineCommand(file, row, git.Index, dir))
}

func (e *Engine) discardSelection() error {
	file, row, onRow, ok := e.target()
	if !ok {
		return nil
	}

	if e.cur.Focus() == cursor.Main {
		if e.repo.HasUnstagedChanges(file.Path) {
			e.status = file.Path + " has unstaged changes"
			return nil
		}
		if onRow {
			return e.execute(func() (history.Command, error) {
				text, err := patch.BuildHunkPatch(file.Diff, row.Hunk, patch.Unstage)
				if err != nil {
					return nil, err
				}
				return command.NewDiscardStagedHunk(e.b, file.Path, text), nil
			})
		}
		return e.execute(func() (history.Command, error) {
			return command.NewDiscardStagedFile(e.b, file.Path)
		})
	}

	if file.Status == git.Untracked {
		return e.execute(func() (history.Command, error) {
			return command.NewDeleteUntracked(e.b, file.Path)
		})
	}
	if onRow {
		return e.execute(e.hunkCommand(file, row.Hunk, git.WorkTree, patch.Discard))
	}
	return e.execute(func() (history.Command, error) {
		return command.NewDiscardFile(e.b, file.Path)
	})
}

func (e *Engine) discardLine() error {
	if e.cur.Focus() != cursor.Unstaged {
		return nil
	}
	file, row, onRow, ok := e.target()
	if !ok || !onRow || row.Line < 0 {
		return nil
	}
	return e.lineOrIgnore(e.lineCommand(file, row, git.WorkTree, patch.Discard))
}

// lineOrIgnore executes a line command; a cursor on a context line is not
// an error.
func (e *Engine) lineOrIgnore(build func() (history.Command, error)) error {
	err := e.execute(build)
	if errors.Is(err, patch.ErrNotAChange) {
		e.err = nil
		return nil
	}
	return err
}

// ignoreSelection adds the selected file to .gitignore. Tracked files, on
// either screen, also leave the index.
func (e *Engine) ignoreSelection() error {
	file, _, _, ok := e.target()
	if !ok || file.Path == command.GitignorePath {
		return nil
	}
	if file.Status == git.Untracked {
		return e.execute(func() (history.Command, error) {
			return command.NewIgnore(e.b, file.Path)
		})
	}
	return e.execute(func() (history.Command, error) {
		return command.NewIgnoreTracked(e.b, file.Path)
	})
}

func (e *Engine) stageAll() error {
	if len(e.repo.Unstaged) == 0 && len(e.repo.Untracked) == 0 {
		return nil
	}
	return e.execute(func() (history.Command, error) {
		return command.NewStageAll(e.b)
	})
}

func (e *Engine) unstageAll() error {
	if len(e.repo.Staged) == 0 {
		return nil
	}
	return e.execute(func() (history.Command, error) {
		return command.NewUnstageAll(e.b)
	})
}

func (e *Engine) undo() error {
	before, ok, err := e.hist.Undo(e.cur.Snapshot())
	if err != nil {
		return e.fail(err)
	}
	if !ok {
		return nil
	}
	if err := e.reload(false); err != nil {
		return err
	}
	e.cur.Restore(before)
	e.clampAll()
	e.succeed("undo")
	return nil
}

func (e *Engine) redo() error {
	after, ok, err := e.hist.Redo()
	if err != nil {
		return e.fail(err)
	}
	if !ok {
		return nil
	}
	if err := e.reload(false); err != nil {
		return err
	}
	e.cur.Restore(after)
	e.clampAll()
	e.succeed("redo")
	return nil
}
