// Package engine runs one grain session: it owns the repository snapshot,
// both screen cursors, the undo history, reorder mode and the commit
// draft, and maps logical actions onto them. It has no terminal
// dependencies; internal/app drives it.
package engine

import (
	"errors"

	"github.com/charmbracelet/x/ansi"

	"github.com/henri123lemoine/grain/internal/cursor"
	"github.com/henri123lemoine/grain/internal/debug"
	"github.com/henri123lemoine/grain/internal/draft"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/history"
	"github.com/henri123lemoine/grain/internal/patch"
	"github.com/henri123lemoine/grain/internal/reorder"
	"github.com/henri123lemoine/grain/internal/state"
)

// Mode is the input mode of the session.
type Mode int

const (
	ModeNormal Mode = iota
	ModeCommitMessage
	ModeAmendMessage
	ModeReorder
	ModeReorderMessage
	ModeFind
)

func (m Mode) String() string {
	switch m {
	case ModeCommitMessage:
		return "commit"
	case ModeAmendMessage:
		return "amend"
	case ModeReorder:
		return "reorder"
	case ModeReorderMessage:
		return "reword"
	case ModeFind:
		return "find"
	default:
		return "normal"
	}
}

// EditsText reports whether the mode owns text input.
func (m Mode) EditsText() bool {
	return m == ModeCommitMessage || m == ModeAmendMessage || m == ModeReorderMessage || m == ModeFind
}

// ItemKind is the kind of a list item.
type ItemKind int

const (
	ItemNone ItemKind = iota
	ItemFile
	ItemCommitInput
	ItemCommit
)

// Options configures a session.
type Options struct {
	RepoRoot string
	LogLimit int

	MainHorizontalStep     int
	UnstagedHorizontalStep int
	Gutter                 int

	// Drafts persists the commit message; nil disables persistence.
	Drafts *draft.Store
}

// Engine is one interactive session over a repository.
type Engine struct {
	b    git.Backend
	opts Options

	repo    *state.Repository
	cur     *cursor.Model
	hist    history.History[cursor.Snapshot]
	reorder reorder.Engine

	mode        Mode
	commitDraft string
	amendTarget string
	amendText   string
	draftKey    string

	status string
	err    error
}

// New loads the repository and the saved commit draft.
func New(b git.Backend, opts Options) (*Engine, error) {
	e := &Engine{
		b:        b,
		opts:     opts,
		cur:      cursor.New(opts.MainHorizontalStep, opts.UnstagedHorizontalStep, opts.Gutter),
		draftKey: draft.Key(opts.RepoRoot),
	}
	repo, err := state.Load(b, opts.LogLimit)
	if err != nil {
		return nil, err
	}
	e.repo = repo

	if msg, ok, err := opts.Drafts.Load(e.draftKey); err != nil {
		debug.Log("load draft: %v", err)
	} else if ok {
		e.commitDraft = msg
	}
	return e, nil
}

// Selection describes the item under the focused cursor.
type Selection struct {
	Kind ItemKind

	// File is set for ItemFile.
	File state.FileEntry

	// Commit and Diffs are set for ItemCommit.
	Commit git.Commit
	Diffs  []*patch.Diff
}

// View is a read-only snapshot of everything the renderer needs.
type View struct {
	Repo *state.Repository

	Focus    cursor.Screen
	Main     cursor.State
	Unstaged cursor.State
	Line     int

	Mode        Mode
	CommitDraft string
	AmendTarget string
	AmendText   string

	Selection Selection

	ReorderPlan    []reorder.Entry
	ReorderCursor  int
	ReorderCanUndo bool
	ReorderCanRedo bool

	Status    string
	Err       error
	UndoDepth int
	RedoDepth int
}

// View returns the current session state.
func (e *Engine) View() View {
	undo, redo := e.hist.Len()
	v := View{
		Repo:        e.repo,
		Focus:       e.cur.Focus(),
		Main:        e.cur.State(cursor.Main),
		Unstaged:    e.cur.State(cursor.Unstaged),
		Line:        e.cur.Line(),
		Mode:        e.mode,
		CommitDraft: e.commitDraft,
		AmendTarget: e.amendTarget,
		AmendText:   e.amendText,
		Selection:   e.selection(),
		Status:      e.status,
		Err:         e.err,
		UndoDepth:   undo,
		RedoDepth:   redo,
	}
	if e.reorder.Active() {
		v.ReorderPlan = e.reorder.Plan()
		v.ReorderCursor = e.reorder.Cursor()
		v.ReorderCanUndo = e.reorder.CanUndo()
		v.ReorderCanRedo = e.reorder.CanRedo()
	}
	return v
}

// Mode returns the input mode.
func (e *Engine) Mode() Mode { return e.mode }

// SetViewport sets the size of the diff area.
func (e *Engine) SetViewport(width, height int) {
	e.cur.SetViewport(width, height)
	e.clampAll()
}

// files returns the file list of screen s.
func (e *Engine) files(s cursor.Screen) []state.FileEntry {
	if s == cursor.Main {
		return e.repo.Staged
	}
	return e.repo.UnstagedScreenFiles()
}

// itemCount returns the number of list items of screen s.
func (e *Engine) itemCount(s cursor.Screen) int {
	if s == cursor.Main {
		return len(e.repo.Staged) + 1 + len(e.repo.Commits)
	}
	return len(e.repo.Unstaged) + len(e.repo.Untracked)
}

// item resolves position i of screen s.
func (e *Engine) item(s cursor.Screen, i int) (ItemKind, int) {
	if i < 0 || i >= e.itemCount(s) {
		return ItemNone, -1
	}
	if s == cursor.Unstaged {
		return ItemFile, i
	}
	staged := len(e.repo.Staged)
	switch {
	case i < staged:
		return ItemFile, i
	case i == staged:
		return ItemCommitInput, 0
	default:
		return ItemCommit, i - staged - 1
	}
}

func (e *Engine) selection() Selection {
	s := e.cur.Focus()
	kind, i := e.item(s, e.cur.State(s).SelectedIndex)
	sel := Selection{Kind: kind}
	switch kind {
	case ItemFile:
		sel.File = e.files(s)[i]
	case ItemCommit:
		sel.Commit = e.repo.Commits[i]
		diffs, err := e.repo.CommitDiffs(e.b, sel.Commit.Hash)
		if err != nil {
			debug.Log("diff of %s: %v", sel.Commit.ShortHash(), err)
		}
		sel.Diffs = diffs
	}
	return sel
}

// selectedPath returns the path of the focused file, if a file is
// selected.
func (e *Engine) selectedPath() (string, bool) {
	sel := e.selection()
	if sel.Kind != ItemFile {
		return "", false
	}
	return sel.File.Path, true
}

// lineCountAt returns the diff rows of item i of screen s. A commit shows
// one header row per file followed by its hunks.
func (e *Engine) lineCountAt(s cursor.Screen, i int) int {
	kind, idx := e.item(s, i)
	switch kind {
	case ItemFile:
		return e.files(s)[idx].Lines()
	case ItemCommit:
		diffs, err := e.repo.CommitDiffs(e.b, e.repo.Commits[idx].Hash)
		if err != nil {
			return 0
		}
		n := 0
		for _, d := range diffs {
			n += 1 + d.RowCount()
		}
		return n
	}
	return 0
}

func (e *Engine) lineCount() int {
	s := e.cur.Focus()
	return e.lineCountAt(s, e.cur.State(s).SelectedIndex)
}

// widest returns the display width of the longest diff line of the
// selection.
func (e *Engine) widest() int {
	sel := e.selection()
	diffs := sel.Diffs
	if sel.Kind == ItemFile && sel.File.Diff != nil {
		diffs = []*patch.Diff{sel.File.Diff}
	}
	w := 0
	for _, d := range diffs {
		for _, h := range d.Hunks {
			w = max(w, ansi.StringWidth(h.Header()))
			for _, l := range h.Lines {
				w = max(w, 1+ansi.StringWidth(l.Text))
			}
		}
	}
	return w
}

// clampAll fits both cursors to the current snapshot.
func (e *Engine) clampAll() {
	for _, s := range []cursor.Screen{cursor.Main, cursor.Unstaged} {
		count := e.itemCount(s)
		idx := min(max(e.cur.State(s).SelectedIndex, 0), max(count-1, 0))
		e.cur.Clamp(s, count, e.lineCountAt(s, idx))
	}
}

// identity remembers what a screen had selected across a reload.
type identity struct {
	kind ItemKind
	key  string
}

func (e *Engine) identityOf(s cursor.Screen) identity {
	kind, i := e.item(s, e.cur.State(s).SelectedIndex)
	switch kind {
	case ItemFile:
		return identity{kind, e.files(s)[i].Path}
	case ItemCommit:
		return identity{kind, e.repo.Commits[i].Hash}
	}
	return identity{kind: kind}
}

// reselect moves the cursor of s back onto id when it still exists.
// Diff cursor and scroll survive; Clamp fits them afterwards.
func (e *Engine) reselect(s cursor.Screen, id identity) {
	idx := -1
	switch id.kind {
	case ItemFile:
		for i, f := range e.files(s) {
			if f.Path == id.key {
				idx = i
				break
			}
		}
	case ItemCommitInput:
		idx = len(e.repo.Staged)
	case ItemCommit:
		if c := e.repo.CommitIndex(id.key); c >= 0 {
			idx = len(e.repo.Staged) + 1 + c
		}
	}
	if idx >= 0 {
		e.cur.Restore(withIndex(e.cur.Snapshot(), s, idx))
	}
}

func withIndex(snap cursor.Snapshot, s cursor.Screen, idx int) cursor.Snapshot {
	snap.States[s].SelectedIndex = idx
	return snap
}

// reload re-queries the repository. With byIdentity the selections follow
// their file or commit; otherwise the positions are only clamped.
func (e *Engine) reload(byIdentity bool) error {
	ids := [2]identity{e.identityOf(cursor.Main), e.identityOf(cursor.Unstaged)}
	repo, err := state.Load(e.b, e.opts.LogLimit)
	if err != nil {
		e.err = err
		return err
	}
	e.repo = repo
	if byIdentity {
		e.reselect(cursor.Main, ids[cursor.Main])
		e.reselect(cursor.Unstaged, ids[cursor.Unstaged])
	}
	e.clampAll()
	return nil
}

// fail records err for the status line. Conflicts mean the snapshot is
// stale, so it is rebuilt.
func (e *Engine) fail(err error) error {
	debug.Log("engine: %v", err)
	e.err = err
	e.status = ""
	if errors.Is(err, patch.ErrPatchConflict) {
		if rerr := e.reload(true); rerr != nil {
			debug.Log("reload after conflict: %v", rerr)
		}
		e.err = err
	}
	return err
}

func (e *Engine) succeed(status string) {
	e.err = nil
	e.status = status
}
