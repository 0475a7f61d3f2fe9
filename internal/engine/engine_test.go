package engine

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henri123lemoine/grain/internal/cursor"
	"github.com/henri123lemoine/grain/internal/draft"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/patch"
)

func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	run(t, dir, "init", "-q")
	run(t, dir, "config", "user.email", "test@test.com")
	run(t, dir, "config", "user.name", "Test User")
	run(t, dir, "config", "commit.gpgsign", "false")
	commit(t, dir, "README.md", "# Test\n", "Initial commit")
	return dir
}

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimRight(string(out), "\n")
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func commit(t *testing.T, dir, name, content, message string) string {
	t.Helper()
	write(t, dir, name, content)
	run(t, dir, "add", name)
	run(t, dir, "commit", "-q", "-m", message)
	return run(t, dir, "rev-parse", "HEAD")
}

func newEngine(t *testing.T, dir string, store *draft.Store) *Engine {
	t.Helper()
	repo, err := git.OpenRepo(dir)
	require.NoError(t, err)
	if store == nil {
		store = draft.NewStore(t.TempDir())
	}
	e, err := New(git.NewCLI(repo, 1<<20), Options{
		RepoRoot:           dir,
		LogLimit:           50,
		MainHorizontalStep: 8,
		Gutter:             10,
		Drafts:             store,
	})
	require.NoError(t, err)
	e.SetViewport(80, 20)
	return e
}

// numbered returns n lines "l1".."ln", with the lines in replace swapped
// for their new text.
func numbered(n int, replace map[int]string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if s, ok := replace[i]; ok {
			b.WriteString(s + "\n")
			continue
		}
		fmt.Fprintf(&b, "l%d\n", i)
	}
	return b.String()
}

// selectRow puts the active diff cursor on row of the selected file.
func selectRow(t *testing.T, e *Engine, row int) {
	t.Helper()
	require.True(t, e.cur.MoveLine(row-e.cur.Line(), e.lineCount()))
	require.Equal(t, row, e.cur.Line())
}

func firstChangeRow(d *patch.Diff) int {
	for i, r := range d.Rows() {
		if r.Line >= 0 && d.Hunks[r.Hunk].Lines[r.Line].IsChange() {
			return i
		}
	}
	return -1
}

func selectedFile(t *testing.T, e *Engine) string {
	t.Helper()
	sel := e.View().Selection
	require.Equal(t, ItemFile, sel.Kind)
	return sel.File.Path
}

func TestHunkByHunkEqualsWholeFile(t *testing.T) {
	content := numbered(20, nil)
	changed := numbered(20, map[int]string{1: "first", 20: "last"})

	whole := setupTestRepo(t)
	commit(t, whole, "f.txt", content, "add f")
	write(t, whole, "f.txt", changed)
	ew := newEngine(t, whole, nil)
	require.True(t, ew.SwitchFocus(true))
	require.NoError(t, ew.Do(StageOrEnter))

	byHunk := setupTestRepo(t)
	commit(t, byHunk, "f.txt", content, "add f")
	write(t, byHunk, "f.txt", changed)
	eh := newEngine(t, byHunk, nil)
	require.True(t, eh.SwitchFocus(true))
	require.Len(t, eh.repo.Unstaged[0].Diff.Hunks, 2)

	for i := 0; i < 2; i++ {
		require.Equal(t, cursor.Unstaged, eh.Focus())
		selectRow(t, eh, 0)
		require.NoError(t, eh.Do(StageOrEnter))
	}

	assert.Empty(t, eh.repo.Unstaged)
	assert.Equal(t, run(t, whole, "write-tree"), run(t, byHunk, "write-tree"))
}

func TestLineByLineConvergesToHunk(t *testing.T) {
	content := numbered(6, nil)
	changed := numbered(6, map[int]string{2: "two", 3: "three"})

	hunk := setupTestRepo(t)
	commit(t, hunk, "f.txt", content, "add f")
	write(t, hunk, "f.txt", changed)
	eh := newEngine(t, hunk, nil)
	require.True(t, eh.SwitchFocus(true))
	selectRow(t, eh, 0)
	require.NoError(t, eh.Do(StageOrEnter))

	lines := setupTestRepo(t)
	commit(t, lines, "f.txt", content, "add f")
	write(t, lines, "f.txt", changed)
	el := newEngine(t, lines, nil)
	require.True(t, el.SwitchFocus(true))

	for steps := 0; len(el.repo.Unstaged) > 0; steps++ {
		require.Less(t, steps, 10, "staging lines does not converge")
		selectRow(t, el, firstChangeRow(el.repo.Unstaged[0].Diff))
		require.NoError(t, el.Do(StageLine))
	}
	assert.Equal(t, run(t, hunk, "write-tree"), run(t, lines, "write-tree"))

	// Unstaging line by line empties the index diff again.
	require.Equal(t, cursor.Main, el.Focus())
	for steps := 0; len(el.repo.Staged) > 0; steps++ {
		require.Less(t, steps, 10, "unstaging lines does not converge")
		el.cur.Select(0, el.itemCount(cursor.Main))
		selectRow(t, el, firstChangeRow(el.repo.Staged[0].Diff))
		require.NoError(t, el.Do(StageLine))
	}
	assert.Equal(t, "", run(t, lines, "diff", "--cached"))
}

func TestStageSingleAddedLine(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "a.txt", "base\n", "add a")
	write(t, dir, "a.txt", "base\n1\n2\n3\n")

	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))
	d := e.repo.Unstaged[0].Diff
	require.Len(t, d.Hunks, 1)
	require.Equal(t, 3, d.Hunks[0].Changes())

	// Rows: header, " base", "+1", "+2", "+3".
	selectRow(t, e, 3)
	require.NoError(t, e.Do(StageLine))

	staged, ok := e.repo.FindStaged("a.txt")
	require.True(t, ok)
	require.Len(t, staged.Diff.Hunks, 1)
	assert.Equal(t, 1, staged.Diff.Hunks[0].Changes())
	assert.Equal(t, "2", staged.Diff.Hunks[0].Lines[1].Text)

	unstaged, ok := e.repo.FindUnstaged("a.txt")
	require.True(t, ok)
	require.Len(t, unstaged.Diff.Hunks, 1)
	assert.Equal(t, 2, unstaged.Diff.Hunks[0].Changes())
	assert.Equal(t, "base\n2", run(t, dir, "show", ":a.txt"))
}

func TestContextLineIsIgnored(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "README.md", "# Test\nmore\n")
	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))
	before := e.repo.Fingerprint()

	selectRow(t, e, 1)
	require.NoError(t, e.Do(StageLine))
	assert.Equal(t, before, e.repo.Fingerprint())
	assert.NoError(t, e.View().Err)
	undo, _ := e.hist.Len()
	assert.Equal(t, 0, undo)
}

func TestUndoRestoresStateAndCursors(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "f.txt", numbered(20, nil), "add f")
	write(t, dir, "f.txt", numbered(20, map[int]string{1: "first", 20: "last"}))
	write(t, dir, "other.txt", "untracked\n")

	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))
	selectRow(t, e, 0)

	preState, preView := e.repo.Fingerprint(), e.View()
	require.NoError(t, e.Do(StageOrEnter))
	postState, postView := e.repo.Fingerprint(), e.View()
	require.NotEqual(t, preState, postState)

	require.NoError(t, e.Do(Undo))
	v := e.View()
	assert.Equal(t, preState, e.repo.Fingerprint())
	assert.Equal(t, preView.Focus, v.Focus)
	assert.Equal(t, preView.Main, v.Main)
	assert.Equal(t, preView.Unstaged, v.Unstaged)
	assert.Equal(t, preView.Line, v.Line)

	require.NoError(t, e.Do(Redo))
	v = e.View()
	assert.Equal(t, postState, e.repo.Fingerprint())
	assert.Equal(t, postView.Focus, v.Focus)
	assert.Equal(t, postView.Main, v.Main)
	assert.Equal(t, postView.Unstaged, v.Unstaged)
	assert.Equal(t, postView.Line, v.Line)
}

func TestUndoOnEmptyHistoryIsNoOp(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "README.md", "# Changed\n")
	e := newEngine(t, dir, nil)

	before := e.repo.Fingerprint()
	require.NoError(t, e.Do(Undo))
	require.NoError(t, e.Do(Redo))
	require.NoError(t, e.Do(Refresh))
	assert.Equal(t, before, e.repo.Fingerprint())
}

func TestCommitClearsHistory(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "README.md", "# Changed\n")
	e := newEngine(t, dir, nil)

	require.True(t, e.SwitchFocus(true))
	require.NoError(t, e.Do(StageOrEnter))
	// The unstaged screen emptied, so focus moved back to the commit
	// input, which followed its position below the new staged file.
	require.Equal(t, cursor.Main, e.Focus())
	require.Equal(t, ItemCommitInput, e.View().Selection.Kind)
	require.Equal(t, 1, e.View().UndoDepth)

	require.NoError(t, e.Do(StageOrEnter))
	require.Equal(t, ModeCommitMessage, e.Mode())

	e.SetCommitDraft("Update readme")
	require.NoError(t, e.Commit())

	v := e.View()
	assert.Equal(t, 0, v.UndoDepth)
	assert.Equal(t, 0, v.RedoDepth)
	assert.Equal(t, ModeNormal, v.Mode)
	assert.Equal(t, "Update readme", run(t, dir, "log", "-1", "--format=%s"))
	assert.Empty(t, e.CommitDraft())
}

func TestCommitEmptyMessage(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "README.md", "# Changed\n")
	run(t, dir, "add", "README.md")
	e := newEngine(t, dir, nil)

	e.SetCommitDraft("  ")
	err := e.Commit()
	assert.True(t, errors.Is(err, git.ErrEmptyMessage), "got %v", err)
	assert.Equal(t, "Initial commit", run(t, dir, "log", "-1", "--format=%s"))
}

func TestDraftPersistsAcrossSessions(t *testing.T) {
	dir := setupTestRepo(t)
	store := draft.NewStore(t.TempDir())

	e := newEngine(t, dir, store)
	e.SetCommitDraft("Work in progress")

	again := newEngine(t, dir, store)
	assert.Equal(t, "Work in progress", again.CommitDraft())

	write(t, dir, "README.md", "# Changed\n")
	run(t, dir, "add", "README.md")
	require.NoError(t, again.Do(Refresh))
	require.NoError(t, again.Commit())

	third := newEngine(t, dir, store)
	assert.Empty(t, third.CommitDraft())
}

func TestSwitchFocusLandsOnSamePath(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "a.txt", "a\n", "add a")
	commit(t, dir, "d.txt", "d\n", "add d")
	write(t, dir, "b.txt", "b\n")
	write(t, dir, "d.txt", "d\nstaged\n")
	run(t, dir, "add", "b.txt", "d.txt")
	write(t, dir, "a.txt", "a\nunstaged\n")
	write(t, dir, "d.txt", "d\nstaged\nunstaged\n")

	e := newEngine(t, dir, nil)
	// Staged: b.txt, d.txt. Unstaged: a.txt, d.txt.
	require.True(t, e.SwitchFocus(true))
	require.Equal(t, "a.txt", selectedFile(t, e))
	require.NoError(t, e.Do(MoveDown))
	require.Equal(t, "d.txt", selectedFile(t, e))

	require.True(t, e.SwitchFocus(true))
	assert.Equal(t, cursor.Main, e.Focus())
	assert.Equal(t, "d.txt", selectedFile(t, e))
	assert.Equal(t, 1, e.View().Main.SelectedIndex)

	// b.txt is not on the unstaged screen: its stored index is restored.
	require.NoError(t, e.Do(MoveUp))
	require.True(t, e.SwitchFocus(true))
	assert.Equal(t, "d.txt", selectedFile(t, e))
	assert.False(t, e.View().Unstaged.DiffCursorActive)
	assert.Equal(t, 0, e.View().Line)
}

func TestSwitchFocusResetsLineCursor(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "README.md", "# Test\none\ntwo\n")
	run(t, dir, "add", "README.md")
	write(t, dir, "README.md", "# Test\none\ntwo\nthree\n")

	e := newEngine(t, dir, nil)
	selectRow(t, e, 2)
	require.True(t, e.SwitchFocus(true))
	assert.Equal(t, 0, e.View().Line)
	assert.False(t, e.View().Unstaged.DiffCursorActive)
	assert.True(t, e.View().Main.DiffCursorActive, "departing screen keeps its own flag")
}

func TestSwitchFocusBlocked(t *testing.T) {
	dir := setupTestRepo(t)
	e := newEngine(t, dir, nil)

	assert.False(t, e.SwitchFocus(true), "empty unstaged screen")

	write(t, dir, "README.md", "# Changed\n")
	require.NoError(t, e.Do(Refresh))
	require.NoError(t, e.Do(StageOrEnter))
	require.Equal(t, ModeCommitMessage, e.Mode())
	assert.False(t, e.SwitchFocus(true), "commit message being edited")

	e.CancelEdit()
	assert.True(t, e.SwitchFocus(true))
}

func TestDiscardHunkAndUndo(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "f.txt", numbered(20, nil), "add f")
	changed := numbered(20, map[int]string{1: "first", 20: "last"})
	write(t, dir, "f.txt", changed)

	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))
	selectRow(t, e, 0)
	require.NoError(t, e.Do(DiscardSelection))

	data, err := os.ReadFile(filepath.Join(dir, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, numbered(20, map[int]string{20: "last"}), string(data))

	require.NoError(t, e.Do(Undo))
	data, err = os.ReadFile(filepath.Join(dir, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, changed, string(data))
}

func TestDiscardStagedHunkAndUndo(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "f.txt", numbered(20, nil), "add f")
	changed := numbered(20, map[int]string{1: "first", 20: "last"})
	write(t, dir, "f.txt", changed)
	run(t, dir, "add", "f.txt")

	e := newEngine(t, dir, nil)
	require.Equal(t, "f.txt", selectedFile(t, e))
	require.Len(t, e.repo.Staged[0].Diff.Hunks, 2)
	selectRow(t, e, 0)
	require.NoError(t, e.Do(DiscardSelection))

	kept := numbered(20, map[int]string{20: "last"})
	data, err := os.ReadFile(filepath.Join(dir, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, kept, string(data))
	assert.Equal(t, strings.TrimRight(kept, "\n"), run(t, dir, "show", ":f.txt"))

	require.NoError(t, e.Do(Undo))
	data, err = os.ReadFile(filepath.Join(dir, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, changed, string(data))
	assert.Equal(t, strings.TrimRight(changed, "\n"), run(t, dir, "show", ":f.txt"))
}

func TestDiscardStagedRequiresCleanWorkTree(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "README.md", "# Staged\n")
	run(t, dir, "add", "README.md")
	write(t, dir, "README.md", "# Staged and more\n")

	e := newEngine(t, dir, nil)
	before := e.repo.Fingerprint()
	require.NoError(t, e.Do(DiscardSelection))
	assert.Equal(t, before, e.repo.Fingerprint())
	assert.Contains(t, e.View().Status, "unstaged changes")

	write(t, dir, "README.md", "# Staged\n")
	require.NoError(t, e.Do(Refresh))
	require.NoError(t, e.Do(DiscardSelection))
	assert.Equal(t, "", run(t, dir, "status", "--porcelain"))
}

func TestIgnoreUntracked(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "README.md", "# Changed\n")
	write(t, dir, "build.log", "noise\n")

	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))
	require.NoError(t, e.Do(MoveDown))
	require.Equal(t, "build.log", selectedFile(t, e))
	require.NoError(t, e.Do(IgnoreSelection))
	assert.Equal(t, " M README.md\n?? .gitignore", run(t, dir, "status", "--porcelain"))

	require.NoError(t, e.Do(Undo))
	assert.Equal(t, " M README.md\n?? build.log", run(t, dir, "status", "--porcelain"))
}

func TestIgnoreTrackedFile(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "gen.txt", "v1\n", "add gen")
	write(t, dir, "gen.txt", "v2\n")

	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))
	require.Equal(t, "gen.txt", selectedFile(t, e))
	require.NoError(t, e.Do(IgnoreSelection))
	assert.Equal(t, "A  .gitignore\nD  gen.txt", run(t, dir, "status", "--porcelain"))
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "gen.txt\n", string(data))

	require.NoError(t, e.Do(Undo))
	assert.Equal(t, " M gen.txt", run(t, dir, "status", "--porcelain"))
	_, err = os.Stat(filepath.Join(dir, ".gitignore"))
	assert.True(t, os.IsNotExist(err))
}

func TestIgnoreStagedFileOnMainScreen(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "new.txt", "new\n")
	run(t, dir, "add", "new.txt")

	e := newEngine(t, dir, nil)
	require.Equal(t, "new.txt", selectedFile(t, e))
	require.NoError(t, e.Do(IgnoreSelection))
	assert.Equal(t, "A  .gitignore", run(t, dir, "status", "--porcelain"))

	require.NoError(t, e.Do(Undo))
	assert.Equal(t, "A  new.txt", run(t, dir, "status", "--porcelain"))
}

func TestIgnoreSkipsGitignore(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, ".gitignore", "*.log\n")

	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))
	require.Equal(t, ".gitignore", selectedFile(t, e))
	before := e.repo.Fingerprint()
	require.NoError(t, e.Do(IgnoreSelection))
	assert.Equal(t, before, e.repo.Fingerprint())
	undo, _ := e.hist.Len()
	assert.Equal(t, 0, undo)
}

func TestVanishedFileIsAConflict(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "README.md", "# Changed\n")
	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))

	// Reverted behind the session's back.
	run(t, dir, "checkout", "--", "README.md")

	err := e.Do(StageOrEnter)
	assert.True(t, errors.Is(err, patch.ErrPatchConflict), "got %v", err)
	assert.Empty(t, e.repo.Unstaged, "snapshot refreshed")
	undo, _ := e.hist.Len()
	assert.Equal(t, 0, undo)
}

func TestStageAllAndUnstageAll(t *testing.T) {
	dir := setupTestRepo(t)
	write(t, dir, "README.md", "# Changed\n")
	write(t, dir, "new.txt", "new\n")
	e := newEngine(t, dir, nil)

	require.NoError(t, e.Do(StageAllShortcut))
	assert.Len(t, e.repo.Staged, 2)
	assert.Empty(t, e.repo.UnstagedScreenFiles())

	require.NoError(t, e.Do(UnstageAllShortcut))
	assert.Empty(t, e.repo.Staged)
	assert.Len(t, e.repo.UnstagedScreenFiles(), 2)

	require.NoError(t, e.Do(Undo))
	assert.Len(t, e.repo.Staged, 2)
	require.NoError(t, e.Do(Undo))
	assert.Empty(t, e.repo.Staged)
}

func TestAmendHead(t *testing.T) {
	dir := setupTestRepo(t)
	e := newEngine(t, dir, nil)

	require.NoError(t, e.Do(BeginAmend))
	require.Equal(t, ModeAmendMessage, e.Mode())
	assert.Equal(t, "Initial commit", e.View().AmendText)

	require.NoError(t, e.ConfirmAmend("Reworded root"))
	assert.Equal(t, ModeNormal, e.Mode())
	assert.Equal(t, "Reworded root", run(t, dir, "log", "-1", "--format=%s"))
}

func TestRewordOlderCommit(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "a.txt", "a\n", "A")
	commit(t, dir, "b.txt", "b\n", "B")
	e := newEngine(t, dir, nil)

	// Items: commit input, B, A, Initial commit.
	require.NoError(t, e.Do(MoveDown))
	require.NoError(t, e.Do(MoveDown))
	require.Equal(t, "A", e.View().Selection.Commit.Subject)

	require.NoError(t, e.Do(BeginAmend))
	require.NoError(t, e.ConfirmAmend("A reworded"))
	assert.Equal(t, "B\nA reworded\nInitial commit", run(t, dir, "log", "--format=%s"))
	assert.Equal(t, "A reworded", e.View().Selection.Commit.Subject, "selection follows position")
}

func TestAmendRefusedOnPushedHead(t *testing.T) {
	dir := setupTestRepo(t)
	head := commit(t, dir, "a.txt", "a\n", "A")
	run(t, dir, "update-ref", "refs/remotes/origin/main", head)

	e := newEngine(t, dir, nil)
	require.NoError(t, e.Do(BeginAmend))
	assert.Equal(t, ModeNormal, e.Mode())
	assert.Contains(t, e.View().Status, "already pushed")
	assert.Equal(t, head, run(t, dir, "rev-parse", "HEAD"))
}

func TestReorderSwapAndFixup(t *testing.T) {
	dir := setupTestRepo(t)
	root := run(t, dir, "rev-parse", "HEAD")
	commit(t, dir, "c3.txt", "3\n", "c3")
	commit(t, dir, "c2.txt", "2\n", "c2")
	commit(t, dir, "c1.txt", "1\n", "c1")
	run(t, dir, "update-ref", "refs/remotes/origin/main", root)

	e := newEngine(t, dir, nil)
	// Items: commit input, c1, c2, c3, Initial commit.
	require.NoError(t, e.Do(MoveDown))
	require.NoError(t, e.Do(MoveDown))
	require.Equal(t, "c2", e.View().Selection.Commit.Subject)

	require.NoError(t, e.Do(BeginReorder))
	require.Equal(t, ModeReorder, e.Mode())
	assert.False(t, e.SwitchFocus(true))

	assert.False(t, e.View().ReorderCanUndo)
	require.NoError(t, e.Do(SwapDown))
	v := e.View()
	require.Len(t, v.ReorderPlan, 3)
	assert.True(t, v.ReorderCanUndo)
	assert.False(t, v.ReorderCanRedo)
	assert.Equal(t, "c3", v.ReorderPlan[1].Commit.Subject)
	assert.Equal(t, "c2", v.ReorderPlan[2].Commit.Subject)

	require.NoError(t, e.Do(MoveUp))
	require.NoError(t, e.Do(ToggleFixup))
	require.NoError(t, e.Do(ConfirmReorder))

	assert.Equal(t, ModeNormal, e.Mode())
	assert.Equal(t, "c1\nc2\nInitial commit", run(t, dir, "log", "--format=%s"))
	assert.Equal(t, "c2.txt\nc3.txt", run(t, dir, "diff-tree", "--no-commit-id", "--name-only", "-r", "HEAD~1"))
	assert.Equal(t, "c1.txt", run(t, dir, "diff-tree", "--no-commit-id", "--name-only", "-r", "HEAD"))
	assert.Equal(t, 0, e.View().UndoDepth)
}

func TestReorderRefusedOnPushedCommit(t *testing.T) {
	dir := setupTestRepo(t)
	root := run(t, dir, "rev-parse", "HEAD")
	commit(t, dir, "a.txt", "a\n", "A")
	run(t, dir, "update-ref", "refs/remotes/origin/main", root)

	e := newEngine(t, dir, nil)
	require.NoError(t, e.Do(MoveEnd))
	require.Equal(t, "Initial commit", e.View().Selection.Commit.Subject)
	require.NoError(t, e.Do(BeginReorder))
	assert.Equal(t, ModeNormal, e.Mode())
}

func TestReorderCancelRestoresSelection(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "a.txt", "a\n", "A")
	commit(t, dir, "b.txt", "b\n", "B")
	head := run(t, dir, "rev-parse", "HEAD")

	e := newEngine(t, dir, nil)
	require.NoError(t, e.Do(MoveDown))
	require.NoError(t, e.Do(MoveDown))
	require.Equal(t, "A", e.View().Selection.Commit.Subject)

	require.NoError(t, e.Do(BeginReorder))
	require.NoError(t, e.Do(SwapUp))
	require.NoError(t, e.Do(MoveEnd))
	require.NoError(t, e.Do(CancelReorder))

	assert.Equal(t, ModeNormal, e.Mode())
	assert.Equal(t, "A", e.View().Selection.Commit.Subject)
	assert.Equal(t, head, run(t, dir, "rev-parse", "HEAD"))
}

func TestReorderMessageEdit(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "a.txt", "a\n", "A")
	commit(t, dir, "b.txt", "b\n", "B")

	e := newEngine(t, dir, nil)
	require.NoError(t, e.Do(MoveDown))
	require.NoError(t, e.Do(BeginReorder))
	require.NoError(t, e.Do(EditReorderMessage))
	require.Equal(t, ModeReorderMessage, e.Mode())
	assert.Equal(t, "B", e.ReorderMessage())

	e.ConfirmReorderMessage("B reworded")
	require.Equal(t, ModeReorder, e.Mode())
	require.NoError(t, e.Do(ConfirmReorder))
	assert.Equal(t, "B reworded\nA\nInitial commit", run(t, dir, "log", "--format=%s"))
}

func TestJumpTo(t *testing.T) {
	dir := setupTestRepo(t)
	for _, name := range []string{"alpha.go", "beta.go", "gamma.go"} {
		write(t, dir, name, name+"\n")
	}
	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))

	require.NoError(t, e.Do(BeginFind))
	require.Equal(t, ModeFind, e.Mode())
	assert.False(t, e.SwitchFocus(true))

	assert.True(t, e.JumpTo("gam"))
	assert.Equal(t, ModeNormal, e.Mode())
	assert.Equal(t, "gamma.go", selectedFile(t, e))
}

func TestEditorTarget(t *testing.T) {
	dir := setupTestRepo(t)
	commit(t, dir, "f.txt", numbered(10, nil), "add f")
	write(t, dir, "f.txt", numbered(10, map[int]string{6: "six"}))

	e := newEngine(t, dir, nil)
	require.True(t, e.SwitchFocus(true))

	path, line, ok := e.EditorTarget()
	require.True(t, ok)
	assert.Equal(t, "f.txt", path)
	assert.Equal(t, 1, line)

	// Rows: header, l3, l4, l5, -l6, +six.
	selectRow(t, e, 5)
	_, line, _ = e.EditorTarget()
	assert.Equal(t, 6, line)
	selectRow(t, e, 4)
	_, line, _ = e.EditorTarget()
	assert.Equal(t, 6, line)
}
