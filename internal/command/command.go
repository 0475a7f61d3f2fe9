// Package command implements the undoable repository mutations. Every
// command captures the patch text or file content it needs to revert
// itself before it runs; nothing snapshots the whole tree.
package command

import (
	"fmt"

	"github.com/henri123lemoine/grain/internal/debug"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/patch"
)

// Patch applies a hunk or line patch to one surface. Undo applies the same
// text in the inverse direction.
type Patch struct {
	b      git.Backend
	text   string
	target git.Target
	dir    patch.Direction
	desc   string
}

// NewPatch returns a command applying text to target in direction dir.
func NewPatch(b git.Backend, text string, target git.Target, dir patch.Direction, desc string) *Patch {
	return &Patch{b: b, text: text, target: target, dir: dir, desc: desc}
}

func (c *Patch) Execute() error { return c.b.ApplyPatch(c.text, c.target, c.dir) }

func (c *Patch) Undo() error { return c.b.ApplyPatch(c.text, c.target, c.dir.Inverse()) }

func (c *Patch) Description() string { return c.desc }

// capture returns the binary-safe diff of path, failing when there is
// nothing to apply.
func capture(b git.Backend, req git.DiffRequest) (string, error) {
	req.Binary = true
	text, err := b.Diff(req)
	if err != nil {
		return "", err
	}
	if text == "" {
		what := req.Path
		if what == "" {
			what = "work tree"
		}
		return "", fmt.Errorf("%w: %s has no changes", patch.ErrPatchConflict, what)
	}
	return text, nil
}

// StageFile stages every change of a file.
type StageFile struct {
	b         git.Backend
	path      string
	untracked bool
	text      string
}

// NewStageFile captures the unstaged changes of path.
func NewStageFile(b git.Backend, path string, untracked bool) (*StageFile, error) {
	c := &StageFile{b: b, path: path, untracked: untracked}
	if untracked {
		if _, ok, err := b.ReadFile(path); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("%w: %s no longer exists", patch.ErrPatchConflict, path)
		}
		return c, nil
	}
	text, err := capture(b, git.DiffRequest{Path: path})
	if err != nil {
		return nil, err
	}
	c.text = text
	return c, nil
}

func (c *StageFile) Execute() error {
	if c.untracked {
		return c.b.StagePath(c.path)
	}
	return c.b.ApplyPatch(c.text, git.Index, patch.Stage)
}

func (c *StageFile) Undo() error {
	if c.untracked {
		return c.b.UnstageNew(c.path)
	}
	return c.b.ApplyPatch(c.text, git.Index, patch.Unstage)
}

func (c *StageFile) Description() string { return "stage " + c.path }

// UnstageFile moves every staged change of a file back to the work tree.
type UnstageFile struct {
	b    git.Backend
	path string
	text string
}

// NewUnstageFile captures the staged changes of path.
func NewUnstageFile(b git.Backend, path string) (*UnstageFile, error) {
	text, err := capture(b, git.DiffRequest{Path: path, Staged: true})
	if err != nil {
		return nil, err
	}
	return &UnstageFile{b: b, path: path, text: text}, nil
}

func (c *UnstageFile) Execute() error { return c.b.ApplyPatch(c.text, git.Index, patch.Unstage) }

func (c *UnstageFile) Undo() error { return c.b.ApplyPatch(c.text, git.Index, patch.Stage) }

func (c *UnstageFile) Description() string { return "unstage " + c.path }

// DiscardFile reverts the unstaged changes of a tracked file.
type DiscardFile struct {
	b    git.Backend
	path string
	text string
}

// NewDiscardFile captures the unstaged changes of path.
func NewDiscardFile(b git.Backend, path string) (*DiscardFile, error) {
	text, err := capture(b, git.DiffRequest{Path: path})
	if err != nil {
		return nil, err
	}
	return &DiscardFile{b: b, path: path, text: text}, nil
}

func (c *DiscardFile) Execute() error {
	return c.b.ApplyPatch(c.text, git.WorkTree, patch.Discard)
}

func (c *DiscardFile) Undo() error {
	return c.b.ApplyPatch(c.text, git.WorkTree, patch.Discard.Inverse())
}

func (c *DiscardFile) Description() string { return "discard " + c.path }

// DiscardStagedFile drops staged changes from both the index and the work
// tree: a whole file, or one hunk of it. It requires the work tree to match
// the index.
type DiscardStagedFile struct {
	b    git.Backend
	path string
	text string
	desc string
}

// NewDiscardStagedFile captures the staged changes of path.
func NewDiscardStagedFile(b git.Backend, path string) (*DiscardStagedFile, error) {
	text, err := capture(b, git.DiffRequest{Path: path, Staged: true})
	if err != nil {
		return nil, err
	}
	return &DiscardStagedFile{b: b, path: path, text: text, desc: "discard staged " + path}, nil
}

// NewDiscardStagedHunk discards the staged hunk rendered as text.
func NewDiscardStagedHunk(b git.Backend, path, text string) *DiscardStagedFile {
	return &DiscardStagedFile{b: b, path: path, text: text, desc: "discard staged hunk of " + path}
}

func (c *DiscardStagedFile) Execute() error {
	if err := c.b.ApplyPatch(c.text, git.Index, patch.Unstage); err != nil {
		return err
	}
	if err := c.b.ApplyPatch(c.text, git.WorkTree, patch.Discard); err != nil {
		// Put the index back so the pair stays atomic.
		if rerr := c.b.ApplyPatch(c.text, git.Index, patch.Stage); rerr != nil {
			debug.Log("%s: index rollback failed: %v", c.desc, rerr)
		}
		return err
	}
	return nil
}

func (c *DiscardStagedFile) Undo() error {
	if err := c.b.ApplyPatch(c.text, git.WorkTree, patch.Stage); err != nil {
		return err
	}
	if err := c.b.ApplyPatch(c.text, git.Index, patch.Stage); err != nil {
		if rerr := c.b.ApplyPatch(c.text, git.WorkTree, patch.Discard); rerr != nil {
			debug.Log("%s: work tree rollback failed: %v", c.desc, rerr)
		}
		return err
	}
	return nil
}

func (c *DiscardStagedFile) Description() string { return c.desc }
