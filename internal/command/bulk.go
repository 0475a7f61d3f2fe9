package command

import (
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/patch"
)

// StageAll stages every tracked change and the untracked files under the
// size limit.
type StageAll struct {
	b     git.Backend
	text  string
	added []string
}

// NewStageAll captures the unstaged changes of tracked files. The patch is
// empty when only untracked files exist.
func NewStageAll(b git.Backend) (*StageAll, error) {
	text, err := b.Diff(git.DiffRequest{Binary: true})
	if err != nil {
		return nil, err
	}
	return &StageAll{b: b, text: text}, nil
}

func (c *StageAll) Execute() error {
	before, err := c.b.Status()
	if err != nil {
		return err
	}
	if err := c.b.AddAll(); err != nil {
		return err
	}
	after, err := c.b.Status()
	if err != nil {
		return err
	}

	still := make(map[string]bool, len(after.Untracked))
	for _, e := range after.Untracked {
		still[e.Path] = true
	}
	c.added = c.added[:0]
	for _, e := range before.Untracked {
		if !still[e.Path] {
			c.added = append(c.added, e.Path)
		}
	}
	return nil
}

func (c *StageAll) Undo() error {
	for _, path := range c.added {
		if err := c.b.UnstageNew(path); err != nil {
			return err
		}
	}
	if c.text == "" {
		return nil
	}
	return c.b.ApplyPatch(c.text, git.Index, patch.Unstage)
}

func (c *StageAll) Description() string { return "stage all" }

// UnstageAll moves every staged change back to the work tree.
type UnstageAll struct {
	b    git.Backend
	text string
}

// NewUnstageAll captures the staged changes.
func NewUnstageAll(b git.Backend) (*UnstageAll, error) {
	text, err := capture(b, git.DiffRequest{Staged: true})
	if err != nil {
		return nil, err
	}
	return &UnstageAll{b: b, text: text}, nil
}

func (c *UnstageAll) Execute() error { return c.b.ApplyPatch(c.text, git.Index, patch.Unstage) }

func (c *UnstageAll) Undo() error { return c.b.ApplyPatch(c.text, git.Index, patch.Stage) }

func (c *UnstageAll) Description() string { return "unstage all" }
