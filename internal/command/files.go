package command

import (
	"fmt"

	"github.com/henri123lemoine/grain/internal/debug"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/patch"
)

// GitignorePath is the ignore file commands append to. It is never
// ignored itself.
const GitignorePath = ".gitignore"

// DeleteUntracked removes an untracked file. Undo writes the captured
// content back.
type DeleteUntracked struct {
	b       git.Backend
	path    string
	content []byte
}

// NewDeleteUntracked captures the content of path.
func NewDeleteUntracked(b git.Backend, path string) (*DeleteUntracked, error) {
	content, ok, err := b.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s no longer exists", patch.ErrPatchConflict, path)
	}
	return &DeleteUntracked{b: b, path: path, content: content}, nil
}

func (c *DeleteUntracked) Execute() error { return c.b.DeleteUntracked(c.path) }

func (c *DeleteUntracked) Undo() error { return c.b.WriteFile(c.path, c.content) }

func (c *DeleteUntracked) Description() string { return "delete " + c.path }

// Ignore adds an untracked file to .gitignore. Undo restores the previous
// .gitignore, removing it when there was none.
type Ignore struct {
	b       git.Backend
	path    string
	before  []byte
	existed bool
}

// NewIgnore captures the current .gitignore.
func NewIgnore(b git.Backend, path string) (*Ignore, error) {
	before, existed, err := b.ReadFile(GitignorePath)
	if err != nil {
		return nil, err
	}
	return &Ignore{b: b, path: path, before: before, existed: existed}, nil
}

func (c *Ignore) Execute() error { return c.b.Ignore(c.path) }

func (c *Ignore) Undo() error {
	if !c.existed {
		return c.b.DeleteUntracked(GitignorePath)
	}
	return c.b.WriteFile(GitignorePath, c.before)
}

func (c *Ignore) Description() string { return "ignore " + c.path }

// IgnoreTracked stops tracking a file: the path is appended to .gitignore,
// .gitignore is staged and the file leaves the index. The work tree copy is
// kept. Undo restores both index entries and the previous .gitignore.
type IgnoreTracked struct {
	b    git.Backend
	path string

	entry git.IndexEntry

	before        []byte
	existed       bool
	ignoreEntry   git.IndexEntry
	ignoreIndexed bool
}

// NewIgnoreTracked captures the index entries of path and .gitignore and
// the .gitignore content.
func NewIgnoreTracked(b git.Backend, path string) (*IgnoreTracked, error) {
	entry, ok, err := b.ReadIndexEntry(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is not tracked", patch.ErrPatchConflict, path)
	}
	c := &IgnoreTracked{b: b, path: path, entry: entry}
	if c.before, c.existed, err = b.ReadFile(GitignorePath); err != nil {
		return nil, err
	}
	if c.ignoreEntry, c.ignoreIndexed, err = b.ReadIndexEntry(GitignorePath); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *IgnoreTracked) Execute() error {
	err := c.b.Ignore(c.path)
	if err == nil {
		err = c.b.StagePath(GitignorePath)
	}
	if err == nil {
		err = c.b.RestoreIndexEntry(c.path, git.IndexEntry{}, false)
	}
	if err != nil {
		if rerr := c.Undo(); rerr != nil {
			debug.Log("%s: rollback failed: %v", c.Description(), rerr)
		}
	}
	return err
}

func (c *IgnoreTracked) Undo() error {
	if err := c.b.RestoreIndexEntry(c.path, c.entry, true); err != nil {
		return err
	}
	if err := c.b.RestoreIndexEntry(GitignorePath, c.ignoreEntry, c.ignoreIndexed); err != nil {
		return err
	}
	if !c.existed {
		return c.b.DeleteUntracked(GitignorePath)
	}
	return c.b.WriteFile(GitignorePath, c.before)
}

func (c *IgnoreTracked) Description() string { return "ignore " + c.path }
