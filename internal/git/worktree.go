package git

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/henri123lemoine/grain/internal/debug"
)

// scratchPrefix names the temporary worktrees used to replay commit plans.
const scratchPrefix = "grain-rebase-"

// Worktree is an entry of "git worktree list".
type Worktree struct {
	Path       string
	Head       string
	Branch     string
	IsDetached bool
}

// ListWorktrees returns every worktree of the repository.
func (c *CLI) ListWorktrees() ([]Worktree, error) {
	output, err := c.run("worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	return parseWorktreeList(output), nil
}

// parseWorktreeList parses the porcelain output of git worktree list.
func parseWorktreeList(output string) []Worktree {
	var worktrees []Worktree
	var current *Worktree

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "worktree "):
			if current != nil {
				worktrees = append(worktrees, *current)
			}
			current = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case current == nil:
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "detached":
			current.IsDetached = true
		}
	}

	if current != nil {
		worktrees = append(worktrees, *current)
	}
	return worktrees
}

// addScratchWorktree creates a detached worktree at rev in a fresh
// temporary directory and returns its path.
func (c *CLI) addScratchWorktree(rev string) (string, error) {
	dir, err := os.MkdirTemp("", scratchPrefix+"*")
	if err != nil {
		return "", err
	}
	if _, err := c.run("worktree", "add", "-q", "--detach", dir, rev); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to create worktree: %w", err)
	}
	return dir, nil
}

// removeWorktree force-removes a worktree and its directory.
func (c *CLI) removeWorktree(path string) {
	if _, err := c.run("worktree", "remove", "--force", path); err != nil {
		debug.Log("remove worktree %s: %v", path, err)
	}
	_ = os.RemoveAll(path)
	_, _ = c.run("worktree", "prune")
}

// PruneScratchWorktrees removes temporary worktrees left behind by an
// interrupted plan replay.
func (c *CLI) PruneScratchWorktrees() error {
	worktrees, err := c.ListWorktrees()
	if err != nil {
		return err
	}
	for _, wt := range worktrees {
		if strings.HasPrefix(filepath.Base(wt.Path), scratchPrefix) {
			debug.Log("pruning stale worktree %s", wt.Path)
			c.removeWorktree(wt.Path)
		}
	}
	return nil
}
