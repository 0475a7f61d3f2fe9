package git

import (
	"fmt"
	"strings"
)

// Commit records the index with message.
func (c *CLI) Commit(message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	_, err := runGitInput(c.repo.Root, message, "commit", "-q", "-F", "-")
	return err
}

// Amend replaces the message of HEAD. Staged changes are folded into the
// commit only when includeStaged is set.
func (c *CLI) Amend(message string, includeStaged bool) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	args := []string{"commit", "-q", "--amend", "--allow-empty", "-F", "-"}
	if !includeStaged {
		args = append(args, "--only")
	}
	_, err := runGitInput(c.repo.Root, message, args...)
	return err
}

// Reword changes the message of a local commit. Older commits are reworded
// by replaying the range above them.
func (c *CLI) Reword(hash, message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	head, err := c.Head()
	if err != nil {
		return err
	}
	if head == hash {
		return c.Amend(message, false)
	}

	output, err := c.run("rev-list", "--first-parent", "HEAD")
	if err != nil {
		return err
	}
	var steps []PlanStep
	found := false
	for _, h := range strings.Fields(output) {
		step := PlanStep{Hash: h}
		if h == hash {
			step.Message = message
			found = true
		}
		steps = append(steps, step)
		if found {
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s is not an ancestor of HEAD", ErrInvalidPlan, hash)
	}
	_, err = c.RebasePlan(steps)
	return err
}

// Head returns the commit HEAD points to, or "" on an unborn branch.
func (c *CLI) Head() (string, error) {
	output, err := c.run("rev-parse", "-q", "--verify", "HEAD^{commit}")
	if err != nil {
		// rev-parse --verify exits non-zero without output when unborn.
		if _, statErr := c.run("symbolic-ref", "-q", "HEAD"); statErr == nil {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// ResetKeep moves the current branch to rev, updating the index and work
// tree for files that differ. It refuses without changes when local
// modifications would be overwritten. Staged changes survive the move.
func (c *CLI) ResetKeep(rev string) error {
	staged, err := c.Diff(DiffRequest{Staged: true, Binary: true})
	if err != nil {
		return err
	}
	if _, err := c.run("reset", "-q", "--keep", rev); err != nil {
		return err
	}
	if staged == "" {
		return nil
	}
	// reset --keep refuses when a staged path differs between the two
	// commits, so the staged diff still applies on top of rev.
	if _, err := runGitInput(c.repo.Root, staged, "apply", "--cached", "--whitespace=nowarn", "-"); err != nil {
		return fmt.Errorf("restore staged changes: %w", err)
	}
	return nil
}
