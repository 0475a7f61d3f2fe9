package git

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/henri123lemoine/grain/internal/debug"
)

// RebasePlan replays the newest len(steps) first-parent commits of HEAD in
// the order and with the intents given by steps (newest first).
//
// The replay happens with cherry-pick in a scratch worktree, so the user's
// checkout is only touched by the final "reset --keep", which either
// succeeds or changes nothing. Any failure leaves the repository as it was.
func (c *CLI) RebasePlan(steps []PlanStep) (string, error) {
	defer debug.Timed("rebase plan")()

	if len(steps) == 0 {
		return "", fmt.Errorf("%w: no commits", ErrInvalidPlan)
	}
	output, err := c.run("rev-list", "--first-parent", "-n", strconv.Itoa(len(steps)), "HEAD")
	if err != nil {
		return "", err
	}
	original := strings.Fields(output)
	if err := checkPlanRange(steps, original); err != nil {
		return "", err
	}

	chron := reversed(steps)
	origChron := reversed(original)
	if err := validatePlan(chron); err != nil {
		return "", err
	}

	// Commits at the bottom that stay where they are need no replay.
	prefix := 0
	for prefix < len(chron) && chron[prefix].Hash == origChron[prefix] &&
		chron[prefix].Intent == Keep && chron[prefix].Message == "" &&
		(prefix+1 == len(chron) || chron[prefix+1].Intent != Fixup) {
		prefix++
	}
	if prefix == len(chron) {
		return original[0], nil
	}

	base := ""
	if prefix > 0 {
		base = chron[prefix-1].Hash
	} else if parent, err := c.run("rev-parse", "-q", "--verify", origChron[0]+"^"); err == nil {
		base = strings.TrimSpace(parent)
	}

	start := base
	if start == "" {
		start = "HEAD"
	}
	dir, err := c.addScratchWorktree(start)
	if err != nil {
		return "", err
	}
	orphan := ""
	cleanup := func() {
		c.removeWorktree(dir)
		if orphan != "" {
			_, _ = c.run("branch", "-q", "-D", orphan)
		}
	}
	defer cleanup()

	if base == "" {
		// The root commit moves: replay onto an empty history.
		orphan = scratchPrefix + strconv.FormatInt(time.Now().UnixNano(), 36)
		if _, err := runGitInDir(dir, "checkout", "-q", "--orphan", orphan); err != nil {
			return "", err
		}
		if _, err := runGitInDir(dir, "rm", "-rfq", "--ignore-unmatch", "."); err != nil {
			return "", err
		}
	}

	for _, step := range chron[prefix:] {
		if err := replayStep(dir, step); err != nil {
			_, _ = runGitInDir(dir, "cherry-pick", "--abort")
			return "", fmt.Errorf("%w: %s %s: %w", ErrRebaseConflict, step.Intent, shortHash(step.Hash), err)
		}
	}

	newHead, err := runGitInDir(dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	newHead = strings.TrimSpace(newHead)

	if err := c.ResetKeep(newHead); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRebaseConflict, err)
	}
	debug.Log("rebase plan: HEAD %s -> %s", shortHash(original[0]), shortHash(newHead))
	return newHead, nil
}

func replayStep(dir string, step PlanStep) error {
	switch step.Intent {
	case Discard:
		return nil
	case Fixup:
		if _, err := runGitInDir(dir, "cherry-pick", "--no-commit", step.Hash); err != nil {
			return err
		}
		_, err := runGitInDir(dir, "commit", "-q", "--amend", "--no-edit", "--allow-empty")
		return err
	default:
		if _, err := runGitInDir(dir, "cherry-pick", "--allow-empty", "--keep-redundant-commits", step.Hash); err != nil {
			return err
		}
		if step.Message == "" {
			return nil
		}
		_, err := runGitInput(dir, step.Message, "commit", "-q", "--amend", "--allow-empty", "-F", "-")
		return err
	}
}

// checkPlanRange verifies that steps hold exactly the commits of original.
func checkPlanRange(steps []PlanStep, original []string) error {
	if len(original) != len(steps) {
		return fmt.Errorf("%w: expected %d commits, HEAD has %d", ErrInvalidPlan, len(steps), len(original))
	}
	want := make(map[string]bool, len(original))
	for _, h := range original {
		want[h] = true
	}
	for _, s := range steps {
		if !want[s.Hash] {
			return fmt.Errorf("%w: %s is not in the local range", ErrInvalidPlan, shortHash(s.Hash))
		}
		delete(want, s.Hash)
	}
	return nil
}

// validatePlan checks a chronological plan: something must be kept and
// every fixup needs an older commit that survives to squash into.
func validatePlan(chron []PlanStep) error {
	kept := false
	for _, s := range chron {
		switch s.Intent {
		case Fixup:
			if !kept {
				return fmt.Errorf("%w: fixup %s has no commit to squash into", ErrInvalidPlan, shortHash(s.Hash))
			}
		case Keep:
			kept = true
		}
	}
	if !kept {
		return fmt.Errorf("%w: every commit is dropped", ErrInvalidPlan)
	}
	return nil
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
