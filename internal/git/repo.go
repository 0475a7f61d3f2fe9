// Package git implements the version-control backend on top of the git
// command line and go-git.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/henri123lemoine/grain/internal/debug"
)

// ErrBackend wraps every failed git invocation.
var ErrBackend = errors.New("git failed")

// ErrNotRepository is returned when no repository encloses the directory.
var ErrNotRepository = errors.New("not a git repository")

// Repo holds repository information.
type Repo struct {
	// Root is the work tree root directory.
	Root string

	// GitDir is the absolute path of the repository's git directory.
	GitDir string

	// Branch is the checked out branch, empty for a detached HEAD.
	Branch string
}

// OpenRepo detects the repository enclosing dir.
func OpenRepo(dir string) (*Repo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	r, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotRepository, abs, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no work tree: %v", ErrNotRepository, abs, err)
	}
	root := wt.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	gitDir, err := runGitInDir(root, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, err
	}

	repo := &Repo{
		Root:   root,
		GitDir: strings.TrimSpace(gitDir),
	}
	if head, err := r.Head(); err == nil && head.Name().IsBranch() {
		repo.Branch = head.Name().Short()
	} else if branch, err := runGitInDir(root, "symbolic-ref", "-q", "--short", "HEAD"); err == nil {
		// Unborn branches have no resolvable HEAD yet.
		repo.Branch = strings.TrimSpace(branch)
	}
	return repo, nil
}

// runGitInDir executes a git command in a specific directory.
func runGitInDir(dir string, args ...string) (string, error) {
	return runGitInput(dir, "", args...)
}

// runGitInput executes a git command with input fed to its stdin.
// Paths are never quoted in the output.
func runGitInput(dir, input string, args ...string) (string, error) {
	defer debug.Timed("git " + strings.Join(args, " "))()

	full := append([]string{"-c", "core.quotepath=false"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = dir
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		debug.Log("git %s failed: %v: %s", strings.Join(args, " "), err, stderr.String())
		return "", fmt.Errorf("%w: git %s: %v: %s", ErrBackend, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
