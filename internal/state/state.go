// Package state holds the in-memory snapshot of the repository: changed
// files with their parsed diffs and the commit log.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/henri123lemoine/grain/internal/debug"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/patch"
)

// FileEntry is a changed file. Diff is nil for binary files and for
// changes git reports without hunks.
type FileEntry struct {
	Path   string
	Status git.FileStatus
	Diff   *patch.Diff
}

// Lines returns the number of diff rows of the file.
func (f FileEntry) Lines() int {
	return f.Diff.RowCount()
}

// Repository is a snapshot of the repository. It is never updated in
// place: every mutation is followed by a fresh Load.
type Repository struct {
	Staged    []FileEntry
	Unstaged  []FileEntry
	Untracked []FileEntry
	Commits   []git.Commit
	Head      string

	commitDiffs map[string][]*patch.Diff
}

// Load queries the backend for a complete snapshot.
func Load(b git.Backend, logLimit int) (*Repository, error) {
	defer debug.Timed("load repository state")()

	st, err := b.Status()
	if err != nil {
		return nil, err
	}
	head, err := b.Head()
	if err != nil {
		return nil, err
	}
	commits, err := b.Log(logLimit)
	if err != nil {
		return nil, err
	}

	r := &Repository{Head: head, Commits: commits}
	if r.Staged, err = loadFiles(b, st.Staged, git.DiffRequest{Staged: true}); err != nil {
		return nil, err
	}
	if r.Unstaged, err = loadFiles(b, st.Unstaged, git.DiffRequest{}); err != nil {
		return nil, err
	}
	if r.Untracked, err = loadFiles(b, st.Untracked, git.DiffRequest{Untracked: true}); err != nil {
		return nil, err
	}
	return r, nil
}

func loadFiles(b git.Backend, entries []git.StatusEntry, req git.DiffRequest) ([]FileEntry, error) {
	files := make([]FileEntry, 0, len(entries))
	for _, e := range entries {
		req.Path = e.Path
		text, err := b.Diff(req)
		if err != nil {
			if errors.Is(err, patch.ErrPatchConflict) {
				// Vanished between status and diff; the next refresh settles it.
				debug.Log("skip %s: %v", e.Path, err)
				continue
			}
			return nil, err
		}
		files = append(files, FileEntry{Path: e.Path, Status: e.Status, Diff: parseDiff(e.Path, text)})
	}
	return files, nil
}

func parseDiff(path, text string) *patch.Diff {
	if text == "" {
		return nil
	}
	d, err := patch.ParseFile(text)
	if err != nil {
		debug.Log("parse diff of %s: %v", path, err)
		return nil
	}
	if d.IsBinary {
		return nil
	}
	return d
}

// UnstagedScreenFiles returns unstaged tracked files followed by untracked
// files.
func (r *Repository) UnstagedScreenFiles() []FileEntry {
	files := make([]FileEntry, 0, len(r.Unstaged)+len(r.Untracked))
	files = append(files, r.Unstaged...)
	return append(files, r.Untracked...)
}

// FindStaged returns the staged entry for path.
func (r *Repository) FindStaged(path string) (FileEntry, bool) {
	return find(r.Staged, path)
}

// FindUnstaged returns the unstaged or untracked entry for path.
func (r *Repository) FindUnstaged(path string) (FileEntry, bool) {
	if f, ok := find(r.Unstaged, path); ok {
		return f, true
	}
	return find(r.Untracked, path)
}

// HasUnstagedChanges reports whether path differs between index and work
// tree.
func (r *Repository) HasUnstagedChanges(path string) bool {
	_, ok := r.FindUnstaged(path)
	return ok
}

func find(files []FileEntry, path string) (FileEntry, bool) {
	for _, f := range files {
		if f.Path == path {
			return f, true
		}
	}
	return FileEntry{}, false
}

// LocalCommits returns the commits not yet on a remote, newest first.
func (r *Repository) LocalCommits() []git.Commit {
	for i, c := range r.Commits {
		if c.OnRemote {
			return r.Commits[:i]
		}
	}
	return r.Commits
}

// CommitIndex returns the log position of hash, or -1.
func (r *Repository) CommitIndex(hash string) int {
	for i, c := range r.Commits {
		if c.Hash == hash {
			return i
		}
	}
	return -1
}

// CommitDiffs returns the parsed diffs of a commit, loading them once per
// snapshot.
func (r *Repository) CommitDiffs(b git.Backend, hash string) ([]*patch.Diff, error) {
	if diffs, ok := r.commitDiffs[hash]; ok {
		return diffs, nil
	}
	text, err := b.Diff(git.DiffRequest{Commit: hash})
	if err != nil {
		return nil, err
	}
	diffs, err := patch.Parse(text)
	if err != nil {
		return nil, err
	}
	if r.commitDiffs == nil {
		r.commitDiffs = make(map[string][]*patch.Diff)
	}
	r.commitDiffs[hash] = diffs
	return diffs, nil
}

// Fingerprint hashes the observable repository state. Two snapshots with
// the same fingerprint show the same files, diffs and commits.
func (r *Repository) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "head %s\n", r.Head)
	for _, group := range []struct {
		name  string
		files []FileEntry
	}{{"staged", r.Staged}, {"unstaged", r.Unstaged}, {"untracked", r.Untracked}} {
		for _, f := range group.files {
			fmt.Fprintf(h, "%s %s %s\n", group.name, f.Status, f.Path)
			if f.Diff == nil {
				continue
			}
			for _, hunk := range f.Diff.Hunks {
				fmt.Fprintln(h, hunk.Header())
				for _, l := range hunk.Lines {
					fmt.Fprintf(h, "%s%s\n", l.Kind.Prefix(), l.Text)
				}
			}
		}
	}
	for _, c := range r.Commits {
		fmt.Fprintf(h, "commit %s %v\n", c.Hash, c.OnRemote)
	}
	return hex.EncodeToString(h.Sum(nil))
}
