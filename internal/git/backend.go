package git

import (
	"errors"
	"time"

	"github.com/henri123lemoine/grain/internal/patch"
)

var (
	// ErrEmptyMessage is returned when committing with a blank message.
	ErrEmptyMessage = errors.New("empty commit message")

	// ErrRebaseConflict is returned when a commit plan cannot be replayed.
	// The repository is left as it was before the attempt.
	ErrRebaseConflict = errors.New("rebase conflict")

	// ErrInvalidPlan is returned for plans that do not describe the local
	// commit range or cannot be realized.
	ErrInvalidPlan = errors.New("invalid commit plan")
)

// FileStatus is the change kind of a file.
type FileStatus int

const (
	Modified FileStatus = iota
	Added
	Deleted
	Renamed
	Untracked
)

// String returns the short status tag shown next to a file.
func (s FileStatus) String() string {
	switch s {
	case Modified:
		return "M"
	case Added:
		return "A"
	case Deleted:
		return "D"
	case Renamed:
		return "R"
	case Untracked:
		return "?"
	default:
		return " "
	}
}

// StatusEntry is a changed file reported by Status.
type StatusEntry struct {
	Path    string
	OldPath string
	Status  FileStatus
}

// Status lists the staged, unstaged and untracked files of the work tree.
type Status struct {
	Staged    []StatusEntry
	Unstaged  []StatusEntry
	Untracked []StatusEntry
}

// DiffRequest selects the diff to produce. Commit takes precedence over the
// other fields; an empty Path means every file.
type DiffRequest struct {
	Path      string
	Commit    string
	Staged    bool
	Untracked bool

	// Binary includes binary deltas so the patch can be re-applied.
	Binary bool
}

// Target is the surface a patch is applied to.
type Target int

const (
	Index Target = iota
	WorkTree
)

func (t Target) String() string {
	if t == Index {
		return "index"
	}
	return "work tree"
}

// Intent is what a commit plan does with a commit.
type Intent int

const (
	Keep Intent = iota
	Fixup
	Discard
)

func (i Intent) String() string {
	switch i {
	case Fixup:
		return "fixup"
	case Discard:
		return "drop"
	default:
		return "pick"
	}
}

// PlanStep is one commit of a rebase plan. Message replaces the commit
// message when non-empty.
type PlanStep struct {
	Hash    string
	Intent  Intent
	Message string
}

// IndexEntry is the staged blob of a path.
type IndexEntry struct {
	Mode string
	Blob string
}

// Commit is an entry of the commit log.
type Commit struct {
	Hash     string
	Subject  string
	Message  string
	Author   string
	When     time.Time
	OnRemote bool
}

// ShortHash returns the abbreviated hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// Backend is the version-control surface used by the engine.
type Backend interface {
	Status() (*Status, error)
	Diff(req DiffRequest) (string, error)
	ApplyPatch(text string, target Target, dir patch.Direction) error

	Commit(message string) error
	Amend(message string, includeStaged bool) error
	Reword(hash, message string) error

	// RebasePlan replays the local commit range following steps, given
	// newest first, and returns the new HEAD.
	RebasePlan(steps []PlanStep) (string, error)

	AddAll() error
	Ignore(path string) error
	DeleteUntracked(path string) error

	StagePath(path string) error
	UnstageNew(path string) error
	ReadFile(path string) ([]byte, bool, error)
	WriteFile(path string, data []byte) error

	// ReadIndexEntry reports the index entry of path; present is false
	// for paths missing from the index.
	ReadIndexEntry(path string) (entry IndexEntry, present bool, err error)
	// RestoreIndexEntry sets the index entry of path, or removes path
	// from the index when present is false.
	RestoreIndexEntry(path string, entry IndexEntry, present bool) error

	Head() (string, error)
	ResetKeep(rev string) error
	Log(limit int) ([]Commit, error)
}
