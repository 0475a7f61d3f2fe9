package git

import (
	"strings"
)

// CLI implements Backend by running git in the repository work tree.
type CLI struct {
	repo *Repo

	// untrackedMaxBytes bounds the untracked files that get a synthesized
	// diff or are picked up by AddAll. Zero disables the limit.
	untrackedMaxBytes int64
}

// NewCLI returns a backend for repo.
func NewCLI(repo *Repo, untrackedMaxBytes int64) *CLI {
	return &CLI{repo: repo, untrackedMaxBytes: untrackedMaxBytes}
}

// Repo returns the repository the backend operates on.
func (c *CLI) Repo() *Repo {
	return c.repo
}

func (c *CLI) run(args ...string) (string, error) {
	return runGitInDir(c.repo.Root, args...)
}

// Status lists staged, unstaged and untracked files.
func (c *CLI) Status() (*Status, error) {
	output, err := c.run("status", "--porcelain=v1", "-z", "--untracked-files=all", "--no-renames")
	if err != nil {
		return nil, err
	}
	return parseStatus(output), nil
}

// parseStatus parses "git status --porcelain=v1 -z" output.
func parseStatus(output string) *Status {
	st := &Status{}
	fields := strings.Split(output, "\x00")
	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 {
			continue
		}
		x, y, path := entry[0], entry[1], entry[3:]

		oldPath := ""
		if x == 'R' || x == 'C' {
			// The source path follows as its own field.
			if i+1 < len(fields) {
				oldPath = fields[i+1]
				i++
			}
		}

		switch {
		case x == '?' && y == '?':
			st.Untracked = append(st.Untracked, StatusEntry{Path: path, Status: Untracked})
			continue
		case x == '!':
			continue
		}

		if x != ' ' {
			st.Staged = append(st.Staged, StatusEntry{Path: path, OldPath: oldPath, Status: statusFromCode(x)})
		}
		if y != ' ' {
			st.Unstaged = append(st.Unstaged, StatusEntry{Path: path, Status: statusFromCode(y)})
		}
	}
	return st
}

func statusFromCode(code byte) FileStatus {
	switch code {
	case 'A':
		return Added
	case 'D':
		return Deleted
	case 'R', 'C':
		return Renamed
	default:
		return Modified
	}
}
