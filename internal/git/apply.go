package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/henri123lemoine/grain/internal/patch"
)

// ApplyPatch applies patch text to the index or the work tree. Unstage and
// Discard patches are applied in reverse. A rejected patch is reported as
// patch.ErrPatchConflict and leaves the target untouched.
func (c *CLI) ApplyPatch(text string, target Target, dir patch.Direction) error {
	args := []string{"apply", "--unidiff-zero", "--whitespace=nowarn"}
	if target == Index {
		args = append(args, "--cached")
	}
	if dir.Reverse() {
		args = append(args, "--reverse")
	}
	args = append(args, "-")

	if _, err := runGitInput(c.repo.Root, text, args...); err != nil {
		return fmt.Errorf("%w: %s %s: %w", patch.ErrPatchConflict, dir, target, err)
	}
	return nil
}

// StagePath stages every change of path, including untracked files and
// deletions.
func (c *CLI) StagePath(path string) error {
	_, err := c.run("add", "-A", "--", path)
	return err
}

// UnstageNew removes a newly added path from the index, keeping the file.
func (c *CLI) UnstageNew(path string) error {
	_, err := c.run("rm", "-q", "--cached", "--", path)
	return err
}

// AddAll stages tracked changes and untracked files below the size limit.
func (c *CLI) AddAll() error {
	if _, err := c.run("add", "-u"); err != nil {
		return err
	}
	st, err := c.Status()
	if err != nil {
		return err
	}

	var paths []string
	for _, e := range st.Untracked {
		if c.untrackedMaxBytes > 0 {
			info, err := os.Lstat(filepath.Join(c.repo.Root, e.Path))
			if err != nil || info.Size() > c.untrackedMaxBytes {
				continue
			}
		}
		paths = append(paths, e.Path)
	}
	if len(paths) == 0 {
		return nil
	}
	_, err = c.run(append([]string{"add", "--"}, paths...)...)
	return err
}

// Ignore appends path to the repository's .gitignore.
func (c *CLI) Ignore(path string) error {
	data, _, err := c.ReadFile(".gitignore")
	if err != nil {
		return err
	}
	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += path + "\n"
	return c.WriteFile(".gitignore", []byte(content))
}

// DeleteUntracked removes an untracked file from the work tree.
func (c *CLI) DeleteUntracked(path string) error {
	if err := os.Remove(filepath.Join(c.repo.Root, path)); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrBackend, path, err)
	}
	return nil
}

// ReadIndexEntry parses "git ls-files -s" for path.
func (c *CLI) ReadIndexEntry(path string) (IndexEntry, bool, error) {
	output, err := c.run("ls-files", "-s", "--", path)
	if err != nil {
		return IndexEntry{}, false, err
	}
	line, _, _ := strings.Cut(output, "\n")
	if strings.TrimSpace(line) == "" {
		return IndexEntry{}, false, nil
	}
	meta, _, _ := strings.Cut(line, "\t")
	fields := strings.Fields(meta)
	if len(fields) < 2 {
		return IndexEntry{}, false, fmt.Errorf("%w: unexpected ls-files output %q", ErrBackend, line)
	}
	return IndexEntry{Mode: fields[0], Blob: fields[1]}, true, nil
}

// RestoreIndexEntry writes entry for path into the index without touching
// the work tree. When present is false the path leaves the index.
func (c *CLI) RestoreIndexEntry(path string, entry IndexEntry, present bool) error {
	if !present {
		_, err := c.run("update-index", "--force-remove", "--", path)
		return err
	}
	_, err := c.run("update-index", "--add", "--cacheinfo", entry.Mode+","+entry.Blob+","+path)
	return err
}

// ReadFile reads a work tree file. A missing file is not an error.
func (c *CLI) ReadFile(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(c.repo.Root, path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// WriteFile writes a work tree file, creating parent directories.
func (c *CLI) WriteFile(path string, data []byte) error {
	full := filepath.Join(c.repo.Root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0644)
}
