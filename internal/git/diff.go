package git

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/henri123lemoine/grain/internal/patch"
)

// binarySniffLen is how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

// Diff returns unified diff text for the request.
func (c *CLI) Diff(req DiffRequest) (string, error) {
	if req.Commit != "" {
		args := []string{"show", "--format=", "--no-color", "--no-ext-diff", "--src-prefix=a/", "--dst-prefix=b/", req.Commit}
		if req.Path != "" {
			args = append(args, "--", req.Path)
		}
		return c.run(args...)
	}
	if req.Untracked {
		return c.untrackedDiff(req.Path)
	}

	args := []string{"diff", "--no-color", "--no-ext-diff", "--no-renames", "--src-prefix=a/", "--dst-prefix=b/"}
	if req.Staged {
		args = append(args, "--cached")
	}
	if req.Binary {
		args = append(args, "--binary")
	}
	if req.Path != "" {
		args = append(args, "--", req.Path)
	}
	return c.run(args...)
}

// untrackedDiff synthesizes the "new file" diff of an untracked file, which
// git diff does not report.
func (c *CLI) untrackedDiff(path string) (string, error) {
	full := filepath.Join(c.repo.Root, path)
	info, err := os.Lstat(full)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", patch.ErrPatchConflict, path, err)
	}

	mode := "100644"
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		mode = "120000"
	case info.Mode()&0o111 != 0:
		mode = "100755"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\nnew file mode %s\n", path, path, mode)

	if c.untrackedMaxBytes > 0 && info.Size() > c.untrackedMaxBytes {
		fmt.Fprintf(&b, "Binary files /dev/null and b/%s differ\n", path)
		return b.String(), nil
	}

	var content []byte
	if mode == "120000" {
		target, err := os.Readlink(full)
		if err != nil {
			return "", err
		}
		content = []byte(target)
	} else {
		content, err = os.ReadFile(full)
		if err != nil {
			return "", err
		}
	}
	if len(content) == 0 {
		return b.String(), nil
	}
	if bytes.IndexByte(content[:min(len(content), binarySniffLen)], 0) >= 0 {
		fmt.Fprintf(&b, "Binary files /dev/null and b/%s differ\n", path)
		return b.String(), nil
	}

	return NewFileDiff(b.String(), path, string(content))
}

// NewFileDiff appends the hunk adding content as a new file to header.
func NewFileDiff(header, path, content string) (string, error) {
	lines, noEOL := splitContent(content)
	ud := difflib.UnifiedDiff{
		B:        lines,
		FromFile: "/dev/null",
		ToFile:   "b/" + path,
		Context:  3,
	}
	body, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", err
	}
	out := header + body
	if noEOL {
		out += patch.NoNewlineMarker + "\n"
	}
	return out, nil
}

// splitContent splits text into newline terminated lines. The last line
// gets a newline added when it has none, which is reported.
func splitContent(content string) ([]string, bool) {
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1], false
	}
	lines[len(lines)-1] += "\n"
	return lines, true
}
