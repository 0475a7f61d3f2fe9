package patch

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned for diff text that cannot be parsed, or for
	// hunk/line indexes that do not exist in the parsed diff.
	ErrMalformed = errors.New("malformed diff")

	// ErrPatchConflict is returned when a patch built from a diff snapshot
	// no longer applies to the current index or work tree.
	ErrPatchConflict = errors.New("patch does not apply")

	// ErrNotAChange is returned when a line patch targets a context line.
	ErrNotAChange = errors.New("line is not a change")

	// ErrBinary is returned when a partial patch is requested for a binary file.
	ErrBinary = errors.New("binary file")
)

// NoNewlineMarker is the marker git emits after a line lacking a final newline.
const NoNewlineMarker = `\ No newline at end of file`

// LineKind is the kind of a diff line.
type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
)

// Prefix returns the character that starts a line of this kind in a hunk.
func (k LineKind) Prefix() string {
	switch k {
	case Added:
		return "+"
	case Removed:
		return "-"
	default:
		return " "
	}
}

// Line is a single line of a hunk. OldNum and NewNum are 1-based and zero
// when the line does not exist on that side.
type Line struct {
	Kind      LineKind
	OldNum    int
	NewNum    int
	Text      string
	NoNewline bool
}

// IsChange reports whether the line is an addition or a removal.
func (l Line) IsChange() bool {
	return l.Kind != Context
}

// Hunk is a contiguous block of changes with its header ranges.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Section  string
	Lines    []Line
}

// Header renders the "@@ -a,b +c,d @@" line of the hunk.
func (h *Hunk) Header() string {
	header := "@@ -" + formatRange(h.OldStart, h.OldLines) + " +" + formatRange(h.NewStart, h.NewLines) + " @@"
	if h.Section != "" {
		header += " " + h.Section
	}
	return header
}

// Changes returns the number of added and removed lines in the hunk.
func (h *Hunk) Changes() int {
	n := 0
	for _, l := range h.Lines {
		if l.IsChange() {
			n++
		}
	}
	return n
}

// Diff is the parsed diff of a single file.
type Diff struct {
	OldPath string
	NewPath string

	// Mode is the file mode from a "new file mode" or "deleted file mode"
	// header line.
	Mode string

	IsNew     bool
	IsDeleted bool
	IsBinary  bool
	IsRename  bool

	// Header holds the raw header lines preceding the first hunk.
	Header []string

	Hunks []Hunk
}

// Path returns the path the diff refers to in the work tree.
func (d *Diff) Path() string {
	if d.IsDeleted || d.NewPath == "" {
		return d.OldPath
	}
	return d.NewPath
}

// Row addresses a display row of a diff: a hunk header (Line == -1) or a
// line inside a hunk.
type Row struct {
	Hunk int
	Line int
}

// Rows lists the display rows of the diff in order.
func (d *Diff) Rows() []Row {
	var rows []Row
	for hi := range d.Hunks {
		rows = append(rows, Row{Hunk: hi, Line: -1})
		for li := range d.Hunks[hi].Lines {
			rows = append(rows, Row{Hunk: hi, Line: li})
		}
	}
	return rows
}

// RowCount returns the number of display rows.
func (d *Diff) RowCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, h := range d.Hunks {
		n += 1 + len(h.Lines)
	}
	return n
}

// Locate maps a display row to a hunk and line index.
func (d *Diff) Locate(row int) (Row, bool) {
	if d == nil || row < 0 {
		return Row{}, false
	}
	for hi, h := range d.Hunks {
		if row == 0 {
			return Row{Hunk: hi, Line: -1}, true
		}
		row--
		if row < len(h.Lines) {
			return Row{Hunk: hi, Line: row}, true
		}
		row -= len(h.Lines)
	}
	return Row{}, false
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@ ?(.*)$`)

// Parse parses unified diff text, which may describe several files.
func Parse(text string) ([]*Diff, error) {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var diffs []*Diff
	var cur *Diff
	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "diff --git "):
			cur = &Diff{Mode: "100644"}
			cur.OldPath, cur.NewPath = parseGitPaths(strings.TrimPrefix(line, "diff --git "))
			cur.Header = append(cur.Header, line)
			diffs = append(diffs, cur)
			i++
		case strings.HasPrefix(line, "@@"):
			if cur == nil {
				return nil, fmt.Errorf("%w: hunk before file header", ErrMalformed)
			}
			hunk, next, err := parseHunk(lines, i)
			if err != nil {
				return nil, err
			}
			if n := len(cur.Hunks); n > 0 {
				prev := cur.Hunks[n-1]
				if hunk.OldStart < prev.OldStart+prev.OldLines {
					return nil, fmt.Errorf("%w: overlapping hunks in %s", ErrMalformed, cur.Path())
				}
			}
			cur.Hunks = append(cur.Hunks, hunk)
			i = next
		default:
			if cur == nil {
				// Preamble such as commit headers from "git show".
				i++
				continue
			}
			if len(cur.Hunks) > 0 {
				return nil, fmt.Errorf("%w: unexpected line %q", ErrMalformed, line)
			}
			parseHeaderLine(cur, line)
			cur.Header = append(cur.Header, line)
			i++
		}
	}
	return diffs, nil
}

// ParseFile parses diff text describing exactly one file.
func ParseFile(text string) (*Diff, error) {
	diffs, err := Parse(text)
	if err != nil {
		return nil, err
	}
	if len(diffs) != 1 {
		return nil, fmt.Errorf("%w: expected one file, got %d", ErrMalformed, len(diffs))
	}
	return diffs[0], nil
}

func parseHeaderLine(d *Diff, line string) {
	switch {
	case strings.HasPrefix(line, "new file mode "):
		d.IsNew = true
		d.Mode = strings.TrimPrefix(line, "new file mode ")
	case strings.HasPrefix(line, "deleted file mode "):
		d.IsDeleted = true
		d.Mode = strings.TrimPrefix(line, "deleted file mode ")
	case strings.HasPrefix(line, "rename from "):
		d.IsRename = true
		d.OldPath = strings.TrimPrefix(line, "rename from ")
	case strings.HasPrefix(line, "rename to "):
		d.IsRename = true
		d.NewPath = strings.TrimPrefix(line, "rename to ")
	case strings.HasPrefix(line, "--- "):
		name := strings.TrimPrefix(line, "--- ")
		if name == "/dev/null" {
			d.IsNew = true
		} else {
			d.OldPath = strings.TrimPrefix(name, "a/")
		}
	case strings.HasPrefix(line, "+++ "):
		name := strings.TrimPrefix(line, "+++ ")
		if name == "/dev/null" {
			d.IsDeleted = true
		} else {
			d.NewPath = strings.TrimPrefix(name, "b/")
		}
	case strings.HasPrefix(line, "Binary files "), line == "GIT binary patch":
		d.IsBinary = true
	}
}

// parseGitPaths splits the "a/x b/y" part of a "diff --git" line.
func parseGitPaths(rest string) (string, string) {
	// Identical paths are the common case and tolerate spaces in names.
	if n := len(rest); n > 5 && (n-5)%2 == 0 {
		half := (n - 5) / 2
		oldName, newName := rest[2:2+half], rest[len(rest)-half:]
		if strings.HasPrefix(rest, "a/") && rest[2+half:2+half+3] == " b/" && oldName == newName {
			return oldName, newName
		}
	}
	if idx := strings.LastIndex(rest, " b/"); idx >= 0 {
		return strings.TrimPrefix(rest[:idx], "a/"), rest[idx+3:]
	}
	return rest, rest
}

func parseHunk(lines []string, i int) (Hunk, int, error) {
	m := hunkHeaderRe.FindStringSubmatch(lines[i])
	if m == nil {
		return Hunk{}, 0, fmt.Errorf("%w: bad hunk header %q", ErrMalformed, lines[i])
	}
	h := Hunk{
		OldStart: atoi(m[1]),
		OldLines: atoiDefault(m[2], 1),
		NewStart: atoi(m[3]),
		NewLines: atoiDefault(m[4], 1),
		Section:  m[5],
	}

	oldLeft, newLeft := h.OldLines, h.NewLines
	oldNum, newNum := h.OldStart, h.NewStart
	i++
	for i < len(lines) && (oldLeft > 0 || newLeft > 0) {
		line := lines[i]
		if strings.HasPrefix(line, `\`) {
			if n := len(h.Lines); n > 0 {
				h.Lines[n-1].NoNewline = true
			}
			i++
			continue
		}
		kind, text := Context, ""
		if line != "" {
			text = line[1:]
			switch line[0] {
			case ' ':
			case '+':
				kind = Added
			case '-':
				kind = Removed
			default:
				return Hunk{}, 0, fmt.Errorf("%w: unexpected hunk line %q", ErrMalformed, line)
			}
		}
		switch kind {
		case Context:
			h.Lines = append(h.Lines, Line{Kind: Context, OldNum: oldNum, NewNum: newNum, Text: text})
			oldNum++
			newNum++
			oldLeft--
			newLeft--
		case Added:
			h.Lines = append(h.Lines, Line{Kind: Added, NewNum: newNum, Text: text})
			newNum++
			newLeft--
		case Removed:
			h.Lines = append(h.Lines, Line{Kind: Removed, OldNum: oldNum, Text: text})
			oldNum++
			oldLeft--
		}
		if oldLeft < 0 || newLeft < 0 {
			return Hunk{}, 0, fmt.Errorf("%w: hunk %s exceeds its header", ErrMalformed, h.Header())
		}
		i++
	}
	if oldLeft > 0 || newLeft > 0 {
		return Hunk{}, 0, fmt.Errorf("%w: truncated hunk %s", ErrMalformed, h.Header())
	}
	if i < len(lines) && strings.HasPrefix(lines[i], `\`) {
		if n := len(h.Lines); n > 0 {
			h.Lines[n-1].NoNewline = true
		}
		i++
	}
	return h, i, nil
}

func formatRange(start, count int) string {
	if count == 1 {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "," + strconv.Itoa(count)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}
