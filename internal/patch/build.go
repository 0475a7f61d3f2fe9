package patch

import (
	"fmt"
	"strings"
)

// Direction selects which surface a patch is built for.
type Direction int

const (
	// Stage applies an unstaged change to the index.
	Stage Direction = iota
	// Unstage removes a staged change from the index.
	Unstage
	// Discard removes an unstaged change from the work tree.
	Discard
)

func (d Direction) String() string {
	switch d {
	case Stage:
		return "stage"
	case Unstage:
		return "unstage"
	case Discard:
		return "discard"
	default:
		return "unknown"
	}
}

// Reverse reports whether the patch must be applied in reverse. Unstage and
// Discard patches are built from the side that matches the current content
// (the new side) and undo the change.
func (d Direction) Reverse() bool {
	return d != Stage
}

// Inverse returns the direction that undoes d on the same surface.
// Discard has no inverse direction of its own: re-applying a discarded
// patch forward onto the work tree is expressed as Stage on the work tree.
func (d Direction) Inverse() Direction {
	if d == Stage {
		return Unstage
	}
	return Stage
}

// BuildHunkPatch renders a patch containing the file header and the hunk at
// hunkIndex, copied verbatim.
func BuildHunkPatch(d *Diff, hunkIndex int, dir Direction) (string, error) {
	if d == nil {
		return "", fmt.Errorf("%w: no diff", ErrMalformed)
	}
	if d.IsBinary {
		return "", fmt.Errorf("%w: %s", ErrBinary, d.Path())
	}
	if hunkIndex < 0 || hunkIndex >= len(d.Hunks) {
		return "", fmt.Errorf("%w: hunk %d out of range", ErrMalformed, hunkIndex)
	}
	h := d.Hunks[hunkIndex]

	var b strings.Builder
	writeFileHeader(&b, d, h.OldLines == 0, h.NewLines == 0)
	b.WriteString(h.Header())
	b.WriteByte('\n')
	for _, l := range h.Lines {
		writeLine(&b, l.Kind, l)
	}
	return b.String(), nil
}

// BuildLinePatch renders a patch that applies only the change at lineIndex
// of hunk hunkIndex. When that change is the only one left in the hunk the
// whole-hunk patch is returned instead.
func BuildLinePatch(d *Diff, hunkIndex, lineIndex int, dir Direction) (string, error) {
	if d == nil {
		return "", fmt.Errorf("%w: no diff", ErrMalformed)
	}
	if d.IsBinary {
		return "", fmt.Errorf("%w: %s", ErrBinary, d.Path())
	}
	if hunkIndex < 0 || hunkIndex >= len(d.Hunks) {
		return "", fmt.Errorf("%w: hunk %d out of range", ErrMalformed, hunkIndex)
	}
	h := d.Hunks[hunkIndex]
	if lineIndex < 0 || lineIndex >= len(h.Lines) {
		return "", fmt.Errorf("%w: line %d out of range", ErrMalformed, lineIndex)
	}
	target := h.Lines[lineIndex]
	if !target.IsChange() {
		return "", ErrNotAChange
	}
	if h.Changes() == 1 {
		return BuildHunkPatch(d, hunkIndex, dir)
	}

	// For a forward patch every old line must survive, so unselected
	// removals stay as context and unselected additions are dropped.
	// Reverse patches keep every new line instead.
	keep, drop := Removed, Added
	if dir.Reverse() {
		keep, drop = Added, Removed
	}

	type emitted struct {
		kind LineKind
		line Line
	}
	var out []emitted
	oldCount, newCount := 0, 0
	for i, l := range h.Lines {
		kind := l.Kind
		if i != lineIndex {
			switch l.Kind {
			case keep:
				kind = Context
			case drop:
				continue
			}
		}
		switch kind {
		case Context:
			oldCount++
			newCount++
		case Added:
			newCount++
		case Removed:
			oldCount++
		}
		out = append(out, emitted{kind: kind, line: l})
	}

	rebuilt := Hunk{OldLines: oldCount, NewLines: newCount, Section: h.Section}
	if dir.Reverse() {
		rebuilt.NewStart = h.NewStart
		rebuilt.OldStart = alignStart(h.NewStart, newCount, oldCount)
	} else {
		rebuilt.OldStart = h.OldStart
		rebuilt.NewStart = alignStart(h.OldStart, oldCount, newCount)
	}

	var b strings.Builder
	writeFileHeader(&b, d, oldCount == 0, newCount == 0)
	b.WriteString(rebuilt.Header())
	b.WriteByte('\n')
	for _, e := range out {
		writeLine(&b, e.kind, e.line)
	}
	return b.String(), nil
}

// alignStart returns the start of the side that is not matched against the
// target surface. A single-hunk patch has no offset, except that an empty
// range starts at the line before the change.
func alignStart(start, count, otherCount int) int {
	switch {
	case count == 0 && otherCount > 0:
		return start + 1
	case otherCount == 0 && count > 0:
		return start - 1
	default:
		return start
	}
}

// writeFileHeader writes a git header for the diff. The old side is
// /dev/null only for a new file whose patch has no old lines, and the new
// side is /dev/null only for a deleted file whose patch keeps no new lines.
// Everything else is rendered as a modification of an existing file.
func writeFileHeader(b *strings.Builder, d *Diff, oldEmpty, newEmpty bool) {
	oldPath, newPath := d.OldPath, d.NewPath
	if oldPath == "" {
		oldPath = newPath
	}
	if newPath == "" {
		newPath = oldPath
	}
	created := d.IsNew && oldEmpty
	deleted := d.IsDeleted && newEmpty

	fmt.Fprintf(b, "diff --git a/%s b/%s\n", oldPath, newPath)
	switch {
	case created:
		fmt.Fprintf(b, "new file mode %s\n", d.Mode)
	case deleted:
		fmt.Fprintf(b, "deleted file mode %s\n", d.Mode)
	}
	if d.IsRename && oldPath != newPath {
		fmt.Fprintf(b, "rename from %s\nrename to %s\n", oldPath, newPath)
	}
	if created {
		b.WriteString("--- /dev/null\n")
	} else {
		fmt.Fprintf(b, "--- a/%s\n", oldPath)
	}
	if deleted {
		b.WriteString("+++ /dev/null\n")
	} else {
		fmt.Fprintf(b, "+++ b/%s\n", newPath)
	}
}

func writeLine(b *strings.Builder, kind LineKind, l Line) {
	b.WriteString(kind.Prefix())
	b.WriteString(l.Text)
	b.WriteByte('\n')
	if l.NoNewline {
		b.WriteString(NoNewlineMarker)
		b.WriteByte('\n')
	}
}
