package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/henri123lemoine/grain/internal/cursor"
	"github.com/henri123lemoine/grain/internal/engine"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/patch"
	"github.com/henri123lemoine/grain/internal/state"
)

// HelpBinding represents a keybinding for help display.
type HelpBinding struct {
	Keys string
	Desc string
}

// HelpSection represents a section of help bindings.
type HelpSection struct {
	Title    string
	Bindings []HelpBinding
}

// Params contains everything needed for rendering.
type Params struct {
	View   engine.View
	Branch string
	Width  int
	Height int

	// Gutter is the width of the line number column of the diff pane.
	Gutter int

	// Input is the rendered text input while the mode edits text.
	Input string

	ShowHelp     bool
	HelpSections []HelpSection
	Warnings     []string
}

// MinWidth is the absolute minimum terminal width we try to support.
const MinWidth = 40

// MinHeight is the absolute minimum terminal height we try to support.
const MinHeight = 8

// chromeLines are the rows around the body: header, two dividers and the
// status line.
const chromeLines = 4

// Layout is the geometry of the two panes.
type Layout struct {
	ListWidth  int
	DiffWidth  int
	BodyHeight int
}

// ComputeLayout splits a terminal of the given size. The diff pane width
// and body height are the engine's viewport.
func ComputeLayout(width, height int) Layout {
	width = max(width, MinWidth)
	height = max(height, MinHeight)
	list := min(max(width/3, 24), 48)
	list = min(list, width-16)
	return Layout{
		ListWidth:  list,
		DiffWidth:  width - list - 1,
		BodyHeight: height - chromeLines,
	}
}

// Render renders the full UI.
func Render(p Params) string {
	p.Width = max(p.Width, MinWidth)
	p.Height = max(p.Height, MinHeight)
	l := ComputeLayout(p.Width, p.Height)

	if p.ShowHelp {
		return renderHelp(p)
	}

	var b strings.Builder
	b.WriteString(renderHeader(p) + "\n")
	b.WriteString(DividerStyle.Render(strings.Repeat(SymbolDivider, p.Width)) + "\n")

	list := renderList(p, l)
	diff := renderDiff(p, l)
	sep := DividerStyle.Render("│")
	for i := 0; i < l.BodyHeight; i++ {
		b.WriteString(pad(list[i], l.ListWidth) + sep + diff[i] + "\n")
	}

	b.WriteString(DividerStyle.Render(strings.Repeat(SymbolDivider, p.Width)) + "\n")
	b.WriteString(renderStatus(p))
	return b.String()
}

func renderHeader(p Params) string {
	v := p.View
	screen := "MAIN"
	if v.Focus == cursor.Unstaged {
		screen = "UNSTAGED"
	}
	parts := []string{TitleStyle.Render("grain")}
	if p.Branch != "" {
		parts = append(parts, PathStyle.Render(p.Branch))
	}
	parts = append(parts, ActiveHeaderStyle.Render(screen))
	if v.Mode != engine.ModeNormal {
		parts = append(parts, WarningStyle.Render(strings.ToUpper(v.Mode.String())))
	}
	if v.Repo != nil {
		counts := fmt.Sprintf("%d staged · %d unstaged · %d untracked",
			len(v.Repo.Staged), len(v.Repo.Unstaged), len(v.Repo.Untracked))
		parts = append(parts, HeaderStyle.Render(counts))
	}
	return ansi.Truncate(strings.Join(parts, "  "), p.Width, "…")
}

// listRow is a row of the list pane. item is the list position it
// belongs to, -1 for section headings.
type listRow struct {
	text string
	item int
	tone tone
}

type tone int

const (
	toneNormal tone = iota
	toneDim
	toneFixup
	toneDrop
)

func (t tone) style() lipgloss.Style {
	switch t {
	case toneDim:
		return RemoteStyle
	case toneFixup:
		return FixupStyle
	case toneDrop:
		return DropStyle
	}
	return NormalStyle
}

func renderList(p Params, l Layout) []string {
	v := p.View
	var rows []listRow
	selected := 0
	switch {
	case v.Mode == engine.ModeReorder || v.Mode == engine.ModeReorderMessage:
		rows = reorderRows(v)
		selected = v.ReorderCursor
	case v.Focus == cursor.Main:
		rows = mainRows(v)
		selected = v.Main.SelectedIndex
	default:
		rows = unstagedRows(v)
		selected = v.Unstaged.SelectedIndex
	}

	cur := v.Main
	if v.Focus == cursor.Unstaged {
		cur = v.Unstaged
	}

	selRow := 0
	for i, r := range rows {
		if r.item == selected {
			selRow = i
			break
		}
	}
	offset := 0
	if selRow >= l.BodyHeight {
		offset = selRow - l.BodyHeight + 1
	}

	out := make([]string, l.BodyHeight)
	for i := range out {
		idx := offset + i
		if idx >= len(rows) {
			break
		}
		r := rows[idx]
		switch {
		case r.item < 0:
			out[i] = HeaderStyle.Render(ansi.Truncate(r.text, l.ListWidth, "…"))
		case r.item == selected:
			text := ansi.Truncate(SymbolCursor+" "+r.text, l.ListWidth, "…")
			if cur.DiffCursorActive {
				out[i] = DimSelectedStyle.Render(text)
			} else {
				out[i] = SelectedStyle.Render(text)
			}
		default:
			out[i] = r.tone.style().Render(ansi.Truncate("  "+r.text, l.ListWidth, "…"))
		}
	}
	return out
}

func fileRow(f state.FileEntry, item int) listRow {
	return listRow{text: f.Status.String() + " " + f.Path, item: item}
}

func mainRows(v engine.View) []listRow {
	if v.Repo == nil {
		return nil
	}
	var rows []listRow
	rows = append(rows, listRow{text: "STAGED (" + strconv.Itoa(len(v.Repo.Staged)) + ")", item: -1})
	for i, f := range v.Repo.Staged {
		rows = append(rows, fileRow(f, i))
	}

	input := len(v.Repo.Staged)
	draft := firstLine(v.CommitDraft)
	if draft == "" {
		draft = "commit message"
	}
	t := toneNormal
	if v.CommitDraft == "" {
		t = toneDim
	}
	rows = append(rows, listRow{text: SymbolDraft + " " + draft, item: input, tone: t})

	rows = append(rows, listRow{text: "COMMITS", item: -1})
	for i, c := range v.Repo.Commits {
		rows = append(rows, commitRow(c, input+1+i))
	}
	return rows
}

func commitRow(c git.Commit, item int) listRow {
	marker, t := SymbolCommit, toneNormal
	if c.OnRemote {
		marker, t = SymbolRemote, toneDim
	}
	return listRow{text: marker + " " + c.ShortHash() + " " + c.Subject, item: item, tone: t}
}

func unstagedRows(v engine.View) []listRow {
	if v.Repo == nil {
		return nil
	}
	var rows []listRow
	rows = append(rows, listRow{text: "UNSTAGED (" + strconv.Itoa(len(v.Repo.Unstaged)) + ")", item: -1})
	for i, f := range v.Repo.Unstaged {
		rows = append(rows, fileRow(f, i))
	}
	rows = append(rows, listRow{text: "UNTRACKED (" + strconv.Itoa(len(v.Repo.Untracked)) + ")", item: -1})
	for i, f := range v.Repo.Untracked {
		rows = append(rows, fileRow(f, len(v.Repo.Unstaged)+i))
	}
	return rows
}

func reorderRows(v engine.View) []listRow {
	rows := []listRow{{text: "REORDER (" + strconv.Itoa(len(v.ReorderPlan)) + ")", item: -1}}
	for i, e := range v.ReorderPlan {
		text := fmt.Sprintf("%-5s %s %s", e.Intent, e.Commit.ShortHash(), firstLine(e.DisplayMessage()))
		t := toneNormal
		switch e.Intent {
		case git.Fixup:
			t = toneFixup
		case git.Discard:
			t = toneDrop
		}
		rows = append(rows, listRow{text: text, item: i, tone: t})
	}
	return rows
}

// diffRow is a display row of the diff pane.
type diffRow struct {
	kind   rowKind
	gutter string
	text   string
}

type rowKind int

const (
	rowContext rowKind = iota
	rowAdded
	rowRemoved
	rowHunk
	rowFile
	rowNote
)

// fileDiffRows lists the rows of a file diff, one per engine line.
func fileDiffRows(d *patch.Diff) []diffRow {
	var rows []diffRow
	for _, h := range d.Hunks {
		rows = append(rows, diffRow{kind: rowHunk, text: h.Header()})
		for _, l := range h.Lines {
			kind := rowContext
			switch l.Kind {
			case patch.Added:
				kind = rowAdded
			case patch.Removed:
				kind = rowRemoved
			}
			rows = append(rows, diffRow{
				kind:   kind,
				gutter: lineNumbers(l),
				text:   l.Kind.Prefix() + l.Text,
			})
		}
	}
	return rows
}

func lineNumbers(l patch.Line) string {
	num := func(n int) string {
		if n <= 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%4s %4s", num(l.OldNum), num(l.NewNum))
}

// selectionRows returns the rows shown for the selected item.
func selectionRows(v engine.View) []diffRow {
	sel := v.Selection
	switch sel.Kind {
	case engine.ItemFile:
		if sel.File.Diff == nil {
			return []diffRow{{kind: rowNote, text: "binary file or no textual changes"}}
		}
		return fileDiffRows(sel.File.Diff)
	case engine.ItemCommit:
		var rows []diffRow
		for _, d := range sel.Diffs {
			rows = append(rows, diffRow{kind: rowFile, text: d.Path()})
			rows = append(rows, fileDiffRows(d)...)
		}
		return rows
	case engine.ItemCommitInput:
		if v.CommitDraft == "" {
			return []diffRow{{kind: rowNote, text: "press enter to write a commit message"}}
		}
		var rows []diffRow
		for _, line := range strings.Split(v.CommitDraft, "\n") {
			rows = append(rows, diffRow{kind: rowContext, text: line})
		}
		return rows
	}
	if v.Focus == cursor.Unstaged || v.Repo == nil {
		return []diffRow{{kind: rowNote, text: "nothing to show"}}
	}
	return nil
}

func renderDiff(p Params, l Layout) []string {
	v := p.View
	cur := v.Main
	if v.Focus == cursor.Unstaged {
		cur = v.Unstaged
	}
	rows := selectionRows(v)

	gutter := 0
	if p.Gutter > 0 && p.Gutter < l.DiffWidth/2 {
		gutter = p.Gutter
	}
	textWidth := l.DiffWidth - gutter

	out := make([]string, l.BodyHeight)
	for i := range out {
		idx := cur.VerticalScroll + i
		if idx >= len(rows) {
			out[i] = strings.Repeat(" ", l.DiffWidth)
			continue
		}
		r := rows[idx]

		text := strings.ReplaceAll(r.text, "\t", "    ")
		if r.kind != rowNote && r.kind != rowFile {
			text = ansi.TruncateLeft(text, cur.HorizontalScroll, "")
		}
		text = pad(ansi.Truncate(text, textWidth, ""), textWidth)

		g := ""
		if gutter > 0 {
			g = GutterStyle.Render(pad(ansi.Truncate(r.gutter, gutter-1, ""), gutter))
		}

		line := g + rowStyle(r.kind).Render(text)
		if cur.DiffCursorActive && idx == v.Line {
			line = CursorLineStyle.Render(ansi.Strip(g)) + rowStyle(r.kind).Inherit(CursorLineStyle).Render(text)
		}
		out[i] = line
	}
	return out
}

func rowStyle(k rowKind) lipgloss.Style {
	switch k {
	case rowAdded:
		return AddedStyle
	case rowRemoved:
		return RemovedStyle
	case rowHunk:
		return HunkStyle
	case rowFile:
		return FileHeaderStyle
	case rowNote:
		return PathStyle
	default:
		return NormalStyle
	}
}

func renderStatus(p Params) string {
	v := p.View
	right := HelpStyle.Render(fmt.Sprintf("undo %d · redo %d · ? help", v.UndoDepth, v.RedoDepth))
	if v.Mode == engine.ModeReorder {
		// Plan edits keep their own history until the plan is applied.
		right = HelpStyle.Render("plan " + available("undo", v.ReorderCanUndo) + " · " + available("redo", v.ReorderCanRedo) + " · ? help")
	}

	var left string
	switch {
	case v.Mode.EditsText():
		left = InputStyle.Render(promptFor(v.Mode)) + p.Input
	case v.Err != nil:
		left = ErrorStyle.Render("Error: " + v.Err.Error())
	case len(p.Warnings) > 0:
		left = WarningStyle.Render("Warning: " + p.Warnings[0])
	case v.Mode == engine.ModeReorder:
		left = HelpStyle.Render(compactHelp(
			"K/J move • f fixup • x drop • r reword • u undo • enter apply • esc cancel",
			"K/J•f•x•r•u•enter•esc",
			p.Width,
		))
	case v.Status != "":
		left = PathStyle.Render(v.Status)
	}

	space := p.Width - lipgloss.Width(right) - 1
	if space < 1 {
		return ansi.Truncate(left, p.Width, "…")
	}
	return pad(ansi.Truncate(left, space, "…"), space) + " " + right
}

func available(name string, ok bool) string {
	if ok {
		return name
	}
	return "no " + name
}

func promptFor(m engine.Mode) string {
	switch m {
	case engine.ModeCommitMessage:
		return "commit: "
	case engine.ModeAmendMessage:
		return "amend: "
	case engine.ModeReorderMessage:
		return "reword: "
	case engine.ModeFind:
		return "find: "
	}
	return ""
}

// renderHelp renders the help screen.
func renderHelp(p Params) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("HELP") + "\n")
	b.WriteString(DividerStyle.Render(strings.Repeat(SymbolDivider, p.Width)) + "\n\n")

	for i, section := range p.HelpSections {
		b.WriteString(TitleStyle.Render(section.Title) + "\n")
		for _, binding := range section.Bindings {
			keys := binding.Keys
			if len(keys) < 14 {
				keys += strings.Repeat(" ", 14-len(keys))
			}
			b.WriteString(PathStyle.Render("  "+keys) + " " + binding.Desc + "\n")
		}
		if i < len(p.HelpSections)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + HelpStyle.Render("Press any key to close"))
	return b.String()
}

// compactHelp returns a shortened help string for small terminals.
func compactHelp(full, compact string, width int) string {
	if width >= 100 {
		return full
	}
	return compact
}

// pad right-pads s with spaces to width display cells.
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
