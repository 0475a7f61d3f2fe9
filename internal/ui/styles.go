package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("4")   // Blue
	ColorSecondary = lipgloss.Color("8")   // Gray
	ColorSuccess   = lipgloss.Color("2")   // Green
	ColorWarning   = lipgloss.Color("3")   // Yellow
	ColorDanger    = lipgloss.Color("1")   // Red
	ColorMuted     = lipgloss.Color("245") // Light gray
	ColorHighlight = lipgloss.Color("6")   // Cyan
	ColorText      = lipgloss.Color("252") // Light text
	ColorCursorBg  = lipgloss.Color("237") // Dark gray
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	// Header of the focused pane
	ActiveHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorHighlight)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	// Selection of the pane without the diff cursor
	DimSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	PathStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	RemoteStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	// Diff line styles
	AddedStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	RemovedStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	HunkStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	FileHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	GutterStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	CursorLineStyle = lipgloss.NewStyle().
			Background(ColorCursorBg)

	// Reorder plan intents
	FixupStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	DropStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Strikethrough(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	InputStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)
)

// Symbols
const (
	SymbolCursor  = "›"
	SymbolRemote  = "↑"
	SymbolCommit  = "•"
	SymbolDraft   = "✎"
	SymbolDivider = "─"
)
