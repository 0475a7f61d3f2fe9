package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/henri123lemoine/grain/internal/config"
)

// KeyMap defines all keybindings.
type KeyMap struct {
	// Navigation
	Up           key.Binding
	Down         key.Binding
	Home         key.Binding
	End          key.Binding
	DiffDown     key.Binding
	DiffUp       key.Binding
	PageDown     key.Binding
	PageUp       key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	Left         key.Binding
	Right        key.Binding
	Switch       key.Binding
	Find         key.Binding

	// Staging
	Stage       key.Binding
	StageLine   key.Binding
	Discard     key.Binding
	DiscardLine key.Binding
	Ignore      key.Binding
	StageAll    key.Binding
	UnstageAll  key.Binding
	Undo        key.Binding
	Redo        key.Binding

	// Commits
	Amend    key.Binding
	Reorder  key.Binding
	SwapUp   key.Binding
	SwapDown key.Binding
	Fixup    key.Binding
	Drop     key.Binding
	Reword   key.Binding

	// General
	Confirm key.Binding
	Cancel  key.Binding
	Edit    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMapFromConfig(&config.DefaultConfig().Keys)
}

// KeyMapFromConfig creates a KeyMap from config settings. Empty settings
// keep the default binding.
func KeyMapFromConfig(cfg *config.KeysConfig) KeyMap {
	def := config.DefaultConfig().Keys
	bind := func(setting, fallback, help string) key.Binding {
		if strings.TrimSpace(setting) == "" {
			setting = fallback
		}
		keys := parseKeys(setting)
		return key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(helpKeys(keys), help),
		)
	}

	return KeyMap{
		Up:           bind(cfg.Up, def.Up, "previous item"),
		Down:         bind(cfg.Down, def.Down, "next item"),
		Home:         bind(cfg.Home, def.Home, "first item"),
		End:          bind(cfg.End, def.End, "last item"),
		DiffDown:     bind(cfg.DiffDown, def.DiffDown, "next diff line"),
		DiffUp:       bind(cfg.DiffUp, def.DiffUp, "previous diff line"),
		PageDown:     bind(cfg.PageDown, def.PageDown, "page down"),
		PageUp:       bind(cfg.PageUp, def.PageUp, "page up"),
		HalfPageDown: bind(cfg.HalfPageDown, def.HalfPageDown, "half page down"),
		HalfPageUp:   bind(cfg.HalfPageUp, def.HalfPageUp, "half page up"),
		Left:         bind(cfg.Left, def.Left, "scroll left"),
		Right:        bind(cfg.Right, def.Right, "scroll right"),
		Switch:       bind(cfg.Switch, def.Switch, "switch screen"),
		Find:         bind(cfg.Find, def.Find, "jump to file"),
		Stage:        bind(cfg.Stage, def.Stage, "stage/unstage file or hunk"),
		StageLine:    bind(cfg.StageLine, def.StageLine, "stage/unstage line"),
		Discard:      bind(cfg.Discard, def.Discard, "discard file or hunk"),
		DiscardLine:  bind(cfg.DiscardLine, def.DiscardLine, "discard line"),
		Ignore:       bind(cfg.Ignore, def.Ignore, "ignore untracked file"),
		StageAll:     bind(cfg.StageAll, def.StageAll, "stage everything"),
		UnstageAll:   bind(cfg.UnstageAll, def.UnstageAll, "unstage everything"),
		Undo:         bind(cfg.Undo, def.Undo, "undo"),
		Redo:         bind(cfg.Redo, def.Redo, "redo"),
		Amend:        bind(cfg.Amend, def.Amend, "amend HEAD / reword commit"),
		Reorder:      bind(cfg.Reorder, def.Reorder, "reorder local commits"),
		SwapUp:       bind(cfg.SwapUp, def.SwapUp, "move commit up"),
		SwapDown:     bind(cfg.SwapDown, def.SwapDown, "move commit down"),
		Fixup:        bind(cfg.Fixup, def.Fixup, "toggle fixup"),
		Drop:         bind(cfg.Drop, def.Drop, "toggle drop"),
		Reword:       bind(cfg.Reword, def.Reword, "edit message"),
		Confirm:      bind(cfg.Confirm, def.Confirm, "confirm"),
		Cancel:       bind(cfg.Cancel, def.Cancel, "cancel"),
		Edit:         bind(cfg.Edit, def.Edit, "open in editor"),
		Refresh:      bind(cfg.Refresh, def.Refresh, "refresh"),
		Help:         bind(cfg.Help, def.Help, "help"),
		Quit:         bind(cfg.Quit, def.Quit, "quit"),
	}
}

// parseKeys parses a comma-separated list of keys. "space" names the
// space bar, which bubbletea reports as " ".
func parseKeys(s string) []string {
	parts := strings.Split(s, ",")
	var keys []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "space" {
			p = " "
		}
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

func helpKeys(keys []string) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		names[i] = k
	}
	return strings.Join(names, "/")
}
