// Package config handles grain configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents grain configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Scroll  ScrollConfig  `toml:"scroll"`
	Draft   DraftConfig   `toml:"draft"`
	Keys    KeysConfig    `toml:"keys"`
}

// GeneralConfig contains general settings.
type GeneralConfig struct {
	// Number of commits shown in the log (0 = unlimited)
	LogLimit int `toml:"log_limit"`

	// Untracked files larger than this are shown as binary and skipped by
	// stage-all (0 = no limit)
	UntrackedMaxBytes int64 `toml:"untracked_max_bytes"`

	// Refresh automatically when files change
	Watch bool `toml:"watch"`

	// Command used to open a file at a line.
	// Template variables: {file}, {line}, {repo}
	// Empty uses $VISUAL / $EDITOR with "+{line} {file}".
	Editor string `toml:"editor"`
}

// ScrollConfig contains horizontal scrolling settings.
type ScrollConfig struct {
	// Columns per horizontal scroll on the main screen (0 = page)
	MainHorizontalStep int `toml:"main_horizontal_step"`

	// Columns per horizontal scroll on the unstaged screen (0 = page)
	UnstagedHorizontalStep int `toml:"unstaged_horizontal_step"`

	// Width of the line-number gutter subtracted from a page scroll
	Gutter int `toml:"gutter"`
}

// DraftConfig contains commit draft settings.
type DraftConfig struct {
	// Directory holding per-repository commit message drafts
	Dir string `toml:"dir"`
}

// KeysConfig contains keybinding settings.
type KeysConfig struct {
	Up           string `toml:"up"`
	Down         string `toml:"down"`
	Home         string `toml:"home"`
	End          string `toml:"end"`
	DiffDown     string `toml:"diff_down"`
	DiffUp       string `toml:"diff_up"`
	PageDown     string `toml:"page_down"`
	PageUp       string `toml:"page_up"`
	HalfPageDown string `toml:"half_page_down"`
	HalfPageUp   string `toml:"half_page_up"`
	Left         string `toml:"left"`
	Right        string `toml:"right"`
	Stage        string `toml:"stage"`
	StageLine    string `toml:"stage_line"`
	Discard      string `toml:"discard"`
	DiscardLine  string `toml:"discard_line"`
	Ignore       string `toml:"ignore"`
	Switch       string `toml:"switch"`
	Undo         string `toml:"undo"`
	Redo         string `toml:"redo"`
	StageAll     string `toml:"stage_all"`
	UnstageAll   string `toml:"unstage_all"`
	Amend        string `toml:"amend"`
	Reorder      string `toml:"reorder"`
	SwapUp       string `toml:"swap_up"`
	SwapDown     string `toml:"swap_down"`
	Fixup        string `toml:"fixup"`
	Drop         string `toml:"drop"`
	Reword       string `toml:"reword"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
	Find         string `toml:"find"`
	Edit         string `toml:"edit"`
	Refresh      string `toml:"refresh"`
	Help         string `toml:"help"`
	Quit         string `toml:"quit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			LogLimit:          200,
			UntrackedMaxBytes: 1 << 20,
			Watch:             false,
			Editor:            "",
		},
		Scroll: ScrollConfig{
			MainHorizontalStep:     8,
			UnstagedHorizontalStep: 8,
			Gutter:                 10,
		},
		Draft: DraftConfig{
			Dir: DefaultDraftDir(),
		},
		Keys: KeysConfig{
			Up:           "up,k",
			Down:         "down,j",
			Home:         "home,g",
			End:          "end,G",
			DiffDown:     "J,shift+down",
			DiffUp:       "K,shift+up",
			PageDown:     "pgdown,ctrl+f",
			PageUp:       "pgup,ctrl+b",
			HalfPageDown: "ctrl+d",
			HalfPageUp:   "ctrl+u",
			Left:         "left,h",
			Right:        "right,l",
			Stage:        "enter",
			StageLine:    "space",
			Discard:      "d",
			DiscardLine:  "D",
			Ignore:       "i",
			Switch:       "tab",
			Undo:         "u",
			Redo:         "ctrl+r",
			StageAll:     "a",
			UnstageAll:   "A",
			Amend:        "m",
			Reorder:      "R",
			SwapUp:       "K,shift+up",
			SwapDown:     "J,shift+down",
			Fixup:        "f",
			Drop:         "x",
			Reword:       "r",
			Confirm:      "enter",
			Cancel:       "esc",
			Find:         "/",
			Edit:         "e",
			Refresh:      "ctrl+l",
			Help:         "?",
			Quit:         "q,ctrl+c",
		},
	}
}

// DefaultDraftDir returns ~/.grain/drafts.
func DefaultDraftDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".grain", "drafts")
	}
	return filepath.Join(home, ".grain", "drafts")
}

// ConfigPath returns the path to the config file.
// Uses ~/.config/grain/config.toml (XDG style) on all Unix systems.
func ConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "grain", "config.toml")
	}
	home := os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".config", "grain", "config.toml")
	}
	// Fallback to os.UserConfigDir() for Windows
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "grain", "config.toml")
	}
	return filepath.Join(configDir, "grain", "config.toml")
}

// Load loads configuration from the config file.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// go-toml/v2 only overwrites fields present in the file, so defaults
	// survive for everything unspecified.
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.Draft.Dir = expandHome(cfg.Draft.Dir)
	return cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// CreateDefaultConfigFile writes a commented default config to path.
func CreateDefaultConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(generateDefaultConfigContent()), 0644)
}

// generateDefaultConfigContent generates a commented config file.
func generateDefaultConfigContent() string {
	var b strings.Builder
	cfg := DefaultConfig()

	b.WriteString("# grain configuration\n\n")

	b.WriteString("[general]\n")
	b.WriteString("# Number of commits shown in the log (0 = unlimited)\n")
	fmt.Fprintf(&b, "log_limit = %d\n", cfg.General.LogLimit)
	b.WriteString("# Untracked files above this size are treated as binary (0 = no limit)\n")
	fmt.Fprintf(&b, "untracked_max_bytes = %d\n", cfg.General.UntrackedMaxBytes)
	b.WriteString("# Refresh automatically when files in the repository change\n")
	fmt.Fprintf(&b, "watch = %v\n", cfg.General.Watch)
	b.WriteString("# Command used to open a file. Template variables: {file}, {line}, {repo}\n")
	b.WriteString("# Defaults to $VISUAL or $EDITOR.\n")
	b.WriteString("# editor = \"nvim +{line} {file}\"\n\n")

	b.WriteString("[scroll]\n")
	b.WriteString("# Columns per horizontal scroll step (0 = viewport width minus gutter)\n")
	fmt.Fprintf(&b, "main_horizontal_step = %d\n", cfg.Scroll.MainHorizontalStep)
	fmt.Fprintf(&b, "unstaged_horizontal_step = %d\n", cfg.Scroll.UnstagedHorizontalStep)
	fmt.Fprintf(&b, "gutter = %d\n\n", cfg.Scroll.Gutter)

	b.WriteString("[draft]\n")
	b.WriteString("# Where unfinished commit messages are kept\n")
	b.WriteString("# dir = \"~/.grain/drafts\"\n\n")

	b.WriteString("[keys]\n")
	b.WriteString("# Keybindings (comma-separated for multiple keys)\n")
	fmt.Fprintf(&b, "# up = %q\n", cfg.Keys.Up)
	fmt.Fprintf(&b, "# down = %q\n", cfg.Keys.Down)
	fmt.Fprintf(&b, "# diff_down = %q\n", cfg.Keys.DiffDown)
	fmt.Fprintf(&b, "# diff_up = %q\n", cfg.Keys.DiffUp)
	fmt.Fprintf(&b, "# stage = %q\n", cfg.Keys.Stage)
	fmt.Fprintf(&b, "# stage_line = %q\n", cfg.Keys.StageLine)
	fmt.Fprintf(&b, "# discard = %q\n", cfg.Keys.Discard)
	fmt.Fprintf(&b, "# switch = %q\n", cfg.Keys.Switch)
	fmt.Fprintf(&b, "# undo = %q\n", cfg.Keys.Undo)
	fmt.Fprintf(&b, "# redo = %q\n", cfg.Keys.Redo)
	fmt.Fprintf(&b, "# reorder = %q\n", cfg.Keys.Reorder)
	fmt.Fprintf(&b, "# quit = %q\n", cfg.Keys.Quit)

	return b.String()
}

// Validate validates the configuration and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	validVars := map[string]bool{"{file}": true, "{line}": true, "{repo}": true}
	for _, v := range extractTemplateVars(c.General.Editor) {
		if !validVars[v] {
			warnings = append(warnings, fmt.Sprintf("Unknown template variable in general.editor: %s", v))
		}
	}
	if c.General.Editor != "" && !strings.Contains(c.General.Editor, "{file}") {
		warnings = append(warnings, "general.editor does not reference {file}")
	}

	if c.General.LogLimit < 0 {
		warnings = append(warnings, fmt.Sprintf("Invalid value for general.log_limit: %d (expected >= 0)", c.General.LogLimit))
	}
	if c.General.UntrackedMaxBytes < 0 {
		warnings = append(warnings, fmt.Sprintf("Invalid value for general.untracked_max_bytes: %d (expected >= 0)", c.General.UntrackedMaxBytes))
	}
	if c.Scroll.MainHorizontalStep < 0 {
		warnings = append(warnings, fmt.Sprintf("Invalid value for scroll.main_horizontal_step: %d (expected >= 0)", c.Scroll.MainHorizontalStep))
	}
	if c.Scroll.UnstagedHorizontalStep < 0 {
		warnings = append(warnings, fmt.Sprintf("Invalid value for scroll.unstaged_horizontal_step: %d (expected >= 0)", c.Scroll.UnstagedHorizontalStep))
	}
	if c.Scroll.Gutter < 0 {
		warnings = append(warnings, fmt.Sprintf("Invalid value for scroll.gutter: %d (expected >= 0)", c.Scroll.Gutter))
	}

	if c.Draft.Dir == "" {
		warnings = append(warnings, "draft.dir is empty; commit drafts will not be kept")
	}

	return warnings
}

// extractTemplateVars extracts template variables from a string.
func extractTemplateVars(s string) []string {
	re := regexp.MustCompile(`\{[^}]+\}`)
	return re.FindAllString(s, -1)
}
