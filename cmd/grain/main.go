package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/henri123lemoine/grain/internal/app"
	"github.com/henri123lemoine/grain/internal/config"
	"github.com/henri123lemoine/grain/internal/debug"
	"github.com/henri123lemoine/grain/internal/draft"
	"github.com/henri123lemoine/grain/internal/engine"
	"github.com/henri123lemoine/grain/internal/git"
	"github.com/henri123lemoine/grain/internal/watch"
)

var version = "dev"

var (
	repoDir     string
	configPath  string
	debugOn     bool
	debugLog    string
	initConfig  bool
	showVersion bool
	showHelp    bool
)

func init() {
	flag.StringVarP(&repoDir, "repo", "C", ".", "Run in this repository")
	flag.StringVar(&configPath, "config", "", "Use this config file instead of the default")
	flag.BoolVar(&debugOn, "debug", false, "Write a debug log")
	flag.StringVar(&debugLog, "debug-log", "", "Debug log path (implies --debug)")
	flag.BoolVar(&initConfig, "init-config", false, "Write a default config file and exit")
	flag.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	flag.BoolVarP(&showHelp, "help", "h", false, "Show help information")
	flag.Usage = usage
}

func usage() {
	fmt.Println("grain - stage, unstage and commit changes line by line")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  grain [options]")
	fmt.Println("")
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Println("Press ? inside grain for the key bindings.")
}

func main() {
	flag.Parse()

	if showHelp {
		usage()
		return
	}
	if showVersion {
		fmt.Println("grain", version)
		return
	}

	if configPath == "" {
		configPath = config.ConfigPath()
	}

	if initConfig {
		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists\n", configPath)
			os.Exit(1)
		}
		if err := config.CreateDefaultConfigFile(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", configPath)
		return
	}

	if debugOn || debugLog != "" {
		if debugLog == "" {
			debugLog = defaultDebugLog()
		}
		if err := debug.Enable(debugLog); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer debug.Close()
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		debug.Close()
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	warnings := cfg.Validate()
	for _, w := range warnings {
		debug.Log("config: %s", w)
	}

	// Detect git repository
	repo, err := git.OpenRepo(repoDir)
	if err != nil {
		return fmt.Errorf("%w\ngrain must be run from within a git repository", err)
	}
	debug.Attrs("open repository", "root", repo.Root, "branch", repo.Branch)

	backend := git.NewCLI(repo, cfg.General.UntrackedMaxBytes)
	// Scratch worktrees survive a crash during a reorder.
	if err := backend.PruneScratchWorktrees(); err != nil {
		debug.Log("prune scratch worktrees: %v", err)
	}

	eng, err := engine.New(backend, engine.Options{
		RepoRoot:               repo.Root,
		LogLimit:               cfg.General.LogLimit,
		MainHorizontalStep:     cfg.Scroll.MainHorizontalStep,
		UnstagedHorizontalStep: cfg.Scroll.UnstagedHorizontalStep,
		Gutter:                 cfg.Scroll.Gutter,
		Drafts:                 draft.NewStore(cfg.Draft.Dir),
	})
	if err != nil {
		return err
	}

	model := app.New(cfg, repo, eng).WithWarnings(warnings)
	if cfg.General.Watch {
		w, err := watch.New(repo.Root, repo.GitDir)
		if err != nil {
			// Manual refresh still works.
			debug.Log("watch: %v", err)
		} else {
			defer w.Close()
			model = model.WithWatcher(w)
		}
	}

	// Create and run the application
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func defaultDebugLog() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "grain", "debug.log")
}
