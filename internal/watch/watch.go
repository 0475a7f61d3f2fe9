// Package watch turns file system activity in a repository into refresh
// messages for the bubbletea loop.
package watch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/henri123lemoine/grain/internal/debug"
)

// DefaultQuiet is how long the watcher waits for a burst of events to
// settle before reporting it.
const DefaultQuiet = 75 * time.Millisecond

// ChangedMsg is sent when the work tree, the index or a ref changed.
type ChangedMsg struct {
	// Path is the first path of the burst.
	Path string
	// Events counts the events folded into this message.
	Events int
}

// ErrMsg is sent when the watcher fails.
type ErrMsg struct{ Err error }

func (e ErrMsg) Error() string { return e.Err.Error() }

// Watcher watches a work tree recursively plus the parts of the git
// directory that describe the index and refs.
type Watcher struct {
	fs     *fsnotify.Watcher
	root   string
	gitDir string
	quiet  time.Duration

	mu     sync.Mutex
	closed bool
}

// New starts watching the work tree at root and its git directory.
func New(root, gitDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:     fsw,
		root:   filepath.Clean(root),
		gitDir: filepath.Clean(gitDir),
		quiet:  DefaultQuiet,
	}

	if err := w.addTree(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	for _, dir := range []string{
		w.gitDir,
		filepath.Join(w.gitDir, "refs"),
		filepath.Join(w.gitDir, "refs", "heads"),
		filepath.Join(w.gitDir, "refs", "remotes"),
	} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			debug.Log("watch %s: %v", dir, err)
		}
	}
	debug.Log("watching %s (%d paths)", w.root, len(fsw.WatchList()))
	return w, nil
}

// Wait returns a command that blocks until the next relevant change and
// reports it as a ChangedMsg. It returns nil once the watcher is closed.
func (w *Watcher) Wait() tea.Cmd {
	return func() tea.Msg {
		var first string
		count := 0
		var settle <-chan time.Time

		for {
			select {
			case event, ok := <-w.fs.Events:
				if !ok {
					return nil
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.inGitDir(event.Name) {
						_ = w.addTree(event.Name)
					}
				}
				if !w.relevant(event) {
					continue
				}
				if count == 0 {
					first = event.Name
				}
				count++
				settle = time.After(w.quiet)

			case <-settle:
				debug.Attrs("fs change", "path", first, "events", count)
				return ChangedMsg{Path: first, Events: count}

			case err, ok := <-w.fs.Errors:
				if !ok {
					return nil
				}
				return ErrMsg{err}
			}
		}
	}
}

// Close stops the watcher. Pending Wait commands return nil.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fs.Close()
}

// relevant filters out lock files and git internals that do not change
// what grain displays.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if strings.HasSuffix(name, ".lock") {
		return false
	}
	if !w.inGitDir(name) {
		return true
	}
	rel, err := filepath.Rel(w.gitDir, name)
	if err != nil {
		return false
	}
	switch {
	case rel == "HEAD", rel == "index", rel == "packed-refs":
		return true
	case strings.HasPrefix(rel, "refs"+string(os.PathSeparator)):
		return true
	}
	return false
}

func (w *Watcher) inGitDir(path string) bool {
	return path == w.gitDir || strings.HasPrefix(path, w.gitDir+string(os.PathSeparator))
}

// addTree watches root and every directory below it, skipping the git
// directory.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.inGitDir(path) || d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
			debug.Log("watch %s: %v", path, err)
		}
		return nil
	})
}
