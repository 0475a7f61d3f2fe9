package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logger  *slog.Logger
	logFile *os.File
	mu      sync.Mutex
)

// Enable turns on debug logging to the specified file.
func Enable(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	mu.Lock()
	logFile = f
	mu.Unlock()
	EnableWriter(f)
	return nil
}

// EnableWriter turns on debug logging to w.
func EnableWriter(w io.Writer) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format("15:04:05.000"))
			}
			return a
		},
	})

	mu.Lock()
	logger = slog.New(h)
	mu.Unlock()

	Log("Debug logging enabled")
}

// Close closes the debug log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logger = nil
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return logger != nil
}

// Log writes a debug message if debugging is enabled.
func Log(format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()

	if l == nil {
		return
	}
	l.Debug(fmt.Sprintf(format, args...))
}

// Attrs writes a structured debug record.
func Attrs(msg string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()

	if l == nil {
		return
	}
	l.Debug(msg, args...)
}

// Timed logs the duration of an operation. Usage:
//
//	defer debug.Timed("operation name")()
func Timed(name string) func() {
	if !IsEnabled() {
		return func() {}
	}

	start := time.Now()
	Attrs("started", "op", name)

	return func() {
		Attrs("completed", "op", name, "elapsed", time.Since(start))
	}
}
