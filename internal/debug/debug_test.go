package debug

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledByDefault(t *testing.T) {
	Close()
	if IsEnabled() {
		t.Fatal("logging enabled without Enable")
	}
	Log("ignored %d", 1)
	Timed("noop")()
}

func TestEnableWriter(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Close()

	Log("applied %s", "patch")
	Timed("git status")()

	out := buf.String()
	for _, want := range []string{"Debug logging enabled", "applied patch", "op=\"git status\"", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if !IsEnabled() {
		t.Error("IsEnabled() = false after Enable")
	}
	Close()
	if IsEnabled() {
		t.Error("IsEnabled() = true after Close")
	}
}
