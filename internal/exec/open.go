// Package exec launches the user's editor on a file of the repository.
package exec

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// fallbackEditor is used when neither $VISUAL nor $EDITOR is set.
const fallbackEditor = "vi"

// Target is the file and line to open.
type Target struct {
	RepoRoot string
	// Path is relative to RepoRoot.
	Path string
	// Line is 1-based.
	Line int
}

// EditorCommand builds the shell command that opens t with template. An
// empty template uses $VISUAL or $EDITOR. The command runs in the
// repository root and inherits the terminal, so it is meant to be run
// through tea.ExecProcess.
func EditorCommand(template string, t Target) *exec.Cmd {
	if template == "" {
		template = defaultTemplate(os.Getenv)
	}
	cmd := exec.Command("sh", "-c", expandTemplate(template, t))
	cmd.Dir = t.RepoRoot
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// defaultTemplate derives a template from the environment's editor.
func defaultTemplate(getenv func(string) string) string {
	editor := strings.TrimSpace(getenv("VISUAL"))
	if editor == "" {
		editor = strings.TrimSpace(getenv("EDITOR"))
	}
	if editor == "" {
		editor = fallbackEditor
	}

	name := filepath.Base(strings.Fields(editor)[0])
	switch name {
	case "code", "code-insiders", "codium", "cursor", "zed":
		// These take file:line instead of +line.
		if name == "zed" {
			return editor + " {file}:{line}"
		}
		return editor + " -g {file}:{line}"
	case "subl", "sublime_text":
		return editor + " {file}:{line}"
	}
	return editor + " +{line} {file}"
}

// expandTemplate expands template variables in the command. Values are
// quoted for the shell.
func expandTemplate(template string, t Target) string {
	line := t.Line
	if line < 1 {
		line = 1
	}
	file := t.Path
	if !filepath.IsAbs(file) {
		file = filepath.Join(t.RepoRoot, file)
	}

	result := template

	// {file} - Absolute path of the file
	result = strings.ReplaceAll(result, "{file}", shellQuote(file))

	// {line} - Line under the diff cursor
	result = strings.ReplaceAll(result, "{line}", strconv.Itoa(line))

	// {repo} - Repository root
	result = strings.ReplaceAll(result, "{repo}", shellQuote(t.RepoRoot))

	return result
}

// shellQuote quotes s for sh when it contains anything beyond a safe set
// of characters.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("/._-+:,@%=", r)
}
