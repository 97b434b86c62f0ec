// Package editorsync shells out to a running gvim/vim instance to recover
// the file and line its cursor currently sits on (spec.md §6 "editor
// sync"), grounded on original_source/gf2.cpp's CommandSyncWithGvim: two
// `vim --servername N --remote-expr ...` round trips, the first asking for
// the current buffer's name and cursor line via `execute("ls")`, the
// second asking for the working directory via `execute("pwd")` when the
// buffer name isn't already absolute.
package editorsync

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Runner executes a shell command and returns its stdout. Tests
// substitute a fake; production uses os/exec via Run.
type Runner interface {
	Run(command string) (string, error)
}

// ShellRunner runs command through "sh -c", matching the original's popen.
type ShellRunner struct{}

// Run executes command via the shell and returns its stdout unmodified.
func (ShellRunner) Run(command string) (string, error) {
	out, err := exec.Command("sh", "-c", command).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Position is the editor's reported file and cursor line.
type Position struct {
	File string
	Line int
}

// Sync queries the vim instance named serverName and returns its current
// buffer position. If the buffer name vim reports isn't already absolute,
// a second round trip resolves it against vim's working directory.
func Sync(r Runner, serverName string) (Position, error) {
	lsCmd := fmt.Sprintf(`vim --servername %s --remote-expr "execute(\"ls\")" | grep %%`, serverName)
	out, err := r.Run(lsCmd)
	if err != nil {
		return Position{}, fmt.Errorf("editorsync: ls: %w", err)
	}

	name, line, ok := parseLsOutput(out)
	if !ok {
		return Position{}, fmt.Errorf("editorsync: could not parse vim ls output: %q", out)
	}

	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "~") {
		return Position{File: name, Line: line}, nil
	}

	pwdCmd := fmt.Sprintf(`vim --servername %s --remote-expr "execute(\"pwd\")" | grep '/'`, serverName)
	pwdOut, err := r.Run(pwdCmd)
	if err != nil {
		return Position{}, fmt.Errorf("editorsync: pwd: %w", err)
	}
	pwd, ok := firstLine(pwdOut)
	if !ok {
		return Position{}, fmt.Errorf("editorsync: could not parse vim pwd output: %q", pwdOut)
	}

	return Position{File: filepath.Join(pwd, name), Line: line}, nil
}

// parseLsOutput extracts the quoted buffer name and the "line N" cursor
// position from vim's `:ls` output, e.g. `1 %a   "main.c"  line 42`.
func parseLsOutput(out string) (name string, line int, ok bool) {
	start := strings.Index(out, `"`)
	if start < 0 {
		return "", 0, false
	}
	rest := out[start+1:]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return "", 0, false
	}
	name = rest[:end]

	after := rest[end+1:]
	idx := strings.Index(after, "line ")
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(strings.Fields(after[idx+len("line "):])[0])
	if err != nil {
		return "", 0, false
	}
	return name, n, true
}

func firstLine(s string) (string, bool) {
	idx := strings.Index(s, "\n")
	if idx < 0 {
		return "", false
	}
	return s[:idx], true
}
