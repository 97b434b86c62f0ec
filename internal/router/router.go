// Package router classifies a typed command into an internal meta-command,
// a preset command block, or raw passthrough, and drives it through the
// channel (spec.md §4.3). It generalizes the named-dispatch shape of a
// tool runner (map[name]handler, unsupported name falls through to an
// error) to "named gf meta-command".
package router

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mpalmer/gf/internal/channel"
)

// Dispatcher is the subset of *channel.Channel the router needs. Tests
// substitute a fake so router logic can be exercised without a real gdb.
type Dispatcher interface {
	Call(cmd string) (channel.Unit, error)
	Send([]byte) error
	MarkRunning()
}

// Host is the set of UI callbacks meta-commands reach out to. It is the
// "external collaborator" seam spec.md's PURPOSE section describes: the
// router never imports a concrete UI toolkit.
type Host interface {
	Focus(window string)
	AppendConsole(text string)
	// CurrentSource returns the file, 1-indexed line, and full text of the
	// line about to execute, or ok=false if nothing is loaded.
	CurrentSource() (file string, line int, text string, ok bool)
	Chdir(path string) error
	// SourceLines returns the full, unmodified lines of file, needed by
	// gf-step-out-of-block's indentation scan.
	SourceLines(file string) ([]string, error)
}

// Router holds the preset table and the disassembly-mode toggle spec.md
// §4.3 calls out as a router-level concern.
type Router struct {
	Presets         map[string]string // name -> semicolon-separated command sequence, from [commands]
	DisassemblyMode bool
}

// New builds a Router over a preset table (typically config.Config.Presets).
func New(presets map[string]string) *Router {
	if presets == nil {
		presets = map[string]string{}
	}
	return &Router{Presets: presets}
}

// Kind classifies how a raw router input should be handled.
type Kind int

const (
	KindMeta Kind = iota
	KindPreset
	KindPassthrough
)

// Classify inspects input and reports its Kind and, for KindPreset, the
// expanded command sequence.
func (r *Router) Classify(input string) (Kind, string) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "gf-") {
		return KindMeta, trimmed
	}
	if seq, ok := r.Presets[trimmed]; ok {
		return KindPreset, seq
	}
	return KindPassthrough, trimmed
}

// Execute runs input end to end: classifying it, expanding presets,
// resolving disassembly-sensitive meta-commands, and sending the result to
// d. Synchronous segments have their response appended to the console via
// host.AppendConsole, mirroring spec.md §4.3's "echoed into the console".
func (r *Router) Execute(d Dispatcher, host Host, input string) error {
	kind, expanded := r.Classify(input)
	switch kind {
	case KindMeta:
		return r.runMeta(d, host, expanded)
	case KindPreset:
		return r.runPresetBlock(d, host, expanded)
	default:
		return r.runPassthrough(d, host, expanded)
	}
}

func (r *Router) runPassthrough(d Dispatcher, host Host, cmd string) error {
	host.AppendConsole(cmd)
	if err := d.Send([]byte(cmd)); err != nil {
		return err
	}
	d.MarkRunning()
	return nil
}

// runPresetBlock splits a semicolon-separated sequence and runs each
// segment; a trailing '&' on a segment forces asynchronous delivery,
// otherwise the segment runs synchronously and its response is appended to
// the console (spec.md §4.3 "Preset command blocks").
func (r *Router) runPresetBlock(d Dispatcher, host Host, seq string) error {
	for _, raw := range strings.Split(seq, ";") {
		seg := strings.TrimSpace(raw)
		if seg == "" {
			continue
		}
		async := strings.HasSuffix(seg, "&")
		seg = strings.TrimSpace(strings.TrimSuffix(seg, "&"))

		kind, expanded := r.Classify(seg)
		if kind == KindMeta {
			if err := r.runMeta(d, host, expanded); err != nil {
				return err
			}
			continue
		}

		if async {
			host.AppendConsole(seg)
			if err := d.Send([]byte(seg)); err != nil {
				return err
			}
			d.MarkRunning()
			continue
		}
		u, err := d.Call(seg)
		if err != nil {
			return err
		}
		host.AppendConsole(u.Text)
	}
	return nil
}

// runMeta expands a `gf-*` internal meta-command.
func (r *Router) runMeta(d Dispatcher, host Host, cmd string) error {
	name, arg, _ := strings.Cut(cmd, " ")
	switch name {
	case "gf-step":
		return r.send(d, host, r.stepCommand(false))
	case "gf-next":
		return r.send(d, host, r.stepCommand(true))
	case "gf-step-out-of-block":
		return r.stepOutOfBlock(d, host)
	case "gf-restart-gdb":
		return nil // handled by the session, which owns the *channel.Channel
	case "gf-get-pwd":
		return r.getPWD(d, host)
	case "gf-switch-to":
		window := strings.TrimSpace(arg)
		switch window {
		case "disassembly":
			r.DisassemblyMode = true
		case "source":
			r.DisassemblyMode = false
		}
		host.Focus(window)
		return nil
	case "gf-command":
		seq, ok := r.Presets[strings.TrimSpace(arg)]
		if !ok {
			return fmt.Errorf("router: unknown preset %q", arg)
		}
		return r.runPresetBlock(d, host, seq)
	default:
		return fmt.Errorf("router: unknown meta-command %q", name)
	}
}

// stepCommand resolves gf-step/gf-next to the source-level or
// instruction-level gdb command depending on DisassemblyMode (spec.md
// §4.3 "Disassembly toggling is a router-level concern").
func (r *Router) stepCommand(next bool) string {
	switch {
	case r.DisassemblyMode && next:
		return "nexti"
	case r.DisassemblyMode:
		return "stepi"
	case next:
		return "n"
	default:
		return "s"
	}
}

func (r *Router) send(d Dispatcher, host Host, cmd string) error {
	host.AppendConsole(cmd)
	if err := d.Send([]byte(cmd)); err != nil {
		return err
	}
	d.MarkRunning()
	return nil
}

// stepOutOfBlock computes the line one past the matching closing brace of
// the current block by indentation (spec.md §4.3) and runs to it with a
// temporary breakpoint.
func (r *Router) stepOutOfBlock(d Dispatcher, host Host) error {
	file, line, _, ok := host.CurrentSource()
	if !ok {
		return fmt.Errorf("router: no current source position")
	}
	lines, err := host.SourceLines(file)
	if err != nil {
		return fmt.Errorf("router: read source for gf-step-out-of-block: %w", err)
	}
	target, ok := findEndOfBlock(lines, line)
	if !ok {
		return fmt.Errorf("router: no enclosing block found for %s:%d", file, line)
	}

	host.Focus(file)
	u, err := d.Call(fmt.Sprintf("tbreak %s:%d", file, target+1))
	if err != nil {
		return err
	}
	host.AppendConsole(u.Text)
	return r.send(d, host, "c")
}

// findEndOfBlock finds, starting just after 1-indexed currentLine, the
// first line whose leading-whitespace count is less than currentLine's and
// whose first non-whitespace byte is '}' (the current block's closing
// brace by indentation). Grounded on
// original_source/gf2.cpp's SourceFindEndOfBlock.
func findEndOfBlock(lines []string, currentLine int) (int, bool) {
	if currentLine < 1 || currentLine > len(lines) {
		return 0, false
	}
	tabs := leadingWhitespace(lines[currentLine-1])

	for j := currentLine; j < len(lines); j++ {
		line := lines[j]
		t := leadingWhitespace(line)
		if t < tabs && t < len(line) && line[t] == '}' {
			return j + 1, true
		}
	}
	return 0, false
}

func leadingWhitespace(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}

// getPWD evaluates `info source`, extracts the compilation directory, and
// changes the process working directory (spec.md §4.3 "gf-get-pwd").
func (r *Router) getPWD(d Dispatcher, host Host) error {
	u, err := d.Call("info source")
	if err != nil {
		return err
	}
	dir, ok := ParseCompilationDirectory(u.Text)
	if !ok {
		return fmt.Errorf("router: could not find compilation directory in %q", u.Text)
	}
	return host.Chdir(dir)
}

// ParseCompilationDirectory extracts the value after the
// "Compilation directory is " line gdb prints for `info source`. Exported
// so internal/session can resolve breakpoint short paths the same way
// gf-get-pwd resolves the working directory.
func ParseCompilationDirectory(text string) (string, bool) {
	const marker = "Compilation directory is "
	for _, line := range strings.Split(text, "\n") {
		if idx := strings.Index(line, marker); idx >= 0 {
			return strings.TrimSpace(line[idx+len(marker):]), true
		}
	}
	return "", false
}

// ToggleBreakpointAtLine flips a breakpoint on file:line, returning the
// final table to its prior state on a second call (spec.md §8 property 2,
// "Breakpoint toggle parity"). existing is the breakpoint table already
// re-parsed after the last stop, so the router never re-derives state it
// doesn't own.
func ToggleBreakpointAtLine(d Dispatcher, host Host, file string, line int, existing []BreakpointRef) error {
	for _, bp := range existing {
		if bp.File == file && bp.Line == line {
			host.AppendConsole(fmt.Sprintf("clear %s:%d", file, line))
			return d.Send([]byte("clear " + file + ":" + strconv.Itoa(line)))
		}
	}
	host.AppendConsole(fmt.Sprintf("break %s:%d", file, line))
	return d.Send([]byte("break " + file + ":" + strconv.Itoa(line)))
}

// BreakpointRef is the minimal view ToggleBreakpointAtLine needs of a
// breakpoint table row; the session builds these from projector.Breakpoint
// rows (AbsoluteFile and Line).
type BreakpointRef struct {
	File string
	Line int
}
