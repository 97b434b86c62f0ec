// Package termui is the thinnest possible terminal adapter over the
// external-collaborator interfaces internal/interfaces names: stdlib
// bufio/fmt only, no box-drawing, no cursor control. Widget rendering is
// explicitly out of scope (spec.md's non-goal on UI toolkits); this
// package exists only so the binary can run end to end in a terminal
// without pulling in a concrete TUI library, printing each update as a
// line to stdout the way a debug console would.
package termui

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Renderer implements interfaces.SourceView, DisassemblyView, MemoryView,
// WatchView, and Dialog by writing a line per event to an io.Writer.
type Renderer struct {
	out *bufio.Writer

	file string
	line int
}

// New builds a Renderer writing to out (os.Stdout in normal use).
func New(out io.Writer) *Renderer {
	return &Renderer{out: bufio.NewWriter(out)}
}

// Flush pushes any buffered output. Call after a batch of updates.
func (r *Renderer) Flush() error {
	return r.out.Flush()
}

// LoadFile records the file currently on display and announces the
// switch; termui holds no file contents of its own.
func (r *Renderer) LoadFile(path string) error {
	r.file = path
	fmt.Fprintf(r.out, "source: %s\n", path)
	return nil
}

// FocusLine announces the line now selected within the loaded file.
func (r *Renderer) FocusLine(line int) {
	r.line = line
	fmt.Fprintf(r.out, "%s:%d\n", r.file, line)
}

// Annotate prints an inline comment attached to a line, e.g. an
// auto-print or inspect-line result (spec.md §4.6).
func (r *Renderer) Annotate(line int, text string) {
	fmt.Fprintf(r.out, "%s:%d  // %s\n", r.file, line, text)
}

// FocusAddress announces the instruction pointer's new address while
// disassembly mode is active.
func (r *Renderer) FocusAddress(addr uint64) {
	fmt.Fprintf(r.out, "disasm: 0x%x\n", addr)
}

// SetBase announces the memory view's new base address.
func (r *Renderer) SetBase(addr uint64) {
	fmt.Fprintf(r.out, "memory: base 0x%x\n", addr)
}

// Invalidate announces that a watch root's subtree should be redrawn.
// termui has no cached tree state, so this just logs the event.
func (r *Renderer) Invalidate(rootIdx int) {
	fmt.Fprintf(r.out, "watch: root %d invalidated\n", rootIdx)
}

// ShowError prints a dialog-shaped error to stderr so it's visible
// alongside whatever's buffered for stdout.
func (r *Renderer) ShowError(title, body string) {
	fmt.Fprintf(os.Stderr, "error: %s: %s\n", title, body)
}
