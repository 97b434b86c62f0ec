// Package projector re-derives one slice of visible state — stack,
// breakpoints, registers, threads, source position — from a single
// debugger command's response text (spec.md §4.4). Each text projector is
// split into an issuer (the command string) and a pure Parse function;
// registers additionally have DiffRegisters against the previous snapshot,
// while stack, breakpoints and threads are replaced wholesale, and the
// source position is tracked by Position.Update. Per spec.md §9's design
// note, this makes the parse step trivially testable against canned transcripts, the way
// internal/agent/claude.go separates process-spawning from
// parseStreamEvent/parseResultTokens.
package projector

import "strings"

// collapseLeadingSpaces folds runs of 3+ leading spaces into one, undoing
// a GDB cosmetic indent (spec.md §4.4 "Threads").
func collapseLeadingSpaces(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	n := len(line) - len(trimmed)
	if n >= 3 {
		return " " + trimmed
	}
	return line
}

func fields(line string) []string {
	return strings.Fields(line)
}
