package projector

import (
	"strconv"
	"strings"
)

// StackEntry is one frame of the call stack (spec.md §3 "Stack entry").
type StackEntry struct {
	Index    int
	Function string // truncated to 64 bytes
	Location string // "file:line", truncated to 256 bytes
	Address  string
	Selected bool
}

const (
	maxFunctionBytes = 64
	maxLocationBytes = 256
)

// StackCommand is the command the issuer sends for a fresh stack listing.
const StackCommand = "bt 50"

// ParseStack parses the response to `bt 50` into stack entries. Lines that
// don't start with "#<n>" are skipped per spec.md §7 ("Parse" errors:
// silently skip the affected row).
func ParseStack(text string) []StackEntry {
	var out []StackEntry
	for _, line := range strings.Split(text, "\n") {
		entry, ok := parseStackLine(line)
		if !ok {
			continue
		}
		out = append(out, entry)
	}
	if len(out) > 0 {
		out[0].Selected = true
	}
	return out
}

func parseStackLine(line string) (StackEntry, bool) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, "#") {
		return StackEntry{}, false
	}
	rest := line[1:]
	numEnd := 0
	for numEnd < len(rest) && rest[numEnd] >= '0' && rest[numEnd] <= '9' {
		numEnd++
	}
	if numEnd == 0 {
		return StackEntry{}, false
	}
	idx, err := strconv.Atoi(rest[:numEnd])
	if err != nil {
		return StackEntry{}, false
	}
	rest = strings.TrimSpace(rest[numEnd:])

	var address string
	if strings.HasPrefix(rest, "0x") {
		toks := fields(rest)
		if len(toks) == 0 {
			return StackEntry{}, false
		}
		address = toks[0]
		rest = strings.TrimSpace(strings.TrimPrefix(rest, address))
		rest = strings.TrimPrefix(rest, "in ")
	}

	funcName := rest
	location := ""
	if idx2 := strings.Index(rest, " at "); idx2 >= 0 {
		funcName = rest[:idx2]
		if toks := fields(funcName); len(toks) > 0 {
			funcName = toks[0]
		}
		location = strings.TrimSpace(rest[idx2+len(" at "):])
	} else {
		toks := fields(rest)
		if len(toks) > 0 {
			funcName = toks[0]
		}
	}

	funcName = truncateBytes(funcName, maxFunctionBytes)
	location = truncateBytes(location, maxLocationBytes)

	return StackEntry{
		Index:    idx,
		Function: funcName,
		Location: location,
		Address:  address,
	}, true
}

func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// SelectFrame marks frame idx as selected, clearing any previous selection.
// Spec.md §4.4 "Selecting a new stack frame issues `frame <n>`"; the
// `frame <n>` command itself is the issuer's job, this is the pure
// state-update half.
func SelectFrame(stack []StackEntry, idx int) []StackEntry {
	out := make([]StackEntry, len(stack))
	for i, e := range stack {
		e.Selected = e.Index == idx
		out[i] = e
	}
	return out
}

// Selected returns the currently selected frame, if any.
func Selected(stack []StackEntry) (StackEntry, bool) {
	for _, e := range stack {
		if e.Selected {
			return e, true
		}
	}
	return StackEntry{}, false
}
