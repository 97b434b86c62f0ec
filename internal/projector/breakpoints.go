package projector

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Breakpoint is one row of the breakpoint table (spec.md §3 "Breakpoint").
// The whole vector is discarded and rebuilt after every stop.
type Breakpoint struct {
	ShortFile    string
	AbsoluteFile string
	Line         int // 0 for watchpoints
	WatchpointID int // 0 for line breakpoints
	Enabled      bool
	HitCount     int
}

// BreakpointsCommand is the issuer's command for a fresh breakpoint table.
const BreakpointsCommand = "info break"

// ParseBreakpoints parses `info break` output. gdb prints one header line
// and then, for each breakpoint, a row starting with the breakpoint number
// followed (usually on the same or a continuation line) by type, enabled
// flag, and location. Spec.md §4.4 keys off "rows whose second line
// begins with a digit" — i.e. skip the header, then treat any line whose
// first field is numeric as the start of a breakpoint row.
func ParseBreakpoints(text string, resolve func(short string) string) []Breakpoint {
	if resolve == nil {
		resolve = func(s string) string { return s }
	}
	lines := strings.Split(text, "\n")
	var out []Breakpoint
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		toks := fields(line)
		if len(toks) < 4 {
			continue
		}
		if _, err := strconv.Atoi(toks[0]); err != nil {
			continue
		}
		// The Type column may be one word ("breakpoint") or two ("hw
		// watchpoint"), so the Enb column is the first y/n after it.
		enabled := false
		for _, tok := range toks[2:] {
			if tok == "y" || tok == "n" {
				enabled = tok == "y"
				break
			}
		}

		if strings.Contains(line, "watchpoint") {
			id, _ := strconv.Atoi(toks[0])
			out = append(out, Breakpoint{WatchpointID: id, Enabled: enabled})
			continue
		}

		const marker = " at "
		idx := strings.Index(line, marker)
		if idx < 0 {
			continue
		}
		loc := strings.TrimSpace(line[idx+len(marker):])
		short, lineNo, ok := splitFileLine(loc)
		if !ok {
			continue
		}
		hits := 0
		if i+1 < len(lines) {
			hits = parseHitCount(lines[i+1])
		}
		out = append(out, Breakpoint{
			ShortFile:    short,
			AbsoluteFile: resolve(short),
			Line:         lineNo,
			Enabled:      enabled,
			HitCount:     hits,
		})
	}
	return out
}

func splitFileLine(loc string) (file string, line int, ok bool) {
	idx := strings.LastIndex(loc, ":")
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(loc[idx+1:]))
	if err != nil {
		return "", 0, false
	}
	return loc[:idx], n, true
}

// parseHitCount looks for a continuation line like
// "\tbreakpoint already hit 3 times" under a breakpoint row.
func parseHitCount(line string) int {
	const marker = "already hit "
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0
	}
	rest := strings.TrimSpace(line[idx+len(marker):])
	toks := fields(rest)
	if len(toks) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(toks[0])
	return n
}

// ResolveAbsolute joins a short (as-gdb-reported) file path against a
// compilation directory the way spec.md's "Breakpoint" entity resolves the
// absolute path.
func ResolveAbsolute(compileDir, short string) string {
	if filepath.IsAbs(short) {
		return short
	}
	return filepath.Join(compileDir, short)
}
