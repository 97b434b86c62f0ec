package projector

import "strings"

// Thread is one row of the thread list (spec.md §3/§4.4 "Threads").
type Thread struct {
	ID       int
	Frame    string // quoted frame description
	Active   bool
}

// ThreadsCommand is the issuer's command for a fresh thread list.
const ThreadsCommand = "info threads"

// ParseThreads parses `info threads` output. GDB indents continuation
// lines with 3+ spaces as a cosmetic; those runs are first collapsed
// (spec.md §4.4), then each line starting with an optional '*' (the
// active thread marker) yields an id and a quoted frame description.
func ParseThreads(text string) []Thread {
	var out []Thread
	for _, raw := range strings.Split(text, "\n") {
		line := collapseLeadingSpaces(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		active := false
		if strings.HasPrefix(line, "*") {
			active = true
			line = strings.TrimSpace(line[1:])
		}
		toks := fields(line)
		if len(toks) == 0 {
			continue
		}
		id, ok := parseIntPrefix(toks[0])
		if !ok {
			continue
		}
		frame := ""
		if q := strings.Index(line, "\""); q >= 0 {
			if q2 := strings.LastIndex(line, "\""); q2 > q {
				frame = line[q : q2+1]
			}
		}
		out = append(out, Thread{ID: id, Frame: frame, Active: active})
	}
	return out
}

func parseIntPrefix(s string) (int, bool) {
	n := 0
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == 0 {
		return 0, false
	}
	return n, true
}
