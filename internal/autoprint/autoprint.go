// Package autoprint infers an expression of interest from the source line
// about to execute and schedules its evaluation on the next stop (spec.md
// §4.6).
package autoprint

import "strings"

// Record is a pending auto-print expression (spec.md §3 "Auto-print
// record").
type Record struct {
	Expr string // bounded ~1 KiB
	Line int
}

const maxExprBytes = 1024

// Evaluator evaluates a single expression synchronously (a thin view of
// the Mode Arbiter's Call for the auto-print use case).
type Evaluator interface {
	Evaluate(expr string) (string, error)
}

// Tracker owns the single pending-record slot (spec.md §3: "Discarded
// whenever a different source file loads").
type Tracker struct {
	pending *Record
	file    string
}

// OnNewLine implements spec.md §4.6: if a prior record was pending,
// evaluate it and return an annotation for its originating line; then
// parse the new line for a pending expression. The tracker has no
// disassembly path: it only parses source lines, and a register-diff
// annotation in disassembly mode is left to the caller.
func (t *Tracker) OnNewLine(eval Evaluator, file string, line int, text string) (annotateLine int, annotation string, ok bool) {
	if t.file != "" && t.file != file {
		t.pending = nil
	}
	t.file = file

	if t.pending != nil {
		val, err := eval.Evaluate(t.pending.Expr)
		if err == nil {
			annotateLine = t.pending.Line
			annotation = "= " + extractEqualsValue(val)
			ok = true
		}
		t.pending = nil
	}

	if expr, found := ParseLine(text); found {
		if len(expr) > maxExprBytes {
			expr = expr[:maxExprBytes]
		}
		t.pending = &Record{Expr: expr, Line: line}
	}
	return annotateLine, annotation, ok
}

// Pending returns the currently pending record, if any.
func (t *Tracker) Pending() (Record, bool) {
	if t.pending == nil {
		return Record{}, false
	}
	return *t.pending, true
}

// ParseLine implements spec.md §4.6's line grammar: skip leading
// indentation; optionally an identifier/space/optional-stars/identifier
// type name; then an expression of identifier chars, '[', ']', '.', '-',
// '>', and space, up to an '=' sign. Returns the expression and whether an
// '=' was found.
func ParseLine(line string) (string, bool) {
	s := strings.TrimLeft(line, " \t")
	s = skipOptionalTypeName(s)

	i := 0
	for i < len(s) {
		c := s[i]
		if c == '=' {
			if i > 0 && (s[i-1] == '=' || s[i-1] == '!' || s[i-1] == '<' || s[i-1] == '>') {
				return "", false // ==, !=, <=, >= are not assignment
			}
			if i+1 < len(s) && s[i+1] == '=' {
				return "", false
			}
			expr := strings.TrimSpace(s[:i])
			if expr == "" {
				return "", false
			}
			return expr, true
		}
		if isExprChar(c) {
			i++
			continue
		}
		break
	}
	return "", false
}

func isExprChar(c byte) bool {
	return c == '[' || c == ']' || c == '.' || c == '-' || c == '>' || c == ' ' ||
		c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// skipOptionalTypeName consumes "identifier space optional-stars
// identifier " if present, e.g. "int x" or "struct foo *p" -> "p".
func skipOptionalTypeName(s string) string {
	first, rest, ok := splitIdent(s)
	if !ok {
		return s
	}
	rest = strings.TrimLeft(rest, " ")
	if rest == "" || rest == s {
		return s
	}
	stars := 0
	for stars < len(rest) && rest[stars] == '*' {
		stars++
	}
	rest2 := strings.TrimLeft(rest[stars:], " ")
	second, after, ok := splitIdent(rest2)
	if !ok || second == "" {
		return s
	}
	_ = first
	// A multi-word type ("struct foo *p", "unsigned long n") leaves another
	// stars-and-identifier after the second word; skip that word as well.
	if next := strings.TrimLeft(after, " "); next != "" && (next[0] == '*' || isIdentByte(next[0])) {
		return skipOptionalTypeName(rest2)
	}
	return rest2
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func splitIdent(s string) (ident, rest string, ok bool) {
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	if i == 0 {
		return "", s, false
	}
	return s[:i], s[i:], true
}

// extractEqualsValue pulls gdb's "$1 = 42" style response down to the
// trimmed text after its first '=' ("42"); OnNewLine prefixes the "= "
// when it builds the annotation.
func extractEqualsValue(response string) string {
	if idx := strings.Index(response, "="); idx >= 0 {
		return strings.TrimSpace(response[idx+1:])
	}
	return strings.TrimSpace(response)
}
