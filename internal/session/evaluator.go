package session

import (
	"fmt"
	"strings"

	"github.com/mpalmer/gf/internal/channel"
	"github.com/mpalmer/gf/internal/helperscript"
	"github.com/mpalmer/gf/internal/watch"
)

// gdbCaller is the subset of *channel.Channel the evaluator needs; narrowed
// to keep the evaluator testable against a fake.
type gdbCaller interface {
	Call(cmd string) (channel.Unit, error)
}

// gdbEvaluator implements watch.Evaluator and autoprint.Evaluator against a
// live gdb session by building Python-literal access-path expressions and
// issuing the helperscript-defined helpers synchronously.
type gdbEvaluator struct {
	call gdbCaller
}

func newGDBEvaluator(call gdbCaller) *gdbEvaluator {
	return &gdbEvaluator{call: call}
}

func (e *gdbEvaluator) TypeOf(path []watch.PathElem) (string, error) {
	u, err := e.call.Call(helperscript.TypeofCommand(pathLiteral(path)))
	if err != nil {
		return "", err
	}
	return stripPrompt(u.Text), nil
}

func (e *gdbEvaluator) ValueOf(path []watch.PathElem, format rune) (string, error) {
	f := " "
	if format != 0 {
		f = string(format)
	}
	u, err := e.call.Call(helperscript.ValueofCommand(pathLiteral(path), f))
	if err != nil {
		return "", err
	}
	return stripPrompt(u.Text), nil
}

func (e *gdbEvaluator) Fields(path []watch.PathElem) (string, error) {
	u, err := e.call.Call(helperscript.FieldsCommand(pathLiteral(path)))
	if err != nil {
		return "", err
	}
	return stripPrompt(u.Text), nil
}

func (e *gdbEvaluator) Locals() ([]string, error) {
	u, err := e.call.Call(helperscript.LocalsCommand())
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(stripPrompt(u.Text), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// Evaluate implements autoprint.Evaluator by issuing a bare print of expr
// and returning gdb's "$N = ..." response text unmodified (autoprint pulls
// out the "=" substring itself).
func (e *gdbEvaluator) Evaluate(expr string) (string, error) {
	u, err := e.call.Call(fmt.Sprintf("print %s", expr))
	if err != nil {
		return "", err
	}
	return stripPrompt(u.Text), nil
}

// pathLiteral renders an access path as the Python list literal
// _gf_value expects: the root expression string followed by quoted field
// names (including the synthesized "[i]" keys of dynamic-array elements)
// or bare integer indices for ordinary array elements.
func pathLiteral(path []watch.PathElem) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range path {
		if i > 0 {
			sb.WriteByte(',')
		}
		if e.IsIndex {
			fmt.Fprintf(&sb, "%d", e.Index)
		} else {
			sb.WriteString(pyQuote(e.Field))
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func pyQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// stripPrompt trims the trailing prompt sentinel and surrounding newlines
// from a response unit's text, leaving just what gdb printed.
func stripPrompt(text string) string {
	text = strings.TrimSuffix(text, channel.PromptSentinel)
	return strings.TrimRight(text, "\r\n")
}
