package projector

import "strings"

// Register is one row of a register snapshot (spec.md §3 "Register
// snapshot"): the name, gdb's hex column, the rest of the row as the
// decorated form, and the change mark set by DiffRegisters. No separate
// integer form is decoded or stored.
type Register struct {
	Name        string
	Hex         string
	Decorated   string
	Changed     bool
}

// InstructionPointerName is exempt from the change-highlight per spec.md
// §3 ("the 'instruction pointer' name is exempt from the change
// highlight").
const InstructionPointerName = "rip"

// RegistersCommand is the issuer's command for a fresh register snapshot.
const RegistersCommand = "info registers"

// ParseRegisters parses `info registers` rows of the form
// "name <hex> <decorated>".
func ParseRegisters(text string) []Register {
	var out []Register
	for _, line := range strings.Split(text, "\n") {
		toks := fields(line)
		if len(toks) < 2 {
			continue
		}
		name := toks[0]
		if !isRegisterName(name) {
			continue
		}
		hex := toks[1]
		decorated := ""
		if len(toks) > 2 {
			decorated = strings.Join(toks[2:], " ")
		}
		out = append(out, Register{Name: name, Hex: hex, Decorated: decorated})
	}
	return out
}

func isRegisterName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return s[0] >= 'a' && s[0] <= 'z' || s[0] >= 'A' && s[0] <= 'Z'
}

// DiffRegisters marks entries whose hex form changed since prev, by name.
// InstructionPointerName is never marked changed (spec.md §3).
func DiffRegisters(prev, next []Register) []Register {
	prevByName := make(map[string]Register, len(prev))
	for _, r := range prev {
		prevByName[r.Name] = r
	}
	out := make([]Register, len(next))
	for i, r := range next {
		if r.Name != InstructionPointerName {
			if old, ok := prevByName[r.Name]; ok && old.Hex != r.Hex {
				r.Changed = true
			}
		}
		out[i] = r
	}
	return out
}
