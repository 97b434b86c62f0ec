// Package layout parses the layout grammar (spec.md §6): h(pct,child,child),
// v(pct,child,child), t(name,name,...), or a bare window name leaf. The
// token spellings follow original_source/luigi.h's InterfaceLayoutCreate
// exactly: 'h'/'v' split panes take a percentage and exactly two children;
// 't' is a tab pane over two or more named windows; anything else must be a
// known window name.
package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the node type in a parsed layout tree.
type Kind int

const (
	// Horizontal is an h(pct,left,right) split pane.
	Horizontal Kind = iota
	// Vertical is a v(pct,top,bottom) split pane.
	Vertical
	// Tabs is a t(name,...) tab pane over leaf windows.
	Tabs
	// Leaf is a bare window name.
	Leaf
)

// Node is one node of a parsed layout tree.
type Node struct {
	Kind     Kind
	Percent  int      // meaningful for Horizontal/Vertical
	Children []*Node  // exactly 2 for Horizontal/Vertical
	Tabs     []string // window names, for Tabs
	Name     string   // window name, for Leaf
}

// KnownWindows is the set of window names the layout grammar may reference.
// Parse validates leaf and tab names against this set so a malformed
// layout string is caught before any rendering is attempted.
var KnownWindows = []string{
	"Source", "Disassembly", "Breakpoints", "Commands", "Struct",
	"Stack", "Files", "Thread", "Console", "Watch", "Registers", "Data",
}

func isKnownWindow(name string) bool {
	for _, w := range KnownWindows {
		if w == name {
			return true
		}
	}
	return false
}

// Parse parses a layout string into a tree. A malformed grammar (unknown
// window name, wrong child count for a split pane, unterminated
// parenthesis) is the fatal layout error spec.md §6/§8 names; Parse returns
// that as an error rather than calling os.Exit so callers (cmd/gf's
// "layout check" and the startup path alike) decide how to report it.
func Parse(s string) (*Node, error) {
	node, rest, err := parseNode(s)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("layout: trailing input after top-level node: %q", rest)
	}
	return node, nil
}

func parseNode(s string) (*Node, string, error) {
	switch {
	case strings.HasPrefix(s, "h(") || strings.HasPrefix(s, "v("):
		kind := Horizontal
		if s[0] == 'v' {
			kind = Vertical
		}
		s = s[2:]
		pctStr, rest := takeUntil(s, ',')
		if rest == "" {
			return nil, "", fmt.Errorf("layout: %s(...) missing percentage", kindLetter(kind))
		}
		pct, err := strconv.Atoi(pctStr)
		if err != nil {
			return nil, "", fmt.Errorf("layout: invalid percentage %q: %w", pctStr, err)
		}
		s = rest[1:] // skip ','

		left, rest, err := parseNode(s)
		if err != nil {
			return nil, "", err
		}
		s = expectByte(rest, ',')
		if s == "" {
			return nil, "", fmt.Errorf("layout: split pane requires exactly 2 children")
		}
		right, rest, err := parseNode(s)
		if err != nil {
			return nil, "", err
		}
		rest, err = expectClose(rest)
		if err != nil {
			return nil, "", err
		}
		return &Node{Kind: kind, Percent: pct, Children: []*Node{left, right}}, rest, nil

	case strings.HasPrefix(s, "t("):
		s = s[2:]
		body, rest := takeUntil(s, ')')
		if rest == "" {
			return nil, "", fmt.Errorf("layout: t(...) missing closing paren")
		}
		names := strings.Split(body, ",")
		if len(names) < 2 {
			return nil, "", fmt.Errorf("layout: t(...) requires at least 2 windows")
		}
		for _, n := range names {
			if !isKnownWindow(n) {
				return nil, "", fmt.Errorf("layout: unknown window %q in tab pane", n)
			}
		}
		return &Node{Kind: Tabs, Tabs: names}, rest[1:], nil

	default:
		name, rest := takeWindowName(s)
		if name == "" {
			return nil, "", fmt.Errorf("layout: invalid layout string at %q", s)
		}
		if !isKnownWindow(name) {
			return nil, "", fmt.Errorf("layout: unknown window %q", name)
		}
		return &Node{Kind: Leaf, Name: name}, rest, nil
	}
}

func kindLetter(k Kind) string {
	if k == Horizontal {
		return "h"
	}
	return "v"
}

// takeUntil splits s at the first occurrence of sep, returning the prefix
// and the remainder starting at sep (or "" if sep never appears).
func takeUntil(s string, sep byte) (prefix, rest string) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i:]
		}
	}
	return "", ""
}

func expectByte(s string, b byte) string {
	if len(s) > 0 && s[0] == b {
		return s[1:]
	}
	return ""
}

func expectClose(s string) (string, error) {
	if len(s) > 0 && s[0] == ')' {
		return s[1:], nil
	}
	return "", fmt.Errorf("layout: expected closing paren, got %q", s)
}

// takeWindowName consumes the longest known window-name prefix of s that
// is immediately followed by ',' or ')' or end of input, matching the
// original's longest-match-against-known-names scan.
func takeWindowName(s string) (name, rest string) {
	best := ""
	for _, w := range KnownWindows {
		if len(s) >= len(w) && s[:len(w)] == w {
			if len(s) == len(w) || s[len(w)] == ',' || s[len(w)] == ')' {
				if len(w) > len(best) {
					best = w
				}
			}
		}
	}
	return best, s[len(best):]
}
