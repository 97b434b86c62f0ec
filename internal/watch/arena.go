package watch

import "fmt"

// node is one watch node. Parent/Children are arena indices, never
// pointers (spec.md §9 "cyclic graphs in the watch tree" redesign note).
type node struct {
	parent         int // -1 for roots
	key            PathElem
	depth          int
	format         rune // 0 = natural
	open           bool
	hasChildren    bool
	isArray        bool
	isDynamicArray bool
	children       []int
	typ            string
	value          string
	lastUpdate     uint64
	freed          bool
}

// Arena owns every watch node, addressed by index. Freeing a root returns
// its whole subtree's indices to a free list instead of leaking them.
type Arena struct {
	nodes         []node
	free          []int
	roots         []int
	dynamicArrays map[int]struct{}
	generation    uint64
}

// NewArena constructs an empty arena.
func NewArena() *Arena {
	return &Arena{dynamicArrays: make(map[int]struct{})}
}

func (a *Arena) alloc(n node) int {
	if len(a.free) > 0 {
		idx := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		a.nodes[idx] = n
		return idx
	}
	a.nodes = append(a.nodes, n)
	return len(a.nodes) - 1
}

// NewRoot creates a root node for a user-typed expression or a locals
// entry. The root's key is the expression string itself (spec.md §4.5
// "The root's key is the user-typed expression").
func (a *Arena) NewRoot(expr string) int {
	idx := a.alloc(node{parent: -1, key: fieldElem(expr), depth: 0})
	a.roots = append(a.roots, idx)
	return idx
}

// Node returns a read-only snapshot of the node at idx.
func (a *Arena) Node(idx int) (typ, value string, open, hasChildren, isArray, isDynamicArray bool, format rune) {
	n := a.nodes[idx]
	return n.typ, n.value, n.open, n.hasChildren, n.isArray, n.isDynamicArray, n.format
}

// Children returns the child indices of idx.
func (a *Arena) Children(idx int) []int {
	return append([]int(nil), a.nodes[idx].children...)
}

// Roots returns the current root indices in creation order.
func (a *Arena) Roots() []int { return append([]int(nil), a.roots...) }

// Depth returns the node's depth (root = 0).
func (a *Arena) Depth(idx int) int { return a.nodes[idx].depth }

// Parent returns the parent index, or -1 for a root.
func (a *Arena) Parent(idx int) int { return a.nodes[idx].parent }

// Path computes the root-to-node sequence of keys that uniquely identifies
// idx's expression (spec.md Glossary "Access path"). Array children whose
// parent is a dynamic array synthesize a "[i]" string key instead of an
// integer index (spec.md §4.5).
func (a *Arena) Path(idx int) []PathElem {
	var rev []PathElem
	for i := idx; i != -1; i = a.nodes[i].parent {
		n := a.nodes[i]
		if n.key.IsIndex && n.parent != -1 && a.nodes[n.parent].isDynamicArray {
			rev = append(rev, PathElem{Field: fmt.Sprintf("[%d]", n.key.Index)})
		} else {
			rev = append(rev, n.key)
		}
		if n.parent == -1 {
			break
		}
	}
	out := make([]PathElem, len(rev))
	for i, e := range rev {
		out[i] = rev[len(rev)-1-i]
		_ = e
	}
	return out
}

// SetFormat assigns a format override to idx. If idx is an array node, the
// override propagates to all element children and invalidates their
// cached values (spec.md §4.5 "Format overrides").
func (a *Arena) SetFormat(idx int, format rune) {
	a.nodes[idx].format = format
	if a.nodes[idx].isArray {
		for _, c := range a.nodes[idx].children {
			a.nodes[c].format = format
			a.nodes[c].value = ""
			a.nodes[c].lastUpdate = 0
		}
	}
}

// DeleteRoot removes a root and its entire subtree, returning the freed
// indices to the free list. Only roots may be deleted by the user
// (spec.md §3 invariant (d)).
func (a *Arena) DeleteRoot(idx int) {
	a.freeSubtree(idx)
	for i, r := range a.roots {
		if r == idx {
			a.roots = append(a.roots[:i], a.roots[i+1:]...)
			break
		}
	}
}

func (a *Arena) freeSubtree(idx int) {
	n := a.nodes[idx]
	for _, c := range n.children {
		a.freeSubtree(c)
	}
	delete(a.dynamicArrays, idx)
	a.nodes[idx] = node{freed: true}
	a.free = append(a.free, idx)
}

// ReplaceRoot tears down idx's subtree (keeping the root's key and arena
// slot) so it can be re-evaluated from scratch, per spec.md §4.5 "a root
// is ... submission replaces the root (tearing down its subtree)".
func (a *Arena) ReplaceRoot(idx int) {
	n := a.nodes[idx]
	for _, c := range n.children {
		a.freeSubtree(c)
	}
	a.nodes[idx].children = nil
	a.nodes[idx].hasChildren = false
	a.nodes[idx].isArray = false
	a.nodes[idx].isDynamicArray = false
	a.nodes[idx].typ = ""
	a.nodes[idx].value = ""
	a.nodes[idx].lastUpdate = 0
	delete(a.dynamicArrays, idx)
}
