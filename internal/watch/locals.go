package watch

// LocalsView syncs a separate set of roots to the inferior's current local
// variables (spec.md §4.5 "Locals mode"). On each refresh, gf_locals()
// names are diffed against the current roots: missing ones are deleted,
// new ones appended, and names that persist keep their row position
// (spec.md §8 property 6).
type LocalsView struct {
	Arena *Arena
	order []string // name at each root index position, parallel to roots
}

// NewLocalsView builds a locals view over arena.
func NewLocalsView(arena *Arena) *LocalsView {
	return &LocalsView{Arena: arena}
}

// Sync diffs names against the current roots, preserving row order for
// names that persist.
func (lv *LocalsView) Sync(names []string) {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	// Delete roots whose name vanished.
	roots := lv.Arena.Roots()
	var keptOrder []string
	for i, idx := range roots {
		name := lv.order[i]
		if !present[name] {
			lv.Arena.DeleteRoot(idx)
			continue
		}
		keptOrder = append(keptOrder, name)
	}
	lv.order = keptOrder

	existing := make(map[string]bool, len(lv.order))
	for _, n := range lv.order {
		existing[n] = true
	}
	for _, n := range names {
		if !existing[n] {
			lv.Arena.NewRoot(n)
			lv.order = append(lv.order, n)
			existing[n] = true
		}
	}
}

// Names returns the current ordered list of root names.
func (lv *LocalsView) Names() []string {
	return append([]string(nil), lv.order...)
}
