package watch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEval struct {
	fields map[string]string // joined path -> gf_fields result
	values map[string]string
	types  map[string]string
	locals []string
}

func pathKey(path []PathElem) string {
	s := ""
	for _, e := range path {
		if e.IsIndex {
			s += fmt.Sprintf("[%d]", e.Index)
		} else {
			s += "." + e.Field
		}
	}
	return s
}

func (f *fakeEval) TypeOf(path []PathElem) (string, error) { return f.types[pathKey(path)], nil }
func (f *fakeEval) ValueOf(path []PathElem, format rune) (string, error) {
	return f.values[pathKey(path)], nil
}
func (f *fakeEval) Fields(path []PathElem) (string, error) { return f.fields[pathKey(path)], nil }
func (f *fakeEval) Locals() ([]string, error)               { return f.locals, nil }

func TestParseFieldsShapes(t *testing.T) {
	require.Equal(t, FieldsResult{Kind: FieldsArray, Count: 3}, ParseFields("(array) 3"))
	require.Equal(t, FieldsResult{Kind: FieldsDynamicArray, Count: 5}, ParseFields("(d_arr) 5"))
	require.Equal(t, FieldsResult{Kind: FieldsRecord, Fields: []string{"x", "y"}}, ParseFields("x\ny"))
}

func TestOpenMaterializesArrayChildren(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("buf")
	eval := &fakeEval{fields: map[string]string{".buf": "(array) 3"}}
	eng := NewEngine(arena, eval)

	require.NoError(t, eng.Open(root))
	children := arena.Children(root)
	require.Len(t, children, 3)

	path := arena.Path(children[1])
	require.Equal(t, []PathElem{fieldElem("buf"), indexElem(1)}, path)
}

func TestDynamicArrayChildUsesSyntheticIndexKey(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("list")
	eval := &fakeEval{fields: map[string]string{".list": "(d_arr) 2"}}
	eng := NewEngine(arena, eval)
	require.NoError(t, eng.Open(root))

	children := arena.Children(root)
	path := arena.Path(children[0])
	require.Equal(t, []PathElem{fieldElem("list"), fieldElem("[0]")}, path)
}

func TestDynamicArrayResyncGrowsAndIsIdempotent(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("list")
	eval := &fakeEval{fields: map[string]string{".list": "(d_arr) 3"}}
	eng := NewEngine(arena, eval)
	require.NoError(t, eng.Open(root))
	require.Len(t, arena.Children(root), 3)

	eval.fields[".list"] = "(d_arr) 5"
	require.NoError(t, eng.ResyncDynamicArrays())
	require.Len(t, arena.Children(root), 5)

	// Second resync without an intervening stop is a no-op (spec.md §8 property 4).
	before := arena.Children(root)
	require.NoError(t, eng.ResyncDynamicArrays())
	require.Equal(t, before, arena.Children(root))
}

func TestRefreshOpenedNodeShowsNoValue(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("x")
	eval := &fakeEval{fields: map[string]string{".x": "y"}, values: map[string]string{".x": "42"}}
	eng := NewEngine(arena, eval)
	require.NoError(t, eng.Open(root))

	require.NoError(t, eng.RefreshVisible(root, 1))
	_, value, _, _, _, _, _ := arena.Node(root)
	require.Equal(t, "", value, "opened nodes show no value; children carry the data")
}

func TestRefreshClosedLeafUsesRunningPlaceholder(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("x")
	eval := &fakeEval{values: map[string]string{".x": "42"}}
	eng := NewEngine(arena, eval)
	eng.Running = true

	require.NoError(t, eng.RefreshVisible(root, 1))
	_, value, _, _, _, _, _ := arena.Node(root)
	require.Equal(t, RunningPlaceholder, value)
}

func TestRefreshAllVisibleSkipsOpenRefreshesClosed(t *testing.T) {
	arena := NewArena()
	opened := arena.NewRoot("x")
	closed := arena.NewRoot("y")
	eval := &fakeEval{
		fields: map[string]string{".x": "z"},
		values: map[string]string{".x": "1", ".y": "2"},
	}
	eng := NewEngine(arena, eval)
	require.NoError(t, eng.Open(opened))

	require.NoError(t, eng.RefreshAllVisible())

	_, value, _, _, _, _, _ := arena.Node(opened)
	require.Equal(t, "", value, "opened root shows no value")
	_, value, _, _, _, _, _ = arena.Node(closed)
	require.Equal(t, "2", value)

	eval.values[".y"] = "3"
	require.NoError(t, eng.RefreshAllVisible())
	_, value, _, _, _, _, _ = arena.Node(closed)
	require.Equal(t, "3", value, "a later call with a fresh generation re-evaluates again")
}

func TestFormatOverridePropagatesToArrayChildren(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("buf")
	eval := &fakeEval{fields: map[string]string{".buf": "(array) 2"}}
	eng := NewEngine(arena, eval)
	require.NoError(t, eng.Open(root))

	arena.SetFormat(root, 'x')
	for _, c := range arena.Children(root) {
		_, _, _, _, _, _, format := arena.Node(c)
		require.Equal(t, 'x', format)
	}
}

func TestAccessPathStableAcrossOpenClose(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("s")
	eval := &fakeEval{
		fields: map[string]string{".s": "a\nb"},
		values: map[string]string{".s.a": "1"},
	}
	eng := NewEngine(arena, eval)
	require.NoError(t, eng.Open(root))
	children := arena.Children(root)

	require.NoError(t, eng.RefreshVisible(children[0], 1))
	_, before, _, _, _, _, _ := arena.Node(children[0])

	eng.Close(children[0])
	require.NoError(t, eng.Open(children[0])) // first Open of the child: materializes its (empty) field list
	_, after, _, _, _, _, _ := arena.Node(children[0])
	require.Equal(t, before, after, "the node's cached value is unaffected by closing/opening its subtree")
	require.Equal(t, []PathElem{fieldElem("s"), fieldElem("a")}, arena.Path(children[0]), "access path is unchanged")
}

func TestTypeChangeRebuildsSubtreePreservingKey(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot("p")
	eval := &fakeEval{
		fields: map[string]string{".p": "a"},
		types:  map[string]string{".p": "int"},
	}
	eng := NewEngine(arena, eval)
	require.NoError(t, eng.Open(root))
	require.NoError(t, eng.RefreshTypes())
	require.Len(t, arena.Children(root), 1)

	eval.types[".p"] = "struct foo"
	require.NoError(t, eng.RefreshTypes())
	require.Empty(t, arena.Children(root), "type change tears down the subtree")
	require.Equal(t, []PathElem{fieldElem("p")}, arena.Path(root), "root key is preserved")
}

func TestLocalsSyncPreservesOrderOfPersistingNames(t *testing.T) {
	arena := NewArena()
	lv := NewLocalsView(arena)

	lv.Sync([]string{"a", "b", "c"})
	require.Equal(t, []string{"a", "b", "c"}, lv.Names())

	lv.Sync([]string{"a", "c", "d"})
	require.Equal(t, []string{"a", "c", "d"}, lv.Names())
}

func TestInspectLineExtractsUpToNineExpressions(t *testing.T) {
	eval := &fakeEval{values: map[string]string{".x": "1", ".y->z": "2"}}
	got, err := InspectLine(eval, "int x = y->z + 1;")
	require.NoError(t, err)
	var exprs []string
	for _, g := range got {
		exprs = append(exprs, g.Expr)
	}
	require.Contains(t, exprs, "x")
	require.Contains(t, exprs, "y->z")
}
