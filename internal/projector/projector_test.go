package projector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseStackHelloScenario(t *testing.T) {
	// Mirrors spec.md §8's "Hello" end-to-end scenario after `run`.
	text := "#0  main () at hello.c:4\n4\t    printf(\"hello!\\n\");\n(gdb) "
	stack := ParseStack(text)
	require.Len(t, stack, 1)
	require.Equal(t, "hello.c:4", stack[0].Location)
	require.Equal(t, "main", stack[0].Function)
	require.True(t, stack[0].Selected)
}

func TestParseStackSkipsMalformedLines(t *testing.T) {
	text := "garbage\n#0  0x0000555555555149 in main () at hello.c:4\n#1  0x00005555 in foo ()\n"
	stack := ParseStack(text)
	require.Len(t, stack, 2)
	require.Equal(t, "0x0000555555555149", stack[0].Address)
	require.Equal(t, "hello.c:4", stack[0].Location)
	require.Equal(t, "foo", stack[1].Function)
	require.Equal(t, "", stack[1].Location)
}

func TestSelectFrameMovesSelection(t *testing.T) {
	stack := []StackEntry{{Index: 0, Selected: true}, {Index: 1}}
	stack = SelectFrame(stack, 1)
	sel, ok := Selected(stack)
	require.True(t, ok)
	require.Equal(t, 1, sel.Index)
}

func TestParseBreakpointsLineAndWatchpoint(t *testing.T) {
	text := `Num     Type           Disp Enb Address            What
1       breakpoint     keep y   0x0000000000001149 in main at hello.c:4
	breakpoint already hit 1 time
2       hw watchpoint  keep y                      x
`
	bps := ParseBreakpoints(text, func(s string) string { return "/abs/" + s })
	require.Len(t, bps, 2)
	require.Equal(t, "hello.c", bps[0].ShortFile)
	require.Equal(t, "/abs/hello.c", bps[0].AbsoluteFile)
	require.Equal(t, 4, bps[0].Line)
	require.True(t, bps[0].Enabled)
	require.Equal(t, 1, bps[0].HitCount)

	require.Equal(t, 2, bps[1].WatchpointID)
	require.True(t, bps[1].Enabled)
}

func TestParseRegistersAndDiff(t *testing.T) {
	prev := ParseRegisters("rax 0x1 1\nrip 0x4005d0 0x4005d0 <main>\n")
	next := ParseRegisters("rax 0x2 2\nrip 0x4005d4 0x4005d4 <main+4>\n")

	diffed := DiffRegisters(prev, next)
	require.Len(t, diffed, 2)
	require.Equal(t, "rax", diffed[0].Name)
	require.True(t, diffed[0].Changed)
	require.Equal(t, "rip", diffed[1].Name)
	require.False(t, diffed[1].Changed, "instruction pointer is exempt from change highlight")
}

func TestParseThreadsCollapsesIndentAndMarksActive(t *testing.T) {
	text := "  Id   Target Id                     Frame \n" +
		"* 1    Thread 0x1 (LWP 100) \"a\" main () at hello.c:4\n" +
		"   2    Thread 0x2 (LWP 101) \"a\" foo () at hello.c:9\n"
	threads := ParseThreads(text)
	require.Len(t, threads, 2)
	require.True(t, threads[0].Active)
	require.Equal(t, 1, threads[0].ID)
	require.False(t, threads[1].Active)
	require.Equal(t, 2, threads[1].ID)
}

type fakeSourceView struct {
	loaded []string
	line   int
}

func (f *fakeSourceView) LoadFile(path string) error {
	f.loaded = append(f.loaded, path)
	return nil
}
func (f *fakeSourceView) FocusLine(line int) { f.line = line }

func TestPositionSkipsReloadUnlessPathOrMtimeChanged(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hello.c")
	require.NoError(t, os.WriteFile(file, []byte("int main(){return 0;}\n"), 0644))

	view := &fakeSourceView{}
	pos := &Position{}

	require.NoError(t, pos.Update(view, file+":1"))
	require.Len(t, view.loaded, 1)

	require.NoError(t, pos.Update(view, file+":1"))
	require.Len(t, view.loaded, 1, "no reload when path and mtime are unchanged")

	// Touch the file forward in time to force a reload.
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(file, future, future))
	require.NoError(t, pos.Update(view, file+":1"))
	require.Len(t, view.loaded, 2, "reload when mtime advances")
}
