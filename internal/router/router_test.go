package router

import (
	"testing"

	"github.com/mpalmer/gf/internal/channel"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	sent    []string
	calls   []string
	marked  bool
	reply   channel.Unit
}

func (f *fakeDispatcher) Call(cmd string) (channel.Unit, error) {
	f.calls = append(f.calls, cmd)
	return f.reply, nil
}
func (f *fakeDispatcher) Send(b []byte) error {
	f.sent = append(f.sent, string(b))
	return nil
}
func (f *fakeDispatcher) MarkRunning() { f.marked = true }

type fakeHost struct {
	focused []string
	console []string
	file    string
	line    int
	text    string
	ok      bool
	chdir   string
	lines   []string
}

func (h *fakeHost) Focus(w string)        { h.focused = append(h.focused, w) }
func (h *fakeHost) AppendConsole(s string) { h.console = append(h.console, s) }
func (h *fakeHost) CurrentSource() (string, int, string, bool) {
	return h.file, h.line, h.text, h.ok
}
func (h *fakeHost) Chdir(path string) error {
	h.chdir = path
	return nil
}
func (h *fakeHost) SourceLines(file string) ([]string, error) {
	return h.lines, nil
}

func TestClassifyMetaPresetPassthrough(t *testing.T) {
	r := New(map[string]string{"build": "make; c &"})

	kind, _ := r.Classify("gf-step")
	require.Equal(t, KindMeta, kind)

	kind, seq := r.Classify("build")
	require.Equal(t, KindPreset, kind)
	require.Equal(t, "make; c &", seq)

	kind, _ = r.Classify("print x")
	require.Equal(t, KindPassthrough, kind)
}

func TestStepNextFlipWithDisassemblyMode(t *testing.T) {
	r := New(nil)
	d := &fakeDispatcher{}
	h := &fakeHost{}

	require.NoError(t, r.Execute(d, h, "gf-step"))
	require.NoError(t, r.Execute(d, h, "gf-next"))
	require.Equal(t, []string{"s", "n"}, d.sent)

	r.DisassemblyMode = true
	require.NoError(t, r.Execute(d, h, "gf-step"))
	require.NoError(t, r.Execute(d, h, "gf-next"))
	require.Equal(t, []string{"s", "n", "stepi", "nexti"}, d.sent)
}

func TestPresetBlockSyncAndAsyncSegments(t *testing.T) {
	r := New(map[string]string{"build-and-run": "make;run &"})
	d := &fakeDispatcher{reply: channel.Unit{Text: "build ok\n(gdb) "}}
	h := &fakeHost{}

	require.NoError(t, r.Execute(d, h, "build-and-run"))
	require.Equal(t, []string{"make"}, d.calls)
	require.Equal(t, []string{"run"}, d.sent)
	require.True(t, d.marked)
	require.Contains(t, h.console, "build ok\n(gdb) ")
}

func TestSwitchToFocusesWindow(t *testing.T) {
	r := New(nil)
	d := &fakeDispatcher{}
	h := &fakeHost{}
	require.NoError(t, r.Execute(d, h, "gf-switch-to disassembly"))
	require.Equal(t, []string{"disassembly"}, h.focused)
}

func TestGetPWDParsesCompilationDirectory(t *testing.T) {
	r := New(nil)
	d := &fakeDispatcher{reply: channel.Unit{Text: "Current source file is hello.c\nCompilation directory is /home/x/proj\n(gdb) "}}
	h := &fakeHost{}
	require.NoError(t, r.Execute(d, h, "gf-get-pwd"))
	require.Equal(t, "/home/x/proj", h.chdir)
}

func TestStepOutOfBlockFindsClosingBraceByIndentation(t *testing.T) {
	r := New(nil)
	d := &fakeDispatcher{reply: channel.Unit{Text: "Temporary breakpoint 1\n(gdb) "}}
	h := &fakeHost{
		file: "hello.c",
		line: 4,
		ok:   true,
		lines: []string{
			"int main() {",   // 1
			"    int x = 1;", // 2
			"    if (x) {",   // 3
			"        x++;",   // 4 (current line, inside the if-block)
			"    }",          // 5 closing brace of the if-block, less indented than line 4
			"    return x;",  // 6
			"}",              // 7
		},
	}

	require.NoError(t, r.Execute(d, h, "gf-step-out-of-block"))
	require.Equal(t, "tbreak hello.c:6", d.calls[0], "temporary breakpoint goes one past the closing brace")
}

func TestToggleBreakpointParity(t *testing.T) {
	d := &fakeDispatcher{}
	h := &fakeHost{}
	existing := []BreakpointRef{{File: "hello.c", Line: 4}}

	require.NoError(t, ToggleBreakpointAtLine(d, h, "hello.c", 4, existing))
	require.Equal(t, "clear hello.c:4", d.sent[0])

	require.NoError(t, ToggleBreakpointAtLine(d, h, "hello.c", 4, nil))
	require.Equal(t, "break hello.c:4", d.sent[1])
}
