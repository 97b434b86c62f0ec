package pipes

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mpalmer/gf/internal/bus"
)

func TestParseControlLine(t *testing.T) {
	msg, ok := ParseControlLine("f src/x.c")
	require.True(t, ok)
	require.Equal(t, byte('f'), msg.Kind)
	require.Equal(t, "src/x.c", msg.Arg)

	msg, ok = ParseControlLine("l 42")
	require.True(t, ok)
	require.Equal(t, byte('l'), msg.Kind)
	require.Equal(t, "42", msg.Arg)

	_, ok = ParseControlLine("x")
	require.False(t, ok)
}

func TestEnsureFIFOCreatesWorldReadWritePipe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "control")
	require.NoError(t, EnsureFIFO(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.Mode()&os.ModeNamedPipe != 0)
	require.Equal(t, os.FileMode(FIFOPerm), info.Mode().Perm())
}

func TestControlReaderPublishesFileAndLineJump(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "control")
	b := bus.New()
	ch := b.Subscribe(bus.KindControl)

	r := NewControlReader(path, b)
	require.NoError(t, r.Start())
	defer r.Stop()

	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = w.WriteString("f src/x.c\nl 42\n")
	require.NoError(t, err)
	w.Close()

	var got []ControlMessage
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case msg := <-ch:
			got = append(got, msg.Payload.(ControlMessage))
		case <-timeout:
			t.Fatalf("timed out waiting for control messages, got %d", len(got))
		}
	}
	require.Equal(t, byte('f'), got[0].Kind)
	require.Equal(t, "src/x.c", got[0].Arg)
	require.Equal(t, byte('l'), got[1].Kind)
	require.Equal(t, "42", got[1].Arg)
}
