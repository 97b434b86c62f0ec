package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeDebugger is a tiny shell script that mimics gdb's prompt-framed
// protocol closely enough to exercise the channel: it echoes "ok" after
// every line it reads, always terminated by the sentinel.
const fakeDebuggerScript = `
while IFS= read -r line; do
  if [ "$line" = "set prompt (gdb) " ]; then
    printf '(gdb) '
  elif [ "$line" = "quit_now" ]; then
    exit 0
  else
    printf 'ok: %s\n(gdb) ' "$line"
  fi
done
`

func openFake(t *testing.T, onAsync func(Unit)) *Channel {
	t.Helper()
	c, err := Open([]string{"sh", "-c", fakeDebuggerScript}, onAsync)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpenStartsInIdleMode(t *testing.T) {
	c := openFake(t, func(Unit) {})
	require.Equal(t, ModeIdle, c.Mode())
}

func TestCallReturnsResponseUnit(t *testing.T) {
	c := openFake(t, func(Unit) {})
	u, err := c.Call("info registers")
	require.NoError(t, err)
	require.Contains(t, u.Text, "ok: info registers")
	require.Contains(t, u.Text, PromptSentinel)
}

func TestCallTimesOutWithSyntheticResponse(t *testing.T) {
	// A script that never replies exercises the 1s timeout path.
	c, err := Open([]string{"sh", "-c", "cat >/dev/null"}, func(Unit) {})
	require.NoError(t, err)
	defer c.Close()

	start := time.Now()
	u, err := c.Call("run")
	require.NoError(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, "\n"+PromptSentinel+"\n", u.Text)
}

func TestNestedSyncCallRejected(t *testing.T) {
	c := openFake(t, func(Unit) {})
	c.mu.Lock()
	c.inSync = true
	c.mu.Unlock()

	_, err := c.Call("bt 50")
	require.ErrorIs(t, err, ErrNestedSyncCall)

	c.mu.Lock()
	c.inSync = false
	c.mu.Unlock()
}

func TestRestartBumpsSessionAndResetsMode(t *testing.T) {
	c := openFake(t, func(Unit) {})
	before := c.currentSession()

	require.NoError(t, c.Restart())

	after := c.currentSession()
	require.NotEqual(t, before, after)
	require.Equal(t, ModeIdle, c.Mode())
}
