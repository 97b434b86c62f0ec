package inferior

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpawnWiresStdinAndStdout(t *testing.T) {
	var errBuf bytes.Buffer
	p, err := Spawn([]string{"sh", "-c", "read line; echo \"got: $line\""}, &errBuf)
	require.NoError(t, err)
	require.NotNil(t, p.Cmd.Process)

	_, err = p.Stdin.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, p.Stdin.Close())

	scanner := bufio.NewScanner(p.Stdout)
	require.True(t, scanner.Scan())
	require.Equal(t, "got: hello", scanner.Text())

	require.NoError(t, p.Cmd.Wait())
}

func TestSpawnPlacesChildInNewSession(t *testing.T) {
	var errBuf bytes.Buffer
	p, err := Spawn([]string{"sh", "-c", "exit 0"}, &errBuf)
	require.NoError(t, err)
	require.NotNil(t, p.Cmd.SysProcAttr)
	require.True(t, p.Cmd.SysProcAttr.Setsid)
	require.NoError(t, p.Cmd.Wait())
}

func TestSpawnRejectsMissingBinary(t *testing.T) {
	var errBuf bytes.Buffer
	_, err := Spawn([]string{"gf-definitely-not-a-real-binary"}, &errBuf)
	require.Error(t, err)
}
