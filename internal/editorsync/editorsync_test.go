package editorsync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	responses map[string]string
}

func (f fakeRunner) Run(command string) (string, error) {
	for prefix, resp := range f.responses {
		if strings.Contains(command, prefix) {
			return resp, nil
		}
	}
	return "", nil
}

func TestSyncWithAbsoluteBufferName(t *testing.T) {
	r := fakeRunner{responses: map[string]string{
		`execute(\"ls\")`: `1 %a   "/home/user/src/main.c"  line 42`,
	}}
	pos, err := Sync(r, "GVIM1")
	require.NoError(t, err)
	require.Equal(t, "/home/user/src/main.c", pos.File)
	require.Equal(t, 42, pos.Line)
}

func TestSyncResolvesRelativeBufferNameAgainstPWD(t *testing.T) {
	r := fakeRunner{responses: map[string]string{
		`execute(\"ls\")`:  `1 %a   "main.c"  line 7`,
		`execute(\"pwd\")`: "/home/user/src\n",
	}}
	pos, err := Sync(r, "GVIM1")
	require.NoError(t, err)
	require.Equal(t, "/home/user/src/main.c", pos.File)
	require.Equal(t, 7, pos.Line)
}

func TestSyncFailsOnUnparsableOutput(t *testing.T) {
	r := fakeRunner{responses: map[string]string{}}
	_, err := Sync(r, "GVIM1")
	require.Error(t, err)
}
