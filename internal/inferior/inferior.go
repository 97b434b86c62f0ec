// Package inferior factors the child-process spawn contract (spec.md §6
// "Child process") out of internal/channel so it can be exercised without
// a real gdb binary.
package inferior

import (
	"io"
	"os/exec"
	"syscall"
)

// Pipes holds a spawned child and its two pipes: stdin and stdout. The
// child's stderr is not a pipe; Spawn attaches it to the caller's writer.
type Pipes struct {
	Cmd    *exec.Cmd
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
}

// Spawn builds argv[0] with argv[1:], wires fresh stdin/stdout pipes,
// leaves stderr attached to errw, places the child in a new session
// (spec.md §6: "the child is placed in a new session"), and starts it.
func Spawn(argv []string, errw io.Writer) (*Pipes, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stderr = errw

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &Pipes{Cmd: cmd, Stdin: stdin, Stdout: stdout}, nil
}
