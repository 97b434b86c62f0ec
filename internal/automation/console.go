package automation

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mpalmer/gf/internal/router"
	"github.com/mpalmer/gf/internal/session"
)

// Console is a readline-driven REPL fallback for driving a session without
// a full terminal renderer, grounded on haricheung-agentic-shell's
// cmd/agsh readline loop: prompt, read a line, run it, print any error,
// repeat until EOF or "exit"/"quit". Console output itself goes through
// Host.AppendConsole.
type Console struct {
	Session *session.DebuggerSession
	Host    router.Host

	// AfterStep, if set, runs after every successfully executed line (e.g.
	// re-projecting stack/watches/locals for display). Run does not wait
	// for the channel to settle back to Idle before calling it, since a
	// resuming command (run/c/n/s) leaves the child Running with no
	// response yet; AfterStep must check Channel.Mode() itself and skip
	// work it isn't safe to do yet. A cmd/gf binary wires this for the
	// synchronous case and drives the resuming case off the session's bus
	// instead.
	AfterStep func(*session.DebuggerSession) error
}

// NewConsole builds a Console over an already-open session.
func NewConsole(s *session.DebuggerSession, host router.Host) *Console {
	return &Console{Session: s, Host: host}
}

// Run reads lines from stdin until EOF or "exit"/"quit", executing each
// through the session and writing any error to out. Ctrl-C discards the
// current line and keeps reading.
func (c *Console) Run(out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "(gf) ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("automation: readline init: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil { // io.EOF or similar
			return nil
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		if err := c.Session.Execute(c.Host, input); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if c.AfterStep != nil {
			if err := c.AfterStep(c.Session); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

// RunStdin is the binary's default entry point for the headless console.
func RunStdin(s *session.DebuggerSession, host router.Host) error {
	return NewConsole(s, host).Run(os.Stdout)
}
