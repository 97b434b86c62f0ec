// Package automation scripts a DebuggerSession end to end for headless
// regression tests (spec.md §2 row I, "Automation Hook"): feed canned
// input through the router/mode arbiter pair, wait for the child to
// settle back to idle, then assert on whatever projector state the test
// cares about. Grounded on a spawn-and-poll-for-events integration test
// shape, adapted from "drain an event channel with a timeout" to "poll
// Channel.Mode() with a timeout" since gf's mode arbiter, not a channel of
// events, is what tells a script when a step has finished.
package automation

import (
	"fmt"
	"time"

	"github.com/mpalmer/gf/internal/channel"
	"github.com/mpalmer/gf/internal/router"
	"github.com/mpalmer/gf/internal/session"
)

// DefaultStepTimeout bounds how long Run waits for a single step to settle
// before treating it as a failure.
const DefaultStepTimeout = 2 * time.Second

// Step is one scripted input to drive through a session, mirroring a line
// a user would type into the console.
type Step struct {
	Input   string
	Timeout time.Duration // 0 means DefaultStepTimeout
	Assert  func(*session.DebuggerSession) error
}

// Hook drives a *session.DebuggerSession through a list of Steps.
type Hook struct {
	Session *session.DebuggerSession
	Host    router.Host
	Poll    time.Duration // how often Run re-checks Channel.Mode(); 0 means 5ms
}

// New builds a Hook over an already-open session and the Host it should
// report UI callbacks to (typically a recording fake in tests).
func New(s *session.DebuggerSession, host router.Host) *Hook {
	return &Hook{Session: s, Host: host}
}

// Run executes every step in order, stopping at the first error.
func (h *Hook) Run(steps []Step) error {
	for i, st := range steps {
		if err := h.Session.Execute(h.Host, st.Input); err != nil {
			return fmt.Errorf("automation: step %d %q: %w", i, st.Input, err)
		}

		timeout := st.Timeout
		if timeout == 0 {
			timeout = DefaultStepTimeout
		}
		if !h.waitIdle(timeout) {
			return fmt.Errorf("automation: step %d %q: gdb did not return to idle within %s", i, st.Input, timeout)
		}

		if st.Assert != nil {
			if err := st.Assert(h.Session); err != nil {
				return fmt.Errorf("automation: step %d %q: %w", i, st.Input, err)
			}
		}
	}
	return nil
}

// waitIdle polls the channel's mode until it reports Idle or timeout
// elapses. A command that never produces a passthrough/async response
// (e.g. a meta-command resolved entirely through synchronous Calls)
// leaves the mode at Idle throughout, so the first poll returns true
// immediately.
func (h *Hook) waitIdle(timeout time.Duration) bool {
	poll := h.Poll
	if poll == 0 {
		poll = 5 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		if h.Session.Channel.Mode() == channel.ModeIdle {
			return true
		}
		if time.Now().After(deadline) {
			return h.Session.Channel.Mode() == channel.ModeIdle
		}
		time.Sleep(poll)
	}
}
