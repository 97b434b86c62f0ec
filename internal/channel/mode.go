package channel

import (
	"time"

	"golang.org/x/sys/unix"
)

// Mode is the channel's mode token (spec.md §3 "Mode token").
type Mode int

const (
	ModeIdle Mode = iota
	ModeRunning
	ModeAwaitingResponse
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeRunning:
		return "running"
	case ModeAwaitingResponse:
		return "awaiting-response"
	default:
		return "unknown"
	}
}

// Call is the synchronous request/response entry point. If the channel was
// Running, it first sends an interrupt and waits up to InterruptGrace for
// the impending prompt, then serializes on the mode mutex, sends cmd, and
// blocks on a single-slot rendezvous channel (the Go analogue of the
// source's condition variable, per spec.md §9's redesign note) bounded by
// SyncTimeout. A timeout resolves to an empty synthetic response so
// projectors degrade gracefully instead of blocking forever.
func (c *Channel) Call(cmd string) (Unit, error) {
	if !c.tryEnterSync() {
		return Unit{}, ErrNestedSyncCall
	}
	defer c.leaveSync()

	c.mu.Lock()
	wasRunning := c.mode == ModeRunning
	c.mu.Unlock()

	if wasRunning {
		c.interruptAndWait()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Unit{}, ErrClosed
	}
	waiter := make(chan Unit, 1)
	c.waiter = waiter
	c.mode = ModeAwaitingResponse
	c.mu.Unlock()

	if err := c.Send([]byte(cmd)); err != nil {
		return Unit{}, err
	}

	select {
	case u := <-waiter:
		return u, nil
	case <-time.After(SyncTimeout):
		c.mu.Lock()
		c.waiter = nil
		c.mode = ModeIdle
		c.mu.Unlock()
		return Unit{Text: "\n" + PromptSentinel + "\n"}, nil
	}
}

// interruptAndWait sends SIGINT to the child and gives it InterruptGrace to
// emit the prompt that follows an interrupted inferior, per spec.md §4.2.
func (c *Channel) interruptAndWait() {
	c.mu.Lock()
	cmd := c.cmd
	c.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(unix.SIGINT)

	deadline := time.Now().Add(InterruptGrace)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		idle := c.mode == ModeIdle
		c.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (c *Channel) tryEnterSync() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inSync {
		return false
	}
	c.inSync = true
	return true
}

func (c *Channel) leaveSync() {
	c.mu.Lock()
	c.inSync = false
	c.mu.Unlock()
}
