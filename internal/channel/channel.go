// Package channel owns the single-writer, single-reader connection to the
// child debugger process: it spawns gdb, frames its output on the prompt
// sentinel, and arbitrates between the asynchronous event stream and
// synchronous request/response calls a projector needs.
package channel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/mpalmer/gf/internal/inferior"
)

// PromptSentinel terminates every response unit emitted by gdb once the
// "set prompt" bootstrap command has taken effect.
const PromptSentinel = "(gdb) "

// ReceiveBufferCap bounds the receive buffer. Responses never legitimately
// approach this size; exceeding it is the one fatal error path spec.md
// names for this subsystem.
const ReceiveBufferCap = 16 << 20 // 16 MiB

// SyncTimeout bounds how long a synchronous Call waits for its response.
const SyncTimeout = 1 * time.Second

// InterruptGrace is how long Call waits for an impending prompt after
// sending an interrupt signal to a running inferior.
const InterruptGrace = 1 * time.Second

var (
	// ErrNestedSyncCall is returned when Call is invoked while another
	// synchronous call already holds the mode mutex.
	ErrNestedSyncCall = errors.New("channel: nested synchronous call")
	// ErrClosed is returned by Send/Call once the channel has been closed.
	ErrClosed = errors.New("channel: closed")
)

// Unit is one response unit: all bytes gdb emitted up to and including the
// next prompt sentinel.
type Unit struct {
	Text      string
	SessionID uuid.UUID
}

// Channel owns the child process, its pipes, and the receive buffer.
type Channel struct {
	argv []string

	mu       sync.Mutex // protects everything below
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	sessID   uuid.UUID
	mode     Mode
	waiter   chan Unit // set while AwaitingResponse; reader delivers here
	closed   bool
	inSync   bool // true while a synchronous Call holds the mode mutex
	onAsync  func(Unit) // invoked for response units delivered in async mode
	lastResp string

	readerDone chan struct{}
}

// Open spawns argv[0] with argv[1:] as arguments, wires its stdio to fresh
// pipes, sends the deterministic "set prompt" bootstrap line, and starts
// the reader goroutine. onAsync is invoked (from the reader goroutine) for
// every response unit that arrives while the channel is not awaiting a
// synchronous reply; it must not block.
func Open(argv []string, onAsync func(Unit)) (*Channel, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("channel: empty argv")
	}
	c := &Channel{
		argv:       argv,
		sessID:     uuid.New(),
		onAsync:    onAsync,
		readerDone: make(chan struct{}),
	}
	if err := c.spawn(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Channel) spawn() error {
	p, err := inferior.Spawn(c.argv, os.Stderr)
	if err != nil {
		return fmt.Errorf("channel: start %s: %w", c.argv[0], err)
	}

	c.cmd = p.Cmd
	c.stdin = p.Stdin
	c.readerDone = make(chan struct{})

	go c.readLoop(p.Stdout)

	if err := c.Send([]byte("set prompt " + PromptSentinel)); err != nil {
		return fmt.Errorf("channel: send bootstrap prompt: %w", err)
	}
	return nil
}

// readLoop accumulates stdout into a bounded buffer and, after each read,
// searches for the prompt sentinel. Everything up to and including a found
// sentinel is one response unit; the buffer is reset and the unit handed
// off to either the in-flight waiter or the async callback.
func (c *Channel) readLoop(stdout io.Reader) {
	defer close(c.readerDone)
	r := bufio.NewReaderSize(stdout, 64*1024)
	buf := make([]byte, 0, ReceiveBufferCap)

	for {
		chunk := make([]byte, 4096)
		n, err := r.Read(chunk)
		if n > 0 {
			if len(buf)+n > ReceiveBufferCap {
				panic("channel: receive buffer overflow (fatal, see spec.md §7/§9)")
			}
			buf = append(buf, chunk[:n]...)
			for {
				idx := indexSentinel(buf)
				if idx < 0 {
					break
				}
				end := idx + len(PromptSentinel)
				unit := Unit{Text: string(buf[:end]), SessionID: c.currentSession()}
				buf = append([]byte(nil), buf[end:]...)
				c.deliver(unit)
			}
		}
		if err != nil {
			// Child exited (or pipe closed). The reader terminates; the
			// channel stays open so the caller can observe the exit and
			// decide whether to Restart.
			return
		}
	}
}

func indexSentinel(buf []byte) int {
	sentinel := []byte(PromptSentinel)
	n := len(sentinel)
	for i := 0; i+n <= len(buf); i++ {
		if string(buf[i:i+n]) == PromptSentinel {
			return i
		}
	}
	return 0 - 1
}

func (c *Channel) currentSession() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessID
}

// deliver hands a completed response unit to whichever consumer is
// eligible: a synchronous waiter bypasses the bus entirely; otherwise the
// unit is published via onAsync and the mode returns to Idle.
func (c *Channel) deliver(u Unit) {
	c.mu.Lock()
	waiter := c.waiter
	c.waiter = nil
	wasAwaiting := c.mode == ModeAwaitingResponse
	c.mode = ModeIdle
	c.lastResp = u.Text
	c.mu.Unlock()

	if wasAwaiting && waiter != nil {
		waiter <- u
		return
	}
	if c.onAsync != nil {
		c.onAsync(u)
	}
}

// Send writes bytes plus a trailing newline to the child's stdin. It does
// not change the mode; callers that expect a resuming command to flip the
// mode to Running should use MarkRunning.
func (c *Channel) Send(b []byte) error {
	c.mu.Lock()
	stdin := c.stdin
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	_, err := stdin.Write(append(append([]byte(nil), b...), '\n'))
	return err
}

// MarkRunning transitions Idle -> Running: call this after sending a
// command that may resume the inferior (spec.md §4.2).
func (c *Channel) MarkRunning() {
	c.mu.Lock()
	if c.mode == ModeIdle {
		c.mode = ModeRunning
	}
	c.mu.Unlock()
}

// Mode reports the current mode token.
func (c *Channel) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Close signals the child to exit, cancels the reader, and invalidates the
// handle. FIFOs owned by other packages are left as filesystem artifacts.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cmd := c.cmd
	c.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Signal(unix.SIGTERM)
	}
	_ = c.stdin.Close()
	<-c.readerDone
	if cmd != nil {
		_ = cmd.Wait()
	}
	return nil
}

// Restart kills the child with SIGKILL, discards the receive buffer,
// releases any in-flight waiter with a synthetic empty response, bumps the
// session id, and re-spawns argv.
func (c *Channel) Restart() error {
	c.mu.Lock()
	cmd := c.cmd
	waiter := c.waiter
	c.waiter = nil
	c.mode = ModeIdle
	c.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Signal(unix.SIGKILL)
	}
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
	<-c.readerDone
	if cmd != nil {
		_ = cmd.Wait()
	}
	if waiter != nil {
		waiter <- Unit{Text: "\n" + PromptSentinel + "\n"}
	}

	c.mu.Lock()
	c.sessID = uuid.New()
	c.mu.Unlock()

	return c.spawn()
}
