package pipes

import (
	"bufio"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mpalmer/gf/internal/bus"
)

// LogReader owns the log-pipe goroutine (spec.md §4.7): it polls the FIFO
// with LogPollTimeout, sleeping briefly on hangup to avoid spinning, and
// wraps each non-empty read with the target log viewer before posting it
// on the bus.
type LogReader struct {
	Path   string
	Target string
	Bus    *bus.Bus

	stop chan struct{}
	done chan struct{}
}

// NewLogReader builds a reader for the FIFO at path, tagging every line
// with target (the log-viewer element it's destined for).
func NewLogReader(path, target string, b *bus.Bus) *LogReader {
	return &LogReader{Path: path, Target: target, Bus: b, stop: make(chan struct{}), done: make(chan struct{})}
}

// Start creates the FIFO if absent and launches the polling goroutine.
func (r *LogReader) Start() error {
	if err := EnsureFIFO(r.Path); err != nil {
		return err
	}
	go r.loop()
	return nil
}

func (r *LogReader) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		f, err := os.OpenFile(r.Path, os.O_RDONLY|unix.O_NONBLOCK, os.ModeNamedPipe)
		if err != nil {
			time.Sleep(HangupBackoff)
			continue
		}

		ready, perr := pollReadable(int(f.Fd()), LogPollTimeout)
		if perr != nil || !ready {
			f.Close()
			time.Sleep(HangupBackoff)
			continue
		}

		scanner := bufio.NewScanner(f)
		read := false
		for scanner.Scan() {
			read = true
			r.Bus.Publish(bus.Message{Kind: bus.KindLog, Payload: LogLine{Target: r.Target, Text: scanner.Text()}})
		}
		f.Close()
		if !read {
			// Writer closed without sending anything (hangup): back off
			// before re-polling instead of spinning (spec.md §4.7).
			time.Sleep(HangupBackoff)
		}
	}
}

// pollReadable waits up to timeout for fd to become readable.
func pollReadable(fd int, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		return false, err
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}

// Stop terminates the reader goroutine.
func (r *LogReader) Stop() {
	close(r.stop)
	<-r.done
}
