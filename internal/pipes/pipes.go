// Package pipes implements the two named FIFOs that let external editors
// and the inferior itself post commands and log lines into gf (spec.md
// §4.7). Both are created (if absent) with world-read/write permission
// bits. The control reader also keeps an fsnotify watch on its pipe's
// directory and recreates the control pipe if something deletes the path
// out from under it; the log pipe is not recreated.
package pipes

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sys/unix"

	"github.com/mpalmer/gf/internal/bus"
)

// FIFOPerm is the world-read/write permission bits spec.md §4.7 requires.
const FIFOPerm = 0o666

// LogPollTimeout bounds how long the log-pipe reader blocks in poll
// (spec.md §4.7).
const LogPollTimeout = 10 * time.Second

// HangupBackoff is how long the log-pipe reader sleeps after a hangup
// before re-polling, to avoid spinning (spec.md §4.7).
const HangupBackoff = 200 * time.Millisecond

// ControlMessage is a single parsed line from the control FIFO (spec.md
// §3 "Control pipe message").
type ControlMessage struct {
	Kind byte   // 'f', 'l', or 'c'
	Arg  string
}

// LogLine is a single line read from the log FIFO, paired with an opaque
// target identifying which viewer it should be appended to (spec.md §4.7).
type LogLine struct {
	Target string
	Text   string
}

// EnsureFIFO creates path as a FIFO with FIFOPerm if it doesn't already
// exist.
func EnsureFIFO(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Chmod(path, FIFOPerm)
	}
	if err := unix.Mkfifo(path, FIFOPerm); err != nil {
		return err
	}
	return os.Chmod(path, FIFOPerm)
}

// ParseControlLine implements spec.md §3's "first two characters select a
// sub-command": `f ` sets current file, `l ` sets current line, `c ` runs
// a command.
func ParseControlLine(line string) (ControlMessage, bool) {
	if len(line) < 2 {
		return ControlMessage{}, false
	}
	switch line[0] {
	case 'f', 'l', 'c':
		if line[1] != ' ' {
			return ControlMessage{}, false
		}
		return ControlMessage{Kind: line[0], Arg: line[2:]}, true
	default:
		return ControlMessage{}, false
	}
}

// ControlReader owns the control-pipe goroutine (spec.md §4.7): it opens
// the FIFO, reads lines until the writer closes it, posts a Control
// message per valid line, then closes and reopens.
type ControlReader struct {
	Path string
	Bus  *bus.Bus

	stop chan struct{}
	done chan struct{}
}

// NewControlReader builds a reader for the FIFO at path.
func NewControlReader(path string, b *bus.Bus) *ControlReader {
	return &ControlReader{Path: path, Bus: b, stop: make(chan struct{}), done: make(chan struct{})}
}

// Start launches the reader goroutine. It also watches the FIFO's
// directory with fsnotify so an externally-deleted pipe is recreated
// instead of wedging the reader.
func (r *ControlReader) Start() error {
	if err := EnsureFIFO(r.Path); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(r.Path)); err != nil {
		watcher.Close()
		return err
	}
	go r.loop(watcher)
	return nil
}

func (r *ControlReader) loop(watcher *fsnotify.Watcher) {
	defer close(r.done)
	defer watcher.Close()

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name == r.Path && (ev.Op&(fsnotify.Remove|fsnotify.Rename)) != 0 {
					if err := EnsureFIFO(r.Path); err != nil {
						slog.Warn("pipes: recreate control fifo failed", "err", err)
					}
				}
			case <-r.stop:
				return
			}
		}
	}()

	for {
		select {
		case <-r.stop:
			return
		default:
		}
		f, err := os.OpenFile(r.Path, os.O_RDONLY, os.ModeNamedPipe)
		if err != nil {
			time.Sleep(HangupBackoff)
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if msg, ok := ParseControlLine(line); ok {
				r.Bus.Publish(bus.Message{Kind: bus.KindControl, Payload: msg})
			}
		}
		f.Close()
	}
}

// Stop terminates the reader goroutine.
func (r *ControlReader) Stop() {
	close(r.stop)
	<-r.done
}
