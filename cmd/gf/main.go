package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mpalmer/gf/internal/automation"
	"github.com/mpalmer/gf/internal/bus"
	"github.com/mpalmer/gf/internal/channel"
	"github.com/mpalmer/gf/internal/config"
	"github.com/mpalmer/gf/internal/layout"
	"github.com/mpalmer/gf/internal/logger"
	"github.com/mpalmer/gf/internal/pipes"
	"github.com/mpalmer/gf/internal/router"
	"github.com/mpalmer/gf/internal/session"
	"github.com/mpalmer/gf/internal/termui"
	"github.com/spf13/cobra"
)

func main() {
	var logLevel string
	var logFile string

	root := &cobra.Command{
		Use:   "gf [gdb-args...]",
		Short: "gf — an interactive front end for gdb",
		Long: "gf drives a gdb child process and projects its stack, breakpoints,\n" +
			"registers, threads, and watch expressions onto a terminal view.\n" +
			"Arguments after the binary name are forwarded as additional gdb\n" +
			"arguments. There are no other command-line flags besides the ones\n" +
			"below.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logLevel, logFile); err != nil {
				return fmt.Errorf("gf: init logger: %w", err)
			}
			return runDebugger(args)
		},
	}
	root.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.Flags().StringVar(&logFile, "log-file", "", "optional log file path")
	root.AddCommand(configCmd(), layoutCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runDebugger wires one session end to end: load settings, spawn gdb,
// start the control/log pipe readers, and drive the headless console loop
// with a minimal terminal renderer attached.
func runDebugger(gdbArgs []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("gf: getwd: %w", err)
	}

	loader := config.NewLoader(wd)
	cfg, err := loader.Load(wd)
	if err != nil {
		return fmt.Errorf("gf: load config: %w", err)
	}

	if cfg.UI.Layout != "" {
		if _, err := layout.Parse(cfg.UI.Layout); err != nil {
			return fmt.Errorf("gf: layout: %w", err)
		}
	}

	gdbPath := cfg.GDB.Path
	if gdbPath == "" {
		gdbPath = "gdb"
	}
	argv := append([]string{gdbPath}, append(append([]string{}, cfg.GDB.Arguments...), gdbArgs...)...)

	b := bus.New()
	s, err := session.Open(argv, cfg, b)
	if err != nil {
		return fmt.Errorf("gf: spawn gdb: %w", err)
	}
	defer s.Close()

	startPipes(cfg, b)

	renderer := termui.New(os.Stdout)
	defer renderer.Flush()

	host := &consoleHost{session: s}

	go runEventLoop(s, host, renderer, b)

	console := automation.NewConsole(s, host)
	console.AfterStep = func(s *session.DebuggerSession) error {
		// A resuming command (run/c/n/s, or an async preset segment) has
		// only sent its input; the child is still Running and hasn't
		// produced its response unit yet, so projector state isn't safe
		// to touch (Channel.Call would SIGINT the inferior mid-flight).
		// runEventLoop's bus.KindResponse subscription refreshes once the
		// unit actually arrives. Only a command that settled synchronously
		// (a meta-command, or a synchronous preset segment) is refreshed
		// here.
		if s.Channel.Mode() != channel.ModeIdle {
			return nil
		}
		return refreshAndRender(s, renderer)
	}
	return console.Run(os.Stdout)
}

// refreshAndRender re-projects stack/breakpoints/registers/threads/watches/
// locals against the view and flushes it. Callers must only invoke this once
// the channel has actually returned to Idle.
func refreshAndRender(s *session.DebuggerSession, renderer *termui.Renderer) error {
	if err := s.RefreshAll(renderer); err != nil {
		return err
	}
	if err := s.RefreshWatches(); err != nil {
		return err
	}
	if err := s.RefreshLocals(); err != nil {
		return err
	}
	return renderer.Flush()
}

// runEventLoop is the bus consumer spec.md §2/§4.2/§4.4 describe: a
// completed response unit (the child settling back to Idle after a
// resuming command) drives the projector refresh, and a control-pipe
// message applies the file/line/command sub-commands spec.md §3 names.
// It runs for the session's lifetime, so cmd/gf launches it as its own
// goroutine rather than blocking runDebugger's console loop on it.
func runEventLoop(s *session.DebuggerSession, host router.Host, renderer *termui.Renderer, b *bus.Bus) {
	responses := b.Subscribe(bus.KindResponse)
	controls := b.Subscribe(bus.KindControl)
	for {
		select {
		case <-responses:
			if err := refreshAndRender(s, renderer); err != nil {
				logger.Warn("event loop: refresh after response", "err", err)
			}
		case msg := <-controls:
			ctrl, ok := msg.Payload.(pipes.ControlMessage)
			if !ok {
				continue
			}
			if err := applyControl(s, host, renderer, ctrl); err != nil {
				logger.Warn("event loop: apply control message", "kind", string(ctrl.Kind), "err", err)
			}
		}
	}
}

// applyControl implements spec.md §3's control-pipe sub-commands: 'f' loads
// a file into the source view, 'l' focuses a line in the file already
// loaded, and 'c' runs arbitrary input through the router exactly as if it
// had been typed into the console.
func applyControl(s *session.DebuggerSession, host router.Host, renderer *termui.Renderer, ctrl pipes.ControlMessage) error {
	switch ctrl.Kind {
	case 'f':
		if err := renderer.LoadFile(ctrl.Arg); err != nil {
			return err
		}
	case 'l':
		line, err := strconv.Atoi(strings.TrimSpace(ctrl.Arg))
		if err != nil {
			return fmt.Errorf("control line %q: %w", ctrl.Arg, err)
		}
		renderer.FocusLine(line)
	case 'c':
		if err := s.Execute(host, ctrl.Arg); err != nil {
			return err
		}
	}
	return renderer.Flush()
}

// startPipes brings up the control and log FIFOs named in cfg, logging and
// continuing (rather than failing the whole session) if a pipe can't be
// created — spec.md §4.7 treats a missing pipe as a degraded-but-running
// condition, not a fatal error.
func startPipes(cfg *config.Config, b *bus.Bus) {
	if cfg.Pipe.ControlPath != "" {
		if err := pipes.EnsureFIFO(cfg.Pipe.ControlPath); err != nil {
			logger.Warn("control pipe unavailable", "path", cfg.Pipe.ControlPath, "err", err)
		} else {
			cr := pipes.NewControlReader(cfg.Pipe.ControlPath, b)
			if err := cr.Start(); err != nil {
				logger.Warn("control pipe reader failed to start", "err", err)
			}
		}
	}
	for target, path := range cfg.Pipe.LogPaths {
		if err := pipes.EnsureFIFO(path); err != nil {
			logger.Warn("log pipe unavailable", "target", target, "path", path, "err", err)
			continue
		}
		lr := pipes.NewLogReader(path, target, b)
		if err := lr.Start(); err != nil {
			logger.Warn("log pipe reader failed to start", "target", target, "err", err)
		}
	}
}

// consoleHost implements router.Host against a *session.DebuggerSession and
// the process's own working directory, for use by the plain-text console
// loop (termui has no panel concept, so Focus/AppendConsole just print).
type consoleHost struct {
	session *session.DebuggerSession
}

func (h *consoleHost) Focus(window string) {
	fmt.Printf("-- switched to %s --\n", window)
}

func (h *consoleHost) AppendConsole(text string) {
	fmt.Print(text)
}

func (h *consoleHost) CurrentSource() (file string, line int, text string, ok bool) {
	pos := h.session.Position
	if pos.File == "" {
		return "", 0, "", false
	}
	lines, err := h.SourceLines(pos.File)
	if err != nil || pos.Line < 1 || pos.Line > len(lines) {
		return pos.File, pos.Line, "", true
	}
	return pos.File, pos.Line, lines[pos.Line-1], true
}

func (h *consoleHost) Chdir(path string) error {
	return os.Chdir(path)
}

func (h *consoleHost) SourceLines(file string) ([]string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}

var _ router.Host = (*consoleHost)(nil)
