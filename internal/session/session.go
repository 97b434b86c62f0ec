// Package session gathers the single *channel.Channel, the router, every
// projector's last-known state, the watch arena/engine, the locals view,
// and the auto-print slot behind one owning struct, per spec.md §9's
// "global mutable state" redesign note: every caller takes a
// *DebuggerSession as an explicit receiver instead of reaching through
// package globals, the way a daemon's struct-of-collaborators wires
// everything together once at startup instead of scattering state across
// packages.
package session

import (
	"strings"

	"github.com/mpalmer/gf/internal/autoprint"
	"github.com/mpalmer/gf/internal/bus"
	"github.com/mpalmer/gf/internal/channel"
	"github.com/mpalmer/gf/internal/config"
	"github.com/mpalmer/gf/internal/helperscript"
	"github.com/mpalmer/gf/internal/projector"
	"github.com/mpalmer/gf/internal/router"
	"github.com/mpalmer/gf/internal/watch"
)

// DebuggerSession is the single owning struct for one gdb child process
// and everything projected from it.
type DebuggerSession struct {
	Config  *config.Config
	Channel *channel.Channel
	Router  *router.Router
	Bus     *bus.Bus

	Stack       []projector.StackEntry
	Breakpoints []projector.Breakpoint
	Registers   []projector.Register
	Threads     []projector.Thread
	Position    projector.Position

	WatchArena  *watch.Arena
	WatchEngine *watch.Engine

	LocalsArena *watch.Arena
	LocalsView  *watch.LocalsView
	LocalsEval  *watch.Engine

	AutoPrint *autoprint.Tracker
	eval      *gdbEvaluator

	compileDir string
}

// Open spawns gdb per argv, runs the bootstrap prompt and helper-script
// evaluation, and returns a session ready to drive. b receives the
// session's response/control/log traffic; presets comes from cfg's
// [commands] section.
func Open(argv []string, cfg *config.Config, b *bus.Bus) (*DebuggerSession, error) {
	s := &DebuggerSession{
		Config:      cfg,
		Router:      router.New(cfg.Presets),
		Bus:         b,
		WatchArena:  watch.NewArena(),
		LocalsArena: watch.NewArena(),
		AutoPrint:   &autoprint.Tracker{},
	}

	ch, err := channel.Open(argv, s.onAsync)
	if err != nil {
		return nil, err
	}
	s.Channel = ch
	s.eval = newGDBEvaluator(ch)
	s.WatchEngine = watch.NewEngine(s.WatchArena, s.eval)
	s.LocalsView = watch.NewLocalsView(s.LocalsArena)
	s.LocalsEval = watch.NewEngine(s.LocalsArena, s.eval)

	if _, err := s.Channel.Call(helperscript.Script); err != nil {
		return nil, err
	}
	return s, nil
}

// onAsync republishes an async response unit on the bus (spec.md §3/§5:
// "Response" messages are async-mode only).
func (s *DebuggerSession) onAsync(u channel.Unit) {
	s.Bus.Publish(bus.Message{Kind: bus.KindResponse, Payload: u})
}

// Execute runs input through the router against this session's channel.
// gf-restart-gdb is handled here, since the session owns the channel.
func (s *DebuggerSession) Execute(host router.Host, input string) error {
	if strings.TrimSpace(input) == "gf-restart-gdb" {
		return s.Restart()
	}
	return s.Router.Execute(s.Channel, host, input)
}

// RefreshAll re-projects stack, breakpoints, registers, threads, and
// source position from a single stop, issuing each projector's command
// synchronously in turn (spec.md §4.4). view receives the resolved
// position for display.
func (s *DebuggerSession) RefreshAll(view projector.SourceView) error {
	if u, err := s.Channel.Call(projector.StackCommand); err != nil {
		return err
	} else {
		s.Stack = projector.ParseStack(u.Text)
	}

	if u, err := s.Channel.Call(projector.BreakpointsCommand); err != nil {
		return err
	} else {
		s.Breakpoints = projector.ParseBreakpoints(u.Text, s.resolveAbsolute)
	}

	prev := s.Registers
	if u, err := s.Channel.Call(projector.RegistersCommand); err != nil {
		return err
	} else {
		next := projector.ParseRegisters(u.Text)
		s.Registers = projector.DiffRegisters(prev, next)
	}

	if u, err := s.Channel.Call(projector.ThreadsCommand); err != nil {
		return err
	} else {
		s.Threads = projector.ParseThreads(u.Text)
	}

	if frame, ok := projector.Selected(s.Stack); ok && frame.Location != "" {
		if err := s.Position.Update(view, frame.Location); err != nil {
			return err
		}
	}

	return nil
}

// RefreshWatches re-evaluates the watch engine's visible nodes, resyncs
// dynamic arrays, and checks for root type changes (spec.md §4.5).
func (s *DebuggerSession) RefreshWatches() error {
	s.WatchEngine.Running = s.Channel.Mode() == channel.ModeRunning
	if err := s.WatchEngine.RefreshTypes(); err != nil {
		return err
	}
	if err := s.WatchEngine.ResyncDynamicArrays(); err != nil {
		return err
	}
	return s.WatchEngine.RefreshAllVisible()
}

// RefreshLocals re-syncs the locals view to the inferior's current local
// variable set and refreshes their displayed values.
func (s *DebuggerSession) RefreshLocals() error {
	names, err := s.eval.Locals()
	if err != nil {
		return err
	}
	s.LocalsView.Sync(names)
	s.LocalsEval.Running = s.Channel.Mode() == channel.ModeRunning
	return s.LocalsEval.RefreshAllVisible()
}

// RefreshCompileDir re-queries "info source" and caches the compilation
// directory used to resolve breakpoints' short file names to absolute
// paths (spec.md §4.4 "Breakpoints").
func (s *DebuggerSession) RefreshCompileDir() error {
	u, err := s.Channel.Call("info source")
	if err != nil {
		return err
	}
	if dir, ok := router.ParseCompilationDirectory(u.Text); ok {
		s.compileDir = dir
	}
	return nil
}

func (s *DebuggerSession) resolveAbsolute(short string) string {
	return projector.ResolveAbsolute(s.compileDir, short)
}

// ToggleBreakpointAtLine toggles a breakpoint at file:line, using the
// session's currently known breakpoint table for idempotence (spec.md §8
// property 2).
func (s *DebuggerSession) ToggleBreakpointAtLine(host router.Host, file string, line int) error {
	existing := make([]router.BreakpointRef, 0, len(s.Breakpoints))
	for _, b := range s.Breakpoints {
		if b.Line != 0 {
			existing = append(existing, router.BreakpointRef{File: b.AbsoluteFile, Line: b.Line})
		}
	}
	return router.ToggleBreakpointAtLine(s.Channel, host, file, line, existing)
}

// Close tears down the child process.
func (s *DebuggerSession) Close() error {
	return s.Channel.Close()
}

// Restart kills and respawns the child process, resetting projector state
// (spec.md §4.2 "Restart").
func (s *DebuggerSession) Restart() error {
	s.Stack = nil
	s.Breakpoints = nil
	s.Registers = nil
	s.Threads = nil
	return s.Channel.Restart()
}
