package benchmark

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
)

// Engine manages named benchmark sessions. It is safe for concurrent use;
// calls on different names never interfere, calls on the same name race
// with the last writer winning.
type Engine struct {
	mu       sync.Mutex
	sessions map[string]*Session

	settings *config.Settings
	probe    Probe
	now      func() time.Time
	logger   *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithProbe overrides the memory probe chosen from settings.
func WithProbe(p Probe) Option {
	return func(e *Engine) { e.probe = p }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine's own logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine. The benchmarking flag is read from settings on
// every call, so toggling it at runtime takes effect immediately. A nil
// settings value means benchmarking is always enabled.
func NewEngine(settings *config.Settings, opts ...Option) *Engine {
	e := &Engine{
		sessions: make(map[string]*Session),
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.probe == nil {
		source := config.MemorySourceHeap
		if settings != nil {
			source = settings.String(config.KeyBenchmarkMemorySource)
		}
		e.probe = NewProbe(source)
	}
	e.logger = logging.OrNop(e.logger).WithComponent("benchmark")
	return e
}

// Enabled reports whether benchmarking is switched on.
func (e *Engine) Enabled() bool {
	return e.settings == nil || e.settings.Benchmarking()
}

func (e *Engine) memory() uint64 {
	mem, err := e.probe.Usage()
	if err != nil {
		e.logger.Warn("memory probe failed", "error", err)
		return 0
	}
	return mem
}

// Start begins or restarts the session called name. Starting a running
// session re-arms it with a new start time and memory.
func (e *Engine) Start(name string) {
	if !e.Enabled() {
		return
	}
	mem := e.memory()
	s := &Session{
		Name:        name,
		State:       StateRunning,
		StartTime:   e.now(),
		StartMemory: mem,
		PeakMemory:  mem,
	}

	e.mu.Lock()
	e.sessions[name] = s
	e.mu.Unlock()

	e.logger.WithSession(name).Debug("benchmark started")
}

// Stop ends the running session called name and returns its metrics.
// Unknown or already stopped names fail with BENCHMARK_NOT_RUNNING and leave
// the sessions untouched.
func (e *Engine) Stop(name string) (Result, error) {
	if !e.Enabled() {
		return Result{}, nil
	}
	mem := e.memory()
	end := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[name]
	if !ok || !s.Running() {
		return Result{}, core.ErrState(core.CodeBenchmarkNotRunning,
			"benchmark is not running: "+name).WithDetail("name", name)
	}
	s.State = StateStopped
	s.EndTime = end
	s.EndMemory = mem
	s.observe(mem)

	res := s.result()
	e.logger.WithSession(name).Debug("benchmark stopped", "time", res.Time, "memory", res.Memory)
	return res, nil
}

// Result returns the metrics of a stopped session. Running sessions fail
// with BENCHMARK_RUNNING and unknown names with NOT_FOUND.
func (e *Engine) Result(name string) (Result, error) {
	if !e.Enabled() {
		return Result{}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[name]
	if !ok {
		return Result{}, core.ErrNotFound("benchmark", name)
	}
	if s.Running() {
		return Result{}, runningError(name)
	}
	return s.result(), nil
}

// Benchmarks returns the metrics of every stopped session. When some
// sessions are still running, the map holds the stopped ones and the error
// joins one BENCHMARK_RUNNING error per running name.
func (e *Engine) Benchmarks() (map[string]Result, error) {
	out := make(map[string]Result)
	if !e.Enabled() {
		return out, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var running []string
	for name, s := range e.sessions {
		if s.Running() {
			running = append(running, name)
			continue
		}
		out[name] = s.result()
	}
	if len(running) == 0 {
		return out, nil
	}
	sort.Strings(running)
	errs := make([]error, 0, len(running))
	for _, name := range running {
		errs = append(errs, runningError(name))
	}
	return out, errors.Join(errs...)
}

// Sessions returns a snapshot of all sessions ordered by name.
func (e *Engine) Sessions() []Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset discards every session.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.sessions = make(map[string]*Session)
	e.mu.Unlock()
}

// Sample reads memory once and raises the peak of every running session.
// It returns the number of sessions observed.
func (e *Engine) Sample() int {
	if !e.Enabled() {
		return 0
	}
	mem := e.memory()

	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.sessions {
		if s.Running() {
			s.observe(mem)
			n++
		}
	}
	return n
}

func runningError(name string) error {
	return core.ErrState(core.CodeBenchmarkRunning,
		"benchmark is still running: "+name).WithDetail("name", name)
}
