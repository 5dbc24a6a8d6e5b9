package fault

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hugo-lorenzo-mato/debugkit/internal/collector"
	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
)

// Outcome is the state a fault ended in.
type Outcome int

const (
	// OutcomeIgnored means the fault arrived after termination or while a
	// fatal fault was being reported, or that shutdown found nothing to
	// escalate.
	OutcomeIgnored Outcome = iota
	// OutcomeSuppressed means error capture is off or the severity is masked.
	OutcomeSuppressed
	// OutcomeLogged means the fault was recorded and logged.
	OutcomeLogged
	// OutcomeTerminated means the fault was reported and exit was called.
	OutcomeTerminated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeLogged:
		return "logged"
	case OutcomeTerminated:
		return "terminated"
	default:
		return "ignored"
	}
}

// EmitFunc writes a log entry through the owner's log pipeline.
type EmitFunc func(level core.Level, message string, ctx core.Context) error

// Interceptor turns faults and panics into records, log entries, fatal
// callbacks and, for fatal ones, process termination.
type Interceptor struct {
	settings  *config.Settings
	collector *collector.Collector
	emit      EmitFunc
	console   io.Writer
	dumps     *CrashDumpWriter
	exit      func(int)
	logger    *logging.Logger

	mu        sync.Mutex
	callbacks []func(error)
	last      *Fault

	reporting  atomic.Bool
	terminated atomic.Bool
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithExit replaces os.Exit.
func WithExit(exit func(int)) Option {
	return func(i *Interceptor) { i.exit = exit }
}

// WithConsole sets where fatal messages are printed when cli_output is on.
func WithConsole(w io.Writer) Option {
	return func(i *Interceptor) { i.console = w }
}

// WithCrashDumps sets the crash dump writer.
func WithCrashDumps(w *CrashDumpWriter) Option {
	return func(i *Interceptor) { i.dumps = w }
}

// WithLogger sets the interceptor's own logger.
func WithLogger(l *logging.Logger) Option {
	return func(i *Interceptor) { i.logger = l }
}

// NewInterceptor creates an interceptor recording into coll and logging
// through emit.
func NewInterceptor(settings *config.Settings, coll *collector.Collector, emit EmitFunc, opts ...Option) *Interceptor {
	i := &Interceptor{
		settings:  settings,
		collector: coll,
		emit:      emit,
		console:   os.Stderr,
		exit:      os.Exit,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = logging.OrNop(i.logger).WithComponent("fault")
	if i.dumps == nil {
		i.dumps = NewCrashDumpWriter(settings, coll, i.logger)
	}
	return i
}

// OnFatal registers cb to run before the process terminates. Callbacks run
// once per fatal fault in registration order.
func (i *Interceptor) OnFatal(cb func(error)) {
	if cb == nil {
		return
	}
	i.mu.Lock()
	i.callbacks = append(i.callbacks, cb)
	i.mu.Unlock()
}

// Terminated reports whether a fatal fault has already been handled.
func (i *Interceptor) Terminated() bool {
	return i.terminated.Load()
}

// Last returns the last fault that was logged. Suppressed faults are not kept.
func (i *Interceptor) Last() *Fault {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.last
}

// Trigger raises a fault located at the caller.
func (i *Interceptor) Trigger(sev Severity, message string) Outcome {
	return i.HandleError(NewAt(1, sev, message))
}

// HandleError processes a fault. Masked faults are suppressed, the rest are
// recorded and logged, and fatal ones continue into HandleException.
func (i *Interceptor) HandleError(f *Fault) Outcome {
	if f == nil {
		return OutcomeIgnored
	}
	if i.terminated.Load() {
		return OutcomeIgnored
	}
	if i.reporting.Load() {
		i.logger.Warn("fault raised during fatal reporting", "fault", f.Error())
		return OutcomeIgnored
	}

	if !i.settings.ErrorCapture() || !f.Severity.ReportedBy(i.settings.ErrorReporting()) {
		return OutcomeSuppressed
	}

	i.mu.Lock()
	i.last = f
	i.mu.Unlock()

	i.collector.AddError(core.ErrorRecord{
		Time:     time.Now(),
		Severity: int(f.Severity),
		Message:  f.Message,
		File:     f.File,
		Line:     f.Line,
	})
	msg := fmt.Sprintf("[Error] %s in %s on line %d", f.Message, f.File, f.Line)
	i.log(core.LevelError, msg, core.NewContext("severity", f.Severity.String()))

	if f.Fatal() {
		return i.HandleException(f)
	}
	return OutcomeLogged
}

// HandleException reports err as an uncaught failure and terminates. The
// location comes from err when it implements Located, otherwise from the
// caller.
func (i *Interceptor) HandleException(err error) Outcome {
	file, line := Caller(1)
	return i.handleException(err, file, line)
}

// HandleExceptionAt is HandleException with an explicit fallback location,
// for callers that report on behalf of someone else.
func (i *Interceptor) HandleExceptionAt(err error, file string, line int) Outcome {
	return i.handleException(err, file, line)
}

func (i *Interceptor) handleException(err error, file string, line int) Outcome {
	if err == nil || i.terminated.Load() {
		return OutcomeIgnored
	}
	if !i.reporting.CompareAndSwap(false, true) {
		i.logger.Warn("fault raised during fatal reporting", "error", err)
		return OutcomeIgnored
	}
	defer i.reporting.Store(false)

	var loc Located
	if errors.As(err, &loc) {
		file, line = loc.Location()
	}
	rec := core.ExceptionRecord{
		Time:    time.Now(),
		Type:    typeName(err),
		Message: err.Error(),
		File:    file,
		Line:    line,
	}
	var (
		p *Panic
		f *Fault
	)
	switch {
	case errors.As(err, &p):
		rec.Message = p.Error()
		rec.Stack = p.Stack
	case errors.As(err, &f):
		rec.Message = f.Message
	}
	i.collector.AddException(rec)

	msg := fmt.Sprintf("[Exception] %s: %s in %s on line %d", rec.Type, rec.Message, rec.File, rec.Line)
	i.log(core.LevelCritical, msg, nil)

	if i.settings.CLIOutput() && i.console != nil {
		_, _ = fmt.Fprintln(i.console, msg)
	}

	i.runCallbacks(err)

	if i.dumps != nil && i.dumps.Enabled() {
		if path, dumpErr := i.dumps.Write(rec); dumpErr != nil {
			i.logger.Error("failed to write crash dump", "error", dumpErr)
		} else {
			i.logger.Error("crash dump written", "path", path)
		}
	}

	i.terminated.Store(true)
	i.exit(1)
	return OutcomeTerminated
}

// InspectShutdown escalates the last logged fault when it is fatal. It is
// meant to run once as the host shuts down.
func (i *Interceptor) InspectShutdown() Outcome {
	f := i.Last()
	if f == nil || !f.Fatal() {
		return OutcomeIgnored
	}
	return i.handleException(f, f.File, f.Line)
}

// Guard runs fn inside the fault boundary. A *Fault returned by fn is
// handled and returned to the caller. A panic is reported as an uncaught
// failure unless exception capture is off, in which case it propagates.
func (i *Interceptor) Guard(fn func() error) (err error) {
	if i.settings.ExceptionCapture() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err = i.recovered(r)
		}()
	}

	err = fn()
	var f *Fault
	if errors.As(err, &f) {
		i.HandleError(f)
	}
	return err
}

// recovered converts a panic value into an error and reports it. It must be
// called from the deferred function that recovered.
func (i *Interceptor) recovered(r any) error {
	if f, ok := r.(*Fault); ok {
		i.handleException(f, f.File, f.Line)
		return f
	}
	file, line := panicSite()
	p := &Panic{Value: r, File: file, Line: line, Stack: string(debug.Stack())}
	i.handleException(p, file, line)
	return p
}

func (i *Interceptor) runCallbacks(err error) {
	i.mu.Lock()
	cbs := make([]func(error), len(i.callbacks))
	copy(cbs, i.callbacks)
	i.mu.Unlock()

	for idx, cb := range cbs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					i.logger.Error("fatal callback panicked", "index", idx, "panic", r)
				}
			}()
			cb(err)
		}()
	}
}

func (i *Interceptor) log(level core.Level, msg string, ctx core.Context) {
	if i.emit == nil {
		return
	}
	if err := i.emit(level, msg, ctx); err != nil {
		i.logger.Warn("failed to log fault", "level", level, "error", err)
	}
}
