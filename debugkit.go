package debugkit

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/hugo-lorenzo-mato/debugkit/internal/benchmark"
	"github.com/hugo-lorenzo-mato/debugkit/internal/collector"
	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
	"github.com/hugo-lorenzo-mato/debugkit/internal/fault"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
	"github.com/hugo-lorenzo-mato/debugkit/internal/sink"
)

// Debugger owns one collector, one benchmark engine, the sink registry and
// the fault interceptor. It is safe for concurrent use.
type Debugger struct {
	settings    *config.Settings
	logger      *logging.Logger
	collector   *collector.Collector
	engine      *benchmark.Engine
	sampler     *benchmark.Sampler
	memory      *sink.MemorySink
	registry    *sink.Registry
	dispatcher  *sink.Dispatcher
	interceptor *fault.Interceptor

	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New builds a Debugger. A nil settings value uses the defaults. Settings
// are read on every call, so changing them later takes effect immediately,
// except benchmark.memory_source and benchmark.sample_interval which are
// read here.
func New(settings *Settings, opts ...Option) *Debugger {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.New(logging.Config{
			Level:  settings.String(config.KeyLogLevel),
			Format: settings.String(config.KeyLogFormat),
			Output: os.Stderr,
		})
	}

	d := &Debugger{
		settings:  settings,
		logger:    logger,
		collector: collector.New(),
		memory:    sink.NewMemorySink(),
	}

	engineOpts := []benchmark.Option{benchmark.WithLogger(logger)}
	if o.probe != nil {
		engineOpts = append(engineOpts, benchmark.WithProbe(o.probe))
	}
	d.engine = benchmark.NewEngine(settings, engineOpts...)

	d.registry = sink.DefaultRegistry(sink.Defaults{
		Settings:  settings,
		Memory:    d.memory,
		Forwarder: o.forwarder,
		Logger:    logger,
	})
	for name, s := range o.sinks {
		if err := d.registry.Register(name, s); err != nil {
			logger.Warn("ignoring sink", "name", name, "error", err)
		}
	}
	d.dispatcher = sink.NewDispatcher(d.registry, settings, logger)

	faultOpts := []fault.Option{
		fault.WithLogger(logger),
		fault.WithCrashDumps(fault.NewCrashDumpWriter(settings, d.collector, logger)),
	}
	if o.exit != nil {
		faultOpts = append(faultOpts, fault.WithExit(o.exit))
	}
	if o.console != nil {
		faultOpts = append(faultOpts, fault.WithConsole(o.console))
	}
	d.interceptor = fault.NewInterceptor(settings, d.collector, d.emit, faultOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.sampler = benchmark.NewSampler(d.engine, settings.Duration(config.KeyBenchmarkSampleInterval))
	d.sampler.Start(ctx)

	return d
}

// Settings returns the live settings store.
func (d *Debugger) Settings() *Settings {
	return d.settings
}

// Log records an entry at level and dispatches it to the current sink.
// args are key/value pairs as accepted by log/slog. An unknown level fails
// with INVALID_LOG_LEVEL and records nothing. A sink failure is returned
// after the entry has been collected.
func (d *Debugger) Log(level Level, message string, args ...any) error {
	lvl, err := core.ParseLevel(string(level))
	if err != nil {
		return err
	}
	return d.write(core.NewLogEntry(lvl, message, core.NewContext(args...)))
}

// LogContext is Log with a prepared Context.
func (d *Debugger) LogContext(level Level, message string, ctx Context) error {
	lvl, err := core.ParseLevel(string(level))
	if err != nil {
		return err
	}
	return d.write(core.NewLogEntry(lvl, message, ctx.Clone()))
}

func (d *Debugger) write(entry core.LogEntry) error {
	d.collector.AddLog(entry)
	return d.dispatcher.Write(entry)
}

// emit is the interceptor's path into the log pipeline.
func (d *Debugger) emit(level core.Level, message string, ctx core.Context) error {
	return d.write(core.NewLogEntry(level, message, ctx))
}

func (d *Debugger) Debug(message string, args ...any) error {
	return d.Log(LevelDebug, message, args...)
}

func (d *Debugger) Info(message string, args ...any) error {
	return d.Log(LevelInfo, message, args...)
}

func (d *Debugger) Notice(message string, args ...any) error {
	return d.Log(LevelNotice, message, args...)
}

func (d *Debugger) Warning(message string, args ...any) error {
	return d.Log(LevelWarning, message, args...)
}

func (d *Debugger) Error(message string, args ...any) error {
	return d.Log(LevelError, message, args...)
}

func (d *Debugger) Critical(message string, args ...any) error {
	return d.Log(LevelCritical, message, args...)
}

func (d *Debugger) Alert(message string, args ...any) error {
	return d.Log(LevelAlert, message, args...)
}

func (d *Debugger) Emergency(message string, args ...any) error {
	return d.Log(LevelEmergency, message, args...)
}

// StartBenchmark starts or restarts the session called name.
func (d *Debugger) StartBenchmark(name string) {
	d.engine.Start(name)
}

// StopBenchmark stops the session called name and stores its result.
func (d *Debugger) StopBenchmark(name string) (Result, error) {
	res, err := d.engine.Stop(name)
	if err != nil {
		return res, err
	}
	if d.engine.Enabled() {
		d.collector.AddBenchmark(collector.BenchmarkRecord{
			Name:       name,
			StoppedAt:  time.Now(),
			Time:       res.Time,
			Memory:     res.Memory,
			PeakMemory: res.PeakMemory,
		})
	}
	return res, nil
}

// Benchmark returns the result of a stopped session.
func (d *Debugger) Benchmark(name string) (Result, error) {
	return d.engine.Result(name)
}

// Benchmarks returns the results of every stopped session. Running sessions
// are reported through the joined error.
func (d *Debugger) Benchmarks() (map[string]Result, error) {
	return d.engine.Benchmarks()
}

// BenchmarkSessions returns every session with its state.
func (d *Debugger) BenchmarkSessions() []Session {
	return d.engine.Sessions()
}

// ResetBenchmarks discards every session. Stored results are kept.
func (d *Debugger) ResetBenchmarks() {
	d.engine.Reset()
}

// Logs returns every collected entry.
func (d *Debugger) Logs() []LogEntry {
	return d.collector.Logs()
}

// Errors returns every logged fault.
func (d *Debugger) Errors() []ErrorRecord {
	return d.collector.Errors()
}

// Exceptions returns every reported fatal fault or panic.
func (d *Debugger) Exceptions() []ExceptionRecord {
	return d.collector.Exceptions()
}

// BenchmarkResults returns the latest stored result per benchmark name.
func (d *Debugger) BenchmarkResults() map[string]Result {
	records := d.collector.Benchmarks()
	out := make(map[string]Result, len(records))
	for name, rec := range records {
		out[name] = Result{Time: rec.Time, Memory: rec.Memory, PeakMemory: rec.PeakMemory}
	}
	return out
}

// MemoryLogs returns the entries held by the memory driver.
func (d *Debugger) MemoryLogs() []LogEntry {
	return d.memory.All()
}

// ClearMemoryLogs empties the memory driver.
func (d *Debugger) ClearMemoryLogs() {
	d.memory.Clear()
}

// RegisterSink binds a sink to a driver name.
func (d *Debugger) RegisterSink(name string, s Sink) error {
	return d.registry.Register(name, s)
}

// Guard runs fn inside the fault boundary.
func (d *Debugger) Guard(fn func() error) error {
	return d.interceptor.Guard(fn)
}

// Trigger raises a fault located at the caller.
func (d *Debugger) Trigger(sev Severity, message string) Outcome {
	return d.interceptor.HandleError(fault.NewAt(1, sev, message))
}

// HandleError processes a fault raised by the host.
func (d *Debugger) HandleError(f *Fault) Outcome {
	return d.interceptor.HandleError(f)
}

// HandleException reports err as an uncaught failure and terminates.
func (d *Debugger) HandleException(err error) Outcome {
	file, line := fault.Caller(1)
	return d.interceptor.HandleExceptionAt(err, file, line)
}

// OnFatal registers a callback run before the process terminates.
func (d *Debugger) OnFatal(cb func(error)) {
	d.interceptor.OnFatal(cb)
}

// Shutdown escalates the last logged fault when it is fatal, then
// releases resources. Hosts should defer it in main.
func (d *Debugger) Shutdown() Outcome {
	out := d.interceptor.InspectShutdown()
	if err := d.Close(); err != nil {
		d.logger.Warn("closing debugger", "error", err)
	}
	return out
}

// Close stops the benchmark sampler and closes the sinks.
func (d *Debugger) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.cancel()
		d.sampler.Stop()
		err = d.registry.Close()
	})
	return err
}
