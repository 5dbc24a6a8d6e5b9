package debugkit

import (
	"io"
	"log/slog"

	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
)

type options struct {
	logger    *logging.Logger
	forwarder Forwarder
	exit      func(int)
	console   io.Writer
	probe     Probe
	sinks     map[string]Sink
}

// Option configures a Debugger.
type Option func(*options)

// WithLogger sets the logger debugkit uses for its own diagnostics.
// Build one with NewLogger or NewNopLogger.
func WithLogger(l *Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSlog routes debugkit's own diagnostics to a host slog logger. Secrets
// are redacted before they reach its handler.
func WithSlog(l *slog.Logger) Option {
	return func(o *options) { o.logger = logging.FromSlog(l) }
}

// WithForwarder sets the host logger used by the "log" driver.
func WithForwarder(f Forwarder) Option {
	return func(o *options) { o.forwarder = f }
}

// WithExit replaces os.Exit for fatal faults.
func WithExit(exit func(int)) Option {
	return func(o *options) { o.exit = exit }
}

// WithConsole sets where fatal messages are printed when cli_output is on.
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithProbe overrides the benchmark memory probe.
func WithProbe(p Probe) Option {
	return func(o *options) { o.probe = p }
}

// WithSink registers an extra sink under name, replacing a built-in driver
// of the same name.
func WithSink(name string, s Sink) Option {
	return func(o *options) {
		if o.sinks == nil {
			o.sinks = make(map[string]Sink)
		}
		o.sinks[name] = s
	}
}
