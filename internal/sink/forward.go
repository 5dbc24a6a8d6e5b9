package sink

import (
	"context"
	"log/slog"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
)

// Forwarder is a host-provided logger that receives entries from the "log"
// driver. level is the lowercase level name.
type Forwarder interface {
	Forward(level, message string, ctx core.Context) error
}

// ForwarderFunc adapts a function to Forwarder.
type ForwarderFunc func(level, message string, ctx core.Context) error

// Forward calls f.
func (f ForwarderFunc) Forward(level, message string, ctx core.Context) error {
	return f(level, message, ctx)
}

// ForwardSink hands entries to a Forwarder.
type ForwardSink struct {
	fwd Forwarder
}

// NewForwardSink creates a sink delegating to fwd.
func NewForwardSink(fwd Forwarder) *ForwardSink {
	return &ForwardSink{fwd: fwd}
}

// Write forwards entry; the forwarder's error is returned unchanged.
func (s *ForwardSink) Write(entry core.LogEntry) error {
	if s.fwd == nil {
		return core.ErrValidation(core.CodeInvalidSink, "no forwarder configured")
	}
	return s.fwd.Forward(entry.Level.Lower(), entry.Message, entry.Context)
}

// SlogForwarder forwards entries to a *slog.Logger, mapping the extra
// levels onto the slog levels defined in package logging.
type SlogForwarder struct {
	logger *slog.Logger
}

// NewSlogForwarder wraps l. A nil l forwards to slog.Default at call time.
func NewSlogForwarder(l *slog.Logger) *SlogForwarder {
	return &SlogForwarder{logger: l}
}

// Forward logs message at level with ctx as attributes.
func (f *SlogForwarder) Forward(level, message string, ctx core.Context) error {
	lvl, err := core.ParseLevel(level)
	if err != nil {
		return err
	}
	l := f.logger
	if l == nil {
		l = slog.Default()
	}
	l.Log(context.Background(), logging.LevelFor(lvl), message, ctx.Args()...)
	return nil
}
