package debugkit

import (
	"fmt"

	"github.com/hugo-lorenzo-mato/debugkit/internal/benchmark"
	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
	"github.com/hugo-lorenzo-mato/debugkit/internal/fault"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
	"github.com/hugo-lorenzo-mato/debugkit/internal/sink"
)

type (
	// Level is a log level. Input is case-insensitive.
	Level = core.Level
	// Context is the ordered key/value context attached to an entry.
	Context = core.Context
	// LogEntry is one captured log record.
	LogEntry = core.LogEntry
	// ErrorRecord is a logged recoverable fault.
	ErrorRecord = core.ErrorRecord
	// ExceptionRecord is a reported fatal fault or panic.
	ExceptionRecord = core.ExceptionRecord

	// Settings is the runtime option store.
	Settings = config.Settings

	// Severity is a fault severity bit.
	Severity = fault.Severity
	// Fault is an error with a severity and source location.
	Fault = fault.Fault
	// Panic is a recovered panic reported by Guard.
	Panic = fault.Panic
	// Outcome is the state a fault ended in.
	Outcome = fault.Outcome

	// Result holds the metrics of a stopped benchmark.
	Result = benchmark.Result
	// Session is a benchmark session snapshot.
	Session = benchmark.Session
	// Probe reports memory usage for benchmarks.
	Probe = benchmark.Probe

	// Logger is the logger debugkit uses for its own diagnostics.
	Logger = logging.Logger
	// LoggerConfig configures NewLogger.
	LoggerConfig = logging.Config

	// Sink persists log entries.
	Sink = sink.Sink
	// Forwarder receives entries for the "log" driver.
	Forwarder = sink.Forwarder
)

// Log levels.
const (
	LevelDebug     = core.LevelDebug
	LevelInfo      = core.LevelInfo
	LevelNotice    = core.LevelNotice
	LevelWarning   = core.LevelWarning
	LevelError     = core.LevelError
	LevelCritical  = core.LevelCritical
	LevelAlert     = core.LevelAlert
	LevelEmergency = core.LevelEmergency
)

// Fault severities most often raised by hosts.
const (
	SeverityError          = fault.SeverityError
	SeverityWarning        = fault.SeverityWarning
	SeverityNotice         = fault.SeverityNotice
	SeverityUserError      = fault.SeverityUserError
	SeverityUserWarning    = fault.SeverityUserWarning
	SeverityUserNotice     = fault.SeverityUserNotice
	SeverityDeprecated     = fault.SeverityDeprecated
	SeverityUserDeprecated = fault.SeverityUserDeprecated
	SeverityAll            = fault.SeverityAll
)

// NewFault creates a fault located at the caller.
func NewFault(sev Severity, message string) *Fault {
	return fault.NewAt(1, sev, message)
}

// NewFaultf is NewFault with a format string.
func NewFaultf(sev Severity, format string, args ...any) *Fault {
	return fault.NewAt(1, sev, fmt.Sprintf(format, args...))
}

// NewLogger creates a diagnostics logger for WithLogger.
func NewLogger(cfg LoggerConfig) *Logger {
	return logging.New(cfg)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return logging.NewNop()
}

// NewSettings returns default settings overlaid with values.
func NewSettings(values map[string]interface{}) *Settings {
	return config.NewSettings(values)
}
