package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

// Logger is debugkit's own diagnostic logger. It is separate from the
// entries debugkit captures for the host.
type Logger struct {
	*slog.Logger
	sanitizer *Sanitizer
}

// Config configures the logger.
type Config struct {
	Level     string // debug, info, warn, error or any captured level name
	Format    string // auto, text, json
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns the default logger configuration. debugkit's own
// logger writes to stderr so it never mixes with host stdout.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "auto",
		Output: os.Stderr,
	}
}

// New creates a logger. Pretty output is used for terminals when the format
// is auto, JSON otherwise.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	sanitizer := NewSanitizer()
	handler := NewSanitizingHandler(newHandler(cfg, ParseLevel(cfg.Level)), sanitizer)
	return &Logger{
		Logger:    slog.New(handler),
		sanitizer: sanitizer,
	}
}

func newHandler(cfg Config, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: replaceLevel,
	}
	switch cfg.Format {
	case "json":
		return slog.NewJSONHandler(cfg.Output, opts)
	case "text":
		return slog.NewTextHandler(cfg.Output, opts)
	}
	if isTerminal(cfg.Output) {
		return NewPrettyHandler(cfg.Output, level)
	}
	return slog.NewJSONHandler(cfg.Output, opts)
}

// NewNop creates a logger that discards everything.
func NewNop() *Logger {
	return &Logger{
		Logger:    slog.New(slog.DiscardHandler),
		sanitizer: NewSanitizer(),
	}
}

// FromSlog wraps a host *slog.Logger. Its handler is put behind the
// sanitizing handler so secrets are redacted the same way. A nil l gives a
// no-op logger.
func FromSlog(l *slog.Logger) *Logger {
	if l == nil {
		return NewNop()
	}
	sanitizer := NewSanitizer()
	return &Logger{
		Logger:    slog.New(NewSanitizingHandler(l.Handler(), sanitizer)),
		sanitizer: sanitizer,
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return NewNop()
	}
	return l
}

// ParseLevel maps a configured level name to a slog level. Captured level
// names such as "notice" or "critical" are accepted as well as slog's
// "warn". Unknown names mean info.
func ParseLevel(s string) slog.Level {
	if strings.EqualFold(s, "warn") {
		return slog.LevelWarn
	}
	if l, err := core.ParseLevel(s); err == nil {
		return LevelFor(l)
	}
	return slog.LevelInfo
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// WithComponent returns a logger tagged with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// WithSession returns a logger with benchmark session context.
func (l *Logger) WithSession(name string) *Logger {
	return l.With("session", name)
}

// WithDriver returns a logger with sink driver context.
func (l *Logger) WithDriver(driver string) *Logger {
	return l.With("driver", driver)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		sanitizer: l.sanitizer,
	}
}

// Sanitizer returns the sanitizer shared by this logger and its children.
func (l *Logger) Sanitizer() *Sanitizer {
	return l.sanitizer
}

// Sanitize sanitizes a string using the logger's sanitizer.
func (l *Logger) Sanitize(input string) string {
	return l.sanitizer.Sanitize(input)
}
