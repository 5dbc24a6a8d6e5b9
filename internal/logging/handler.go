package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// SanitizingHandler redacts credentials from messages and string or error
// attributes before passing records on.
type SanitizingHandler struct {
	next      slog.Handler
	sanitizer *Sanitizer
}

// NewSanitizingHandler wraps next.
func NewSanitizingHandler(next slog.Handler, sanitizer *Sanitizer) *SanitizingHandler {
	return &SanitizingHandler{next: next, sanitizer: sanitizer}
}

func (h *SanitizingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SanitizingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.sanitizer.Sanitize(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.clean(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *SanitizingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = h.clean(a)
	}
	return &SanitizingHandler{next: h.next.WithAttrs(cleaned), sanitizer: h.sanitizer}
}

func (h *SanitizingHandler) WithGroup(name string) slog.Handler {
	return &SanitizingHandler{next: h.next.WithGroup(name), sanitizer: h.sanitizer}
}

func (h *SanitizingHandler) clean(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.sanitizer.Sanitize(v.String()))
	case slog.KindGroup:
		group := v.Group()
		cleaned := make([]slog.Attr, len(group))
		for i, g := range group {
			cleaned[i] = h.clean(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleaned...)}
	case slog.KindAny:
		// Fault messages reach the self-logger as errors.
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, h.sanitizer.Sanitize(err.Error()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// levelTag is the short colored tag PrettyHandler prints for records at or
// above min.
type levelTag struct {
	min   slog.Level
	tag   string
	color lipgloss.Color
	bold  bool
}

var levelTags = []levelTag{
	{LevelEmergency, "EMG", lipgloss.Color("#d946ef"), true},
	{LevelAlert, "ALR", lipgloss.Color("#d946ef"), false},
	{LevelCritical, "CRT", lipgloss.Color("#ef4444"), true},
	{slog.LevelError, "ERR", lipgloss.Color("#ef4444"), false},
	{slog.LevelWarn, "WRN", lipgloss.Color("#f59e0b"), false},
	{LevelNotice, "NTC", lipgloss.Color("#06b6d4"), false},
	{slog.LevelInfo, "INF", lipgloss.Color("#3b82f6"), false},
	{slog.LevelDebug - 100, "DBG", lipgloss.Color("#6b7280"), false},
}

// PrettyHandler writes one human readable line per record. Colors follow
// the capabilities of the writer it was created for. A "component" attribute
// is printed as a bracketed prefix.
type PrettyHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Level
	renderer  *lipgloss.Renderer
	component string
	attrs     string
	groups    []string
}

// NewPrettyHandler creates a pretty handler writing to w.
func NewPrettyHandler(w io.Writer, level slog.Level) *PrettyHandler {
	return &PrettyHandler{
		mu:       &sync.Mutex{},
		w:        w,
		level:    level,
		renderer: lipgloss.NewRenderer(w),
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(h.formatLevel(r.Level))
	if h.component != "" {
		b.WriteString(" [" + h.component + "]")
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, h.groups, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	var b strings.Builder
	for _, a := range attrs {
		if a.Key == "component" && len(h.groups) == 0 {
			next.component = a.Value.String()
			continue
		}
		h.appendAttr(&b, h.groups, a)
	}
	next.attrs += b.String()
	return next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(append([]string(nil), h.groups...), name)
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	c := *h
	return &c
}

func (h *PrettyHandler) formatLevel(level slog.Level) string {
	for _, t := range levelTags {
		if level >= t.min {
			return h.renderer.NewStyle().Foreground(t.color).Bold(t.bold).Render(t.tag)
		}
	}
	return level.String()
}

func (h *PrettyHandler) appendAttr(b *strings.Builder, groups []string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := groups
		if a.Key != "" {
			inner = append(append([]string(nil), groups...), a.Key)
		}
		for _, g := range v.Group() {
			h.appendAttr(b, inner, g)
		}
		return
	}
	if a.Key == "" {
		return
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	fmt.Fprintf(b, " %s=%v", h.renderer.NewStyle().Foreground(lipgloss.Color("#9ca3af")).Render(key), v.Any())
}
