package logging

import (
	"log/slog"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

// Extra slog levels for the severities slog does not name. They sit between
// and above the standard levels so Enabled comparisons keep working.
const (
	LevelNotice    = slog.Level(2)
	LevelCritical  = slog.Level(12)
	LevelAlert     = slog.Level(16)
	LevelEmergency = slog.Level(20)
)

// LevelFor maps a captured entry level onto a slog level.
func LevelFor(l core.Level) slog.Level {
	switch l {
	case core.LevelDebug:
		return slog.LevelDebug
	case core.LevelInfo:
		return slog.LevelInfo
	case core.LevelNotice:
		return LevelNotice
	case core.LevelWarning:
		return slog.LevelWarn
	case core.LevelError:
		return slog.LevelError
	case core.LevelCritical:
		return LevelCritical
	case core.LevelAlert:
		return LevelAlert
	case core.LevelEmergency:
		return LevelEmergency
	default:
		return slog.LevelInfo
	}
}

// LevelName returns a short name for l, including the extra levels.
func LevelName(l slog.Level) string {
	switch l {
	case LevelNotice:
		return "NOTICE"
	case LevelCritical:
		return "CRITICAL"
	case LevelAlert:
		return "ALERT"
	case LevelEmergency:
		return "EMERGENCY"
	default:
		return l.String()
	}
}

// replaceLevel renames the extra levels in slog's built-in handlers, which
// would otherwise print them as offsets such as "ERROR+4".
func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(LevelName(l))
	}
	return a
}
