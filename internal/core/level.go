package core

import "strings"

// Level is a log severity, stored in its uppercase form.
type Level string

// Log levels, lowest to highest severity.
const (
	LevelDebug     Level = "DEBUG"
	LevelInfo      Level = "INFO"
	LevelNotice    Level = "NOTICE"
	LevelWarning   Level = "WARNING"
	LevelError     Level = "ERROR"
	LevelCritical  Level = "CRITICAL"
	LevelAlert     Level = "ALERT"
	LevelEmergency Level = "EMERGENCY"
)

// Levels lists every accepted level in ascending severity.
var Levels = []Level{
	LevelDebug,
	LevelInfo,
	LevelNotice,
	LevelWarning,
	LevelError,
	LevelCritical,
	LevelAlert,
	LevelEmergency,
}

// ParseLevel normalizes s to a Level. Matching is case-insensitive and
// surrounding whitespace is not trimmed.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(s))
	if !l.Valid() {
		return "", ErrValidation(CodeInvalidLogLevel, "invalid log level: "+s).
			WithDetail("level", s)
	}
	return l, nil
}

// Valid reports whether l is one of the enumerated levels.
func (l Level) Valid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

// Lower returns the lowercase name used by external loggers.
func (l Level) Lower() string {
	return strings.ToLower(string(l))
}

// Rank returns the position of l in Levels, or -1 when l is not valid.
func (l Level) Rank() int {
	for i, v := range Levels {
		if l == v {
			return i
		}
	}
	return -1
}

func (l Level) String() string {
	return string(l)
}
