package config

import (
	"sync"
	"time"

	"github.com/spf13/cast"
)

// Settings is the runtime key/value store consulted by the core on every
// call. Values set after construction affect subsequent reads only.
// Unrecognized keys are accepted and ignored by the core.
type Settings struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewSettings creates a store holding the defaults overlaid with values.
func NewSettings(values map[string]interface{}) *Settings {
	merged := Default().Values()
	for k, v := range values {
		merged[k] = v
	}
	return &Settings{values: merged}
}

// DefaultSettings creates a store holding only the defaults.
func DefaultSettings() *Settings {
	return NewSettings(nil)
}

// Get returns the raw value for key, or nil.
func (s *Settings) Get(key string) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set stores value under key.
func (s *Settings) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// IsSet reports whether key holds a value.
func (s *Settings) IsSet(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Bool returns key coerced to bool.
func (s *Settings) Bool(key string) bool {
	return cast.ToBool(s.Get(key))
}

// String returns key coerced to string.
func (s *Settings) String(key string) string {
	return cast.ToString(s.Get(key))
}

// Int returns key coerced to int.
func (s *Settings) Int(key string) int {
	return cast.ToInt(s.Get(key))
}

// Duration returns key coerced to a duration. Bare integers are nanoseconds.
func (s *Settings) Duration(key string) time.Duration {
	return cast.ToDuration(s.Get(key))
}

// All returns a copy of every stored value.
func (s *Settings) All() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// LogDriver returns the configured sink driver name.
func (s *Settings) LogDriver() string { return s.String(KeyLogDriver) }

// LogPath returns the file sink destination.
func (s *Settings) LogPath() string { return s.String(KeyLogPath) }

// SQLitePath returns the sqlite sink database path.
func (s *Settings) SQLitePath() string { return s.String(KeyLogSQLitePath) }

// Benchmarking reports whether benchmark calls are effective.
func (s *Settings) Benchmarking() bool { return s.Bool(KeyBenchmarking) }

// ErrorCapture reports whether runtime errors are intercepted.
func (s *Settings) ErrorCapture() bool { return s.Bool(KeyErrorCapture) }

// ExceptionCapture reports whether panics are intercepted.
func (s *Settings) ExceptionCapture() bool { return s.Bool(KeyExceptionCapture) }

// ErrorReporting returns the severity mask faults are checked against.
func (s *Settings) ErrorReporting() int { return s.Int(KeyErrorReporting) }

// CLIOutput reports whether fatal reports are echoed to the console.
func (s *Settings) CLIOutput() bool { return s.Bool(KeyCLIOutput) }

// DebugMode reports whether presentation collaborators are enabled.
func (s *Settings) DebugMode() bool { return s.Bool(KeyDebugMode) }

// CrashDumpDir returns the crash dump directory, falling back to the default.
func (s *Settings) CrashDumpDir() string {
	if dir := s.String(KeyCrashDumpDir); dir != "" {
		return dir
	}
	return Default().CrashDump.Dir
}
