// Package sink persists log entries. A Registry maps driver names to Sink
// implementations and a Dispatcher picks the sink for every write from the
// current log_driver setting.
package sink

import (
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
)

// Sink persists one log entry.
type Sink interface {
	Write(entry core.LogEntry) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(entry core.LogEntry) error

// Write calls f.
func (f SinkFunc) Write(entry core.LogEntry) error { return f(entry) }

// FallbackDriver is used for driver names with no registered sink.
const FallbackDriver = config.DriverFile

// Registry maps driver names to sinks.
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]Sink
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]Sink)}
}

// Register binds name to s, replacing any previous binding.
func (r *Registry) Register(name string, s Sink) error {
	if name == "" {
		return core.ErrValidation(core.CodeInvalidSink, "sink name is required")
	}
	if s == nil {
		return core.ErrValidation(core.CodeInvalidSink, "sink is nil").WithDetail("name", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[name] = s
	return nil
}

// Lookup returns the sink registered under name.
func (r *Registry) Lookup(name string) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sinks[name]
	return s, ok
}

// Resolve returns the sink for name, or the file sink when name is unknown.
func (r *Registry) Resolve(name string) (Sink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sinks[name]; ok {
		return s, nil
	}
	if s, ok := r.sinks[FallbackDriver]; ok {
		return s, nil
	}
	return nil, core.ErrNotFound("sink", name)
}

// Names returns the registered driver names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered sink that implements io.Closer.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	for _, s := range r.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Dispatcher routes entries to the sink named by the log_driver setting.
// The setting is read on every call.
type Dispatcher struct {
	registry *Registry
	settings *config.Settings
	logger   *logging.Logger
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry, settings *config.Settings, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		settings: settings,
		logger:   logging.OrNop(logger).WithComponent("sink"),
	}
}

// Driver returns the driver currently selected.
func (d *Dispatcher) Driver() string {
	return d.settings.LogDriver()
}

// Write sends entry to the selected sink and returns its error unchanged.
func (d *Dispatcher) Write(entry core.LogEntry) error {
	driver := d.Driver()
	s, err := d.registry.Resolve(driver)
	if err != nil {
		return err
	}
	if err := s.Write(entry); err != nil {
		d.logger.Debug("sink write failed", "driver", driver, "error", err)
		return err
	}
	return nil
}

// Defaults holds the collaborators used by DefaultRegistry.
type Defaults struct {
	Settings  *config.Settings
	Memory    *MemorySink
	Forwarder Forwarder
	Logger    *logging.Logger
}

// DefaultRegistry registers the built-in drivers: file, memory, log and
// sqlite. A nil Memory or Forwarder gets a fresh memory sink or a slog
// forwarder over slog.Default.
func DefaultRegistry(d Defaults) *Registry {
	if d.Settings == nil {
		d.Settings = config.DefaultSettings()
	}
	if d.Memory == nil {
		d.Memory = NewMemorySink()
	}
	if d.Forwarder == nil {
		d.Forwarder = NewSlogForwarder(nil)
	}
	settings := d.Settings
	r := NewRegistry()
	_ = r.Register(config.DriverFile, NewFileSink(settings.LogPath))
	_ = r.Register(config.DriverMemory, d.Memory)
	_ = r.Register(config.DriverLog, NewForwardSink(d.Forwarder))
	_ = r.Register(config.DriverSQLite, NewSQLiteSink(settings.SQLitePath, d.Logger))
	return r
}
