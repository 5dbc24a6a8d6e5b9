// Package collector stores the diagnostic data captured during a process
// lifetime: log entries, error and exception records, and finished benchmark
// results. The store is append-only; readers always receive copies.
package collector

import (
	"sync"
	"time"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

// BenchmarkRecord is a finished benchmark as stored by the collector.
type BenchmarkRecord struct {
	Name       string        `json:"name"`
	StoppedAt  time.Time     `json:"stopped_at"`
	Time       time.Duration `json:"time"`
	Memory     int64         `json:"memory"`
	PeakMemory uint64        `json:"peak_memory"`
}

// Collector is safe for concurrent use. Concurrent appends each appear
// exactly once; their relative order is not defined.
type Collector struct {
	mu         sync.RWMutex
	logs       []core.LogEntry
	errors     []core.ErrorRecord
	exceptions []core.ExceptionRecord
	benchmarks []BenchmarkRecord
}

// New creates an empty collector.
func New() *Collector {
	return &Collector{}
}

// AddLog appends a log entry.
func (c *Collector) AddLog(entry core.LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, entry)
}

// AddError appends an error record.
func (c *Collector) AddError(rec core.ErrorRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, rec)
}

// AddException appends an exception record.
func (c *Collector) AddException(rec core.ExceptionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exceptions = append(c.exceptions, rec)
}

// AddBenchmark appends a finished benchmark. A name stopped several times
// keeps every record; Benchmarks reports the latest one.
func (c *Collector) AddBenchmark(rec BenchmarkRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.benchmarks = append(c.benchmarks, rec)
}

// Logs returns a snapshot of all log entries in append order.
func (c *Collector) Logs() []core.LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return core.CloneEntries(c.logs)
}

// Errors returns a snapshot of all error records.
func (c *Collector) Errors() []core.ErrorRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.ErrorRecord, len(c.errors))
	copy(out, c.errors)
	return out
}

// Exceptions returns a snapshot of all exception records.
func (c *Collector) Exceptions() []core.ExceptionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.ExceptionRecord, len(c.exceptions))
	copy(out, c.exceptions)
	return out
}

// BenchmarkHistory returns every benchmark record in append order.
func (c *Collector) BenchmarkHistory() []BenchmarkRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]BenchmarkRecord, len(c.benchmarks))
	copy(out, c.benchmarks)
	return out
}

// Benchmarks returns the latest record per benchmark name.
func (c *Collector) Benchmarks() map[string]BenchmarkRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]BenchmarkRecord, len(c.benchmarks))
	for _, rec := range c.benchmarks {
		out[rec.Name] = rec
	}
	return out
}

// Tail returns up to n of the most recent log entries.
func (c *Collector) Tail(n int) []core.LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := len(c.logs) - n
	if start < 0 {
		start = 0
	}
	return core.CloneEntries(c.logs[start:])
}

// Counts reports how many items of each kind have been collected.
type Counts struct {
	Logs       int `json:"logs"`
	Errors     int `json:"errors"`
	Exceptions int `json:"exceptions"`
	Benchmarks int `json:"benchmarks"`
}

// Counts returns the current item counts.
func (c *Collector) Counts() Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Counts{
		Logs:       len(c.logs),
		Errors:     len(c.errors),
		Exceptions: len(c.exceptions),
		Benchmarks: len(c.benchmarks),
	}
}
