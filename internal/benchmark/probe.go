package benchmark

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
)

// Probe reports the current memory usage in bytes.
type Probe interface {
	Usage() (uint64, error)
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func() (uint64, error)

// Usage calls f.
func (f ProbeFunc) Usage() (uint64, error) { return f() }

// HeapProbe reads allocated heap bytes from the Go runtime.
type HeapProbe struct{}

// Usage returns runtime.MemStats.HeapAlloc.
func (HeapProbe) Usage() (uint64, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc, nil
}

// RSSProbe reads the resident set size of the current process.
type RSSProbe struct {
	proc *process.Process
}

// NewRSSProbe creates a probe bound to the current process.
func NewRSSProbe() (*RSSProbe, error) {
	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		return nil, fmt.Errorf("opening current process: %w", err)
	}
	return &RSSProbe{proc: p}, nil
}

// Usage returns the process RSS in bytes.
func (p *RSSProbe) Usage() (uint64, error) {
	info, err := p.proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("reading process memory: %w", err)
	}
	return info.RSS, nil
}

// NewProbe returns the probe for a configured memory source. Unknown sources
// and RSS probes that cannot be opened fall back to the heap probe.
func NewProbe(source string) Probe {
	if source == config.MemorySourceRSS {
		if p, err := NewRSSProbe(); err == nil {
			return p
		}
	}
	return HeapProbe{}
}
