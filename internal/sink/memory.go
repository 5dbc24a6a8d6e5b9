package sink

import (
	"sync"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

// MemorySink keeps entries in an ordered in-memory list. It never fails.
type MemorySink struct {
	mu      sync.RWMutex
	entries []core.LogEntry
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write appends entry.
func (m *MemorySink) Write(entry core.LogEntry) error {
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return nil
}

// All returns a copy of the stored entries in write order.
func (m *MemorySink) All() []core.LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return core.CloneEntries(m.entries)
}

// Len returns the number of stored entries.
func (m *MemorySink) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear drops every stored entry.
func (m *MemorySink) Clear() {
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()
}
