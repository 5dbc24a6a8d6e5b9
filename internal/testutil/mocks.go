package testutil

import (
	"sync"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

// ExitRecorder stands in for os.Exit. Exit records the code and returns.
type ExitRecorder struct {
	mu    sync.Mutex
	codes []int
}

// NewExitRecorder creates an empty recorder.
func NewExitRecorder() *ExitRecorder {
	return &ExitRecorder{}
}

// Exit records code.
func (r *ExitRecorder) Exit(code int) {
	r.mu.Lock()
	r.codes = append(r.codes, code)
	r.mu.Unlock()
}

// Codes returns every recorded exit code.
func (r *ExitRecorder) Codes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.codes))
	copy(out, r.codes)
	return out
}

// Exited reports whether Exit was called at least once.
func (r *ExitRecorder) Exited() bool {
	return len(r.Codes()) > 0
}

// ForwardCall is one call seen by a MockForwarder.
type ForwardCall struct {
	Level   string
	Message string
	Context core.Context
}

// MockForwarder records forwarded entries and can be told to fail.
type MockForwarder struct {
	mu    sync.Mutex
	calls []ForwardCall
	err   error
}

// NewMockForwarder creates a forwarder that accepts everything.
func NewMockForwarder() *MockForwarder {
	return &MockForwarder{}
}

// WithError makes every later Forward return err.
func (m *MockForwarder) WithError(err error) *MockForwarder {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	return m
}

// Forward records the call.
func (m *MockForwarder) Forward(level, message string, ctx core.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ForwardCall{Level: level, Message: message, Context: ctx})
	return m.err
}

// Calls returns the recorded calls.
func (m *MockForwarder) Calls() []ForwardCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ForwardCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// FailingSink rejects every entry with Err.
type FailingSink struct {
	Err error
}

// Write returns s.Err, or ErrTest when unset.
func (s FailingSink) Write(core.LogEntry) error {
	if s.Err != nil {
		return s.Err
	}
	return ErrTest
}
