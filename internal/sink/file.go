package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

// FileSink appends entries as JSON lines. The target path is resolved on
// every write. Writers in this process are serialized by a mutex; writers in
// other processes by an exclusive advisory lock held for the write.
type FileSink struct {
	mu   sync.Mutex
	path func() string
}

// NewFileSink creates a sink writing to the path returned by path.
func NewFileSink(path func() string) *FileSink {
	return &FileSink{path: path}
}

// NewStaticFileSink creates a sink bound to one path.
func NewStaticFileSink(path string) *FileSink {
	return NewFileSink(func() string { return path })
}

// Write appends one line. Parent directories are created on demand.
func (s *FileSink) Write(entry core.LogEntry) error {
	line, err := core.Marshal(entry)
	if err != nil {
		return core.ErrIO(core.CodeSinkWrite, "encoding log entry", err)
	}
	line = append(line, '\n')

	path := s.path()
	if path == "" {
		return core.ErrValidation(core.CodeInvalidSink, "log path is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return core.ErrIO(core.CodeSinkOpen, "creating log directory", err).WithDetail("path", path)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // path comes from configuration
	if err != nil {
		return core.ErrIO(core.CodeSinkOpen, "opening log file", err).WithDetail("path", path)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return core.ErrIO(core.CodeSinkWrite, "locking log file", err).WithDetail("path", path)
	}
	defer func() { _ = unlockFile(f) }()

	if _, err := f.Write(line); err != nil {
		return core.ErrIO(core.CodeSinkWrite, fmt.Sprintf("writing %s", path), err)
	}
	return nil
}
