package benchmark

import "time"

// State is the lifecycle state of a session.
type State string

const (
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// Session is the record kept for a benchmark name.
type Session struct {
	Name        string    `json:"name"`
	State       State     `json:"state"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time,omitempty"`
	StartMemory uint64    `json:"start_memory"`
	EndMemory   uint64    `json:"end_memory,omitempty"`
	PeakMemory  uint64    `json:"peak_memory"`
}

// Running reports whether the session has not been stopped yet.
func (s Session) Running() bool {
	return s.State == StateRunning
}

// result derives metrics. Only meaningful for stopped sessions.
func (s Session) result() Result {
	return Result{
		Time:       s.EndTime.Sub(s.StartTime),
		Memory:     int64(s.EndMemory) - int64(s.StartMemory), //nolint:gosec // memory sizes fit in int64
		PeakMemory: s.PeakMemory,
	}
}

func (s *Session) observe(mem uint64) {
	if mem > s.PeakMemory {
		s.PeakMemory = mem
	}
}
