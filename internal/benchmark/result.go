package benchmark

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Result holds the metrics of a stopped session.
type Result struct {
	Time       time.Duration `json:"time"`
	Memory     int64         `json:"memory"`
	PeakMemory uint64        `json:"peak_memory"`
}

// String formats the result for humans, e.g. "52ms, +1.2 MiB, peak 8.0 MiB".
func (r Result) String() string {
	return fmt.Sprintf("%s, %s, peak %s",
		r.Time.Round(time.Microsecond), FormatDelta(r.Memory), humanize.IBytes(r.PeakMemory))
}

// FormatDelta renders a signed byte delta with an explicit sign.
func FormatDelta(delta int64) string {
	switch {
	case delta < 0:
		return "-" + humanize.IBytes(uint64(-delta))
	default:
		return "+" + humanize.IBytes(uint64(delta))
	}
}
