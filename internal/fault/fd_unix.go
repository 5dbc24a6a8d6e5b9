//go:build !windows

package fault

import (
	"os"

	"golang.org/x/sys/unix"
)

// countFDs returns the number of open file descriptors and the soft limit.
// Zero means unknown.
func countFDs() (open, limit int) {
	for _, dir := range []string{"/proc/self/fd", "/dev/fd"} {
		if entries, err := os.ReadDir(dir); err == nil {
			open = len(entries)
			break
		}
	}

	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err == nil {
		// #nosec G115 -- rlimit values are always within int range on supported platforms
		limit = int(rlim.Cur)
	}
	return open, limit
}
