package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var update = flag.Bool("update", false, "update golden files")

// Golden compares normalized command output with files named
// <dir>/<name>.golden. Run tests with -update to rewrite them.
type Golden struct {
	t   *testing.T
	dir string
}

// NewGolden creates a golden file helper rooted at dir.
func NewGolden(t *testing.T, dir string) *Golden {
	return &Golden{t: t, dir: dir}
}

// Assert normalizes actual and compares it with the golden file.
func (g *Golden) Assert(name, actual string) {
	g.t.Helper()
	actual = Normalize(actual)
	path := filepath.Join(g.dir, name+".golden")

	if *update {
		if err := os.MkdirAll(g.dir, 0o750); err != nil {
			g.t.Fatalf("creating golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			g.t.Fatalf("writing golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		g.t.Fatalf("reading golden file %s: %v", path, err)
	}
	if want := Normalize(string(expected)); actual != want {
		g.t.Errorf("output mismatch for %s:\n--- expected ---\n%s\n--- actual ---\n%s", name, want, actual)
	}
}

// Normalize unifies line endings, trims trailing whitespace on each line
// and drops trailing newlines.
func Normalize(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

var (
	timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\S*|\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}|\d{2}:\d{2}:\d{2}`)
	durationRe  = regexp.MustCompile(`\d+(\.\d+)?(ns|us|µs|ms|s|m|h)+`)
	uuidRe      = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	lineRe      = regexp.MustCompile(`on line \d+`)
	bytesRe     = regexp.MustCompile(`[+-]?\d+(\.\d+)? (B|KiB|MiB|GiB|TiB)\b`)
)

// ScrubTimestamps replaces ISO, entry and clock timestamps.
func ScrubTimestamps(s string) string { return timestampRe.ReplaceAllString(s, "[TIMESTAMP]") }

// ScrubDurations replaces Go duration strings such as "1.5ms".
func ScrubDurations(s string) string { return durationRe.ReplaceAllString(s, "[DURATION]") }

// ScrubUUIDs replaces UUIDs such as crash dump ids.
func ScrubUUIDs(s string) string { return uuidRe.ReplaceAllString(s, "[UUID]") }

// ScrubLines replaces source line numbers in fault messages.
func ScrubLines(s string) string { return lineRe.ReplaceAllString(s, "on line [LINE]") }

// ScrubBytes replaces humanized byte sizes such as "1.5 MiB" or "+512 B".
func ScrubBytes(s string) string { return bytesRe.ReplaceAllString(s, "[BYTES]") }

// ScrubPaths replaces basePath with a placeholder.
func ScrubPaths(s, basePath string) string {
	return strings.ReplaceAll(s, basePath, "[WORKDIR]")
}

// ScrubAll applies every scrubber and normalizes the result.
func ScrubAll(s, basePath string) string {
	s = ScrubPaths(s, basePath)
	for _, scrub := range []func(string) string{ScrubTimestamps, ScrubDurations, ScrubUUIDs, ScrubLines, ScrubBytes} {
		s = scrub(s)
	}
	return Normalize(s)
}
