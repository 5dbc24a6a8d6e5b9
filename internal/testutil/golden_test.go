package testutil_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/testutil"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "CRLF to LF", input: "line1\r\nline2\r\n", want: "line1\nline2"},
		{name: "trailing whitespace", input: "line1   \nline2\t\n", want: "line1\nline2"},
		{name: "trailing newlines", input: "line1\nline2\n\n\n", want: "line1\nline2"},
		{name: "empty string", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testutil.Normalize(tt.input))
		})
	}
}

func TestScrubTimestamps(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "ISO", input: "dumped at 2024-01-15T10:30:45Z", want: "dumped at [TIMESTAMP]"},
		{name: "log line", input: `"timestamp":"2024-01-15 10:30:45"`, want: `"timestamp":"[TIMESTAMP]"`},
		{name: "none", input: "no timestamps here", want: "no timestamps here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testutil.ScrubTimestamps(tt.input))
		})
	}
}

func TestScrubLinesAndBytes(t *testing.T) {
	assert.Equal(t, "[Error] boom in main.go on line [LINE]",
		testutil.ScrubLines("[Error] boom in main.go on line 42"))
	assert.Equal(t, "took 3ms, [BYTES], peak [BYTES]",
		testutil.ScrubBytes("took 3ms, +1.5 MiB, peak 8.0 MiB"))
	assert.Equal(t, "id=[UUID]", testutil.ScrubUUIDs("id=550e8400-e29b-41d4-a716-446655440000"))
}

func TestScrubAll(t *testing.T) {
	input := "bench 550e8400-e29b-41d4-a716-446655440000 at 2024-01-15 10:30:45 in /work took 1.234s, -512 B  \r\n"
	got := testutil.ScrubAll(input, "/work")

	assert.Contains(t, got, "[UUID]")
	assert.Contains(t, got, "[TIMESTAMP]")
	assert.Contains(t, got, "[WORKDIR]")
	assert.Contains(t, got, "[DURATION]")
	assert.Contains(t, got, "[BYTES]")
	assert.NotContains(t, got, "\r\n")
}

func TestReadLogFile(t *testing.T) {
	dir := testutil.TempDir(t)
	path := testutil.TempFile(t, dir, "logs/debug.log",
		`{"timestamp":"2024-01-15 10:30:45","level":"INFO","message":"hi","context":{"a":1}}`+"\n")

	entries := testutil.ReadLogFile(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "hi", entries[0].Message)
	assert.Nil(t, testutil.ReadLogFile(t, filepath.Join(dir, "missing.log")))
}

func TestNewTestSettings(t *testing.T) {
	s := testutil.NewTestSettings(t, map[string]interface{}{config.KeyCLIOutput: true})
	assert.Equal(t, config.DriverMemory, s.LogDriver())
	assert.True(t, s.CLIOutput())
	assert.NotEqual(t, config.DefaultSettings().LogPath(), s.LogPath())
}

func TestExitRecorder(t *testing.T) {
	r := testutil.NewExitRecorder()
	assert.False(t, r.Exited())
	r.Exit(1)
	assert.Equal(t, []int{1}, r.Codes())
}

func TestGolden_Assert(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.TempFile(t, dir, "report.golden", "line one\nline two\n")

	g := testutil.NewGolden(t, dir)
	g.Assert("report", "line one  \r\nline two\r\n\r\n")
}
