package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

func testSettings(t *testing.T, driver string) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	s := config.DefaultSettings()
	s.Set(config.KeyLogDriver, driver)
	s.Set(config.KeyLogPath, dir+"/debug.log")
	s.Set(config.KeyLogSQLitePath, dir+"/debug.sqlite")
	return s
}

func TestRegistry_RegisterValidation(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	err := r.Register("", NewMemorySink())
	assert.True(t, core.HasCode(err, core.CodeInvalidSink))
	err = r.Register("mem", nil)
	assert.True(t, core.HasCode(err, core.CodeInvalidSink))

	require.NoError(t, r.Register("mem", NewMemorySink()))
	assert.Equal(t, []string{"mem"}, r.Names())
}

func TestRegistry_ResolveFallback(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	_, err := r.Resolve("anything")
	assert.True(t, core.IsCategory(err, core.ErrCatNotFound))

	file := NewStaticFileSink(t.TempDir() + "/x.log")
	require.NoError(t, r.Register(config.DriverFile, file))

	s, err := r.Resolve("does-not-exist")
	require.NoError(t, err)
	assert.Same(t, file, s)
}

func TestDispatcher_MemoryDriver(t *testing.T) {
	t.Parallel()
	settings := testSettings(t, config.DriverMemory)
	mem := NewMemorySink()
	d := NewDispatcher(DefaultRegistry(Defaults{Settings: settings, Memory: mem}), settings, nil)

	require.NoError(t, d.Write(core.NewLogEntry(core.LevelInfo, "Hello World", nil)))
	require.NoError(t, d.Write(core.NewLogEntry(core.LevelError, "Error occurred", core.NewContext("code", 500))))

	entries := mem.All()
	require.Len(t, entries, 2)
	assert.Equal(t, core.LevelInfo, entries[0].Level)
	assert.Equal(t, "Hello World", entries[0].Message)
	assert.Equal(t, core.LevelError, entries[1].Level)
	v, ok := entries[1].Context.Get("code")
	require.True(t, ok)
	assert.Equal(t, 500, v)
}

func TestDispatcher_DriverReadPerCall(t *testing.T) {
	t.Parallel()
	settings := testSettings(t, config.DriverMemory)
	mem := NewMemorySink()
	d := NewDispatcher(DefaultRegistry(Defaults{Settings: settings, Memory: mem}), settings, nil)

	require.NoError(t, d.Write(core.NewLogEntry(core.LevelInfo, "to memory", nil)))
	settings.Set(config.KeyLogDriver, config.DriverFile)
	require.NoError(t, d.Write(core.NewLogEntry(core.LevelInfo, "to file", nil)))

	assert.Equal(t, 1, mem.Len())
	lines := readLines(t, settings.LogPath())
	require.Len(t, lines, 1)
	assert.Equal(t, "to file", lines[0].Message)
}

func TestDispatcher_UnknownDriverFallsBackToFile(t *testing.T) {
	t.Parallel()
	settings := testSettings(t, "carrier-pigeon")
	d := NewDispatcher(DefaultRegistry(Defaults{Settings: settings}), settings, nil)

	require.NoError(t, d.Write(core.NewLogEntry(core.LevelNotice, "fallback", nil)))
	lines := readLines(t, settings.LogPath())
	require.Len(t, lines, 1)
	assert.Equal(t, core.LevelNotice, lines[0].Level)
}

func TestDispatcher_SinkErrorReturned(t *testing.T) {
	t.Parallel()
	settings := testSettings(t, "broken")
	boom := errors.New("boom")
	r := NewRegistry()
	require.NoError(t, r.Register("broken", SinkFunc(func(core.LogEntry) error { return boom })))
	d := NewDispatcher(r, settings, nil)

	err := d.Write(core.NewLogEntry(core.LevelInfo, "x", nil))
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_Close(t *testing.T) {
	t.Parallel()
	settings := testSettings(t, config.DriverSQLite)
	r := DefaultRegistry(Defaults{Settings: settings})
	d := NewDispatcher(r, settings, nil)

	require.NoError(t, d.Write(core.NewLogEntry(core.LevelInfo, "row", nil)))
	assert.NoError(t, r.Close())
}
