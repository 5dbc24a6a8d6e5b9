package testutil

import (
	"path/filepath"
	"testing"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
)

// NewTestSettings returns default settings with every path pointed into a
// per-test directory and the memory driver selected. overrides are applied
// last.
func NewTestSettings(t *testing.T, overrides map[string]interface{}) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	s := config.DefaultSettings()
	s.Set(config.KeyLogDriver, config.DriverMemory)
	s.Set(config.KeyLogPath, filepath.Join(dir, "debug.log"))
	s.Set(config.KeyLogSQLitePath, filepath.Join(dir, "debug.sqlite"))
	s.Set(config.KeyCrashDumpDir, filepath.Join(dir, "crashdumps"))
	s.Set(config.KeyCLIOutput, false)
	for k, v := range overrides {
		s.Set(k, v)
	}
	return s
}
