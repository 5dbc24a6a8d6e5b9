package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite_CreatesAndPreservesPerm(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, AtomicWrite(path, []byte("a: 1\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, os.Chmod(path, 0o644))
	require.NoError(t, AtomicWrite(path, []byte("a: 2\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(data))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteDefault_LoadsBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".debugkit.yaml")
	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# debugkit configuration"))
	assert.Contains(t, string(data), "log_driver: file")

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, Default().ErrorReporting, cfg.ErrorReporting)
	assert.Equal(t, Default().CrashDump.Dir, cfg.CrashDump.Dir)
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".debugkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("custom: true\n"), 0o600))

	assert.Error(t, WriteDefault(path, false))
	require.NoError(t, WriteDefault(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "custom: true")
}
