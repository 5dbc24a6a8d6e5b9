package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := UserConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "debugkit", ".debugkit.yaml"), path)
}

func TestEnsureUserConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := EnsureUserConfigFile()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log_driver: file")

	// An existing file is left alone.
	require.NoError(t, os.WriteFile(path, []byte("log_driver: memory\n"), 0o600))
	again, err := EnsureUserConfigFile()
	require.NoError(t, err)
	assert.Equal(t, path, again)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log_driver: memory\n", string(data))
}

func TestLoader_ReadsUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	path, err := UserConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("log_driver: sqlite\n"), 0o600))

	settings, err := NewLoader().LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, settings.LogDriver())
}
