package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileScoped(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o600))

	b, err := ReadFileScoped(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestReadFileScoped_Errors(t *testing.T) {
	t.Parallel()
	for _, p := range []string{"", ".", string(filepath.Separator)} {
		_, err := ReadFileScoped(p)
		assert.Error(t, err, "path %q", p)
	}

	_, err := ReadFileScoped(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, os.IsNotExist(err))

	_, err = ReadFileScoped(filepath.Join(t.TempDir(), "nodir", "file.txt"))
	assert.Error(t, err)
}

func TestReadFromOffset(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, os.WriteFile(p, []byte("one\n"), 0o600))

	data, off, err := ReadFromOffset(p, 0)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(data))
	assert.Equal(t, int64(4), off)

	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, off, err = ReadFromOffset(p, off)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(data))
	assert.Equal(t, int64(8), off)

	data, _, err = ReadFromOffset(p, off)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadFromOffset_Truncated(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, os.WriteFile(p, []byte("x\n"), 0o600))

	data, off, err := ReadFromOffset(p, 100)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))
	assert.Equal(t, int64(2), off)
}
