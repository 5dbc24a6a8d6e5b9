package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

func TestSQLiteSink_WriteAndRead(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "debug.sqlite")
	s := NewSQLiteSink(func() string { return path }, nil)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Write(core.NewLogEntry(core.LevelInfo, "first", nil)))
	require.NoError(t, s.Write(core.NewLogEntry(core.LevelError, "second", core.NewContext("b", "2", "a", "1"))))
	require.NoError(t, s.Write(core.NewLogEntry(core.LevelDebug, "third", nil)))

	all, err := s.Entries(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, core.LevelError, all[1].Level)
	assert.Equal(t, core.Context{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}}, all[1].Context)

	last, err := s.Entries(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "second", last[0].Message)
	assert.Equal(t, "third", last[1].Message)
}

func TestSQLiteSink_EmptyPath(t *testing.T) {
	t.Parallel()
	s := NewSQLiteSink(func() string { return "" }, nil)
	err := s.Write(core.NewLogEntry(core.LevelInfo, "x", nil))
	assert.True(t, core.HasCode(err, core.CodeInvalidSink))
	assert.NoError(t, s.Close())
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()
	stmts := splitStatements(sqliteSchema)
	assert.Len(t, stmts, 2)
}
