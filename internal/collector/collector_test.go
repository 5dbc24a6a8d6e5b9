package collector

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

func TestCollector_AppendOrder(t *testing.T) {
	t.Parallel()
	c := New()

	c.AddLog(core.NewLogEntry(core.LevelInfo, "first", nil))
	c.AddLog(core.NewLogEntry(core.LevelError, "second", core.NewContext("k", 1)))

	logs := c.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "first", logs[0].Message)
	assert.Equal(t, core.LevelError, logs[1].Level)
}

func TestCollector_SnapshotsAreCopies(t *testing.T) {
	t.Parallel()
	c := New()
	c.AddLog(core.NewLogEntry(core.LevelInfo, "kept", core.NewContext("user", "ada")))
	c.AddError(core.ErrorRecord{Message: "e"})
	c.AddException(core.ExceptionRecord{Message: "x"})

	logs := c.Logs()
	logs[0].Message = "mutated"
	logs[0].Context[0].Value = "mallory"
	tail := c.Tail(1)
	tail[0].Context[0].Value = "eve"
	errs := c.Errors()
	errs[0].Message = "mutated"
	exc := c.Exceptions()
	exc[0].Message = "mutated"

	assert.Equal(t, "kept", c.Logs()[0].Message)
	v, _ := c.Logs()[0].Context.Get("user")
	assert.Equal(t, "ada", v)
	assert.Equal(t, "e", c.Errors()[0].Message)
	assert.Equal(t, "x", c.Exceptions()[0].Message)
}

func TestCollector_BenchmarksLatestWins(t *testing.T) {
	t.Parallel()
	c := New()
	c.AddBenchmark(BenchmarkRecord{Name: "a", Time: time.Second})
	c.AddBenchmark(BenchmarkRecord{Name: "b", Time: 2 * time.Second})
	c.AddBenchmark(BenchmarkRecord{Name: "a", Time: 3 * time.Second})

	latest := c.Benchmarks()
	require.Len(t, latest, 2)
	assert.Equal(t, 3*time.Second, latest["a"].Time)
	assert.Len(t, c.BenchmarkHistory(), 3)
}

func TestCollector_Tail(t *testing.T) {
	t.Parallel()
	c := New()
	for i := 0; i < 5; i++ {
		c.AddLog(core.NewLogEntry(core.LevelDebug, fmt.Sprint(i), nil))
	}

	tail := c.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, "3", tail[0].Message)
	assert.Equal(t, "4", tail[1].Message)
	assert.Len(t, c.Tail(50), 5)
	assert.Nil(t, c.Tail(0))
}

func TestCollector_ConcurrentAppends(t *testing.T) {
	t.Parallel()
	c := New()

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < 50; i++ {
				c.AddLog(core.NewLogEntry(core.LevelInfo, fmt.Sprintf("%d-%d", w, i), nil))
				c.AddError(core.ErrorRecord{Line: i})
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[string]int)
	for _, e := range c.Logs() {
		seen[e.Message]++
	}
	assert.Len(t, seen, 400)
	for msg, n := range seen {
		assert.Equal(t, 1, n, msg)
	}
	assert.Equal(t, Counts{Logs: 400, Errors: 400}, c.Counts())
}
