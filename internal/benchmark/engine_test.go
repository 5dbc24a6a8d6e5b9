package benchmark

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
)

// fakeProbe returns a settable memory value.
type fakeProbe struct {
	mu  sync.Mutex
	mem uint64
	err error
}

func (p *fakeProbe) Usage() (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mem, p.err
}

func (p *fakeProbe) set(mem uint64) {
	p.mu.Lock()
	p.mem = mem
	p.mu.Unlock()
}

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestEngine(t *testing.T) (*Engine, *fakeProbe, *fakeClock) {
	t.Helper()
	probe := &fakeProbe{mem: 1000}
	clock := newFakeClock()
	e := NewEngine(config.DefaultSettings(), WithProbe(probe), WithClock(clock.Now))
	return e, probe, clock
}

func TestEngine_StartStop(t *testing.T) {
	t.Parallel()
	e, probe, clock := newTestEngine(t)

	e.Start("query")
	clock.Advance(50 * time.Millisecond)
	probe.set(1500)

	res, err := e.Stop("query")
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, res.Time)
	assert.Equal(t, int64(500), res.Memory)
	assert.Equal(t, uint64(1500), res.PeakMemory)
}

func TestEngine_RealClock(t *testing.T) {
	t.Parallel()
	e := NewEngine(config.DefaultSettings())

	e.Start("sleep")
	time.Sleep(50 * time.Millisecond)
	res, err := e.Stop("sleep")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Time, 50*time.Millisecond)
}

func TestEngine_NegativeMemoryDelta(t *testing.T) {
	t.Parallel()
	e, probe, _ := newTestEngine(t)

	e.Start("gc")
	probe.set(400)
	res, err := e.Stop("gc")
	require.NoError(t, err)
	assert.Equal(t, int64(-600), res.Memory)
	assert.Equal(t, uint64(1000), res.PeakMemory)
}

func TestEngine_RestartRunningRearms(t *testing.T) {
	t.Parallel()
	e, probe, clock := newTestEngine(t)

	e.Start("x")
	clock.Advance(time.Second)
	probe.set(2000)
	secondStart := clock.Now()
	e.Start("x")

	sessions := e.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, secondStart, sessions[0].StartTime)
	assert.Equal(t, uint64(2000), sessions[0].StartMemory)

	clock.Advance(10 * time.Millisecond)
	res, err := e.Stop("x")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, res.Time)
}

func TestEngine_RestartStoppedOverwrites(t *testing.T) {
	t.Parallel()
	e, _, clock := newTestEngine(t)

	e.Start("x")
	clock.Advance(time.Second)
	_, err := e.Stop("x")
	require.NoError(t, err)

	e.Start("x")
	_, err = e.Result("x")
	assert.True(t, core.HasCode(err, core.CodeBenchmarkRunning))
}

func TestEngine_StopErrors(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t)

	_, err := e.Stop("missing")
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatState))
	assert.True(t, core.HasCode(err, core.CodeBenchmarkNotRunning))
	assert.Empty(t, e.Sessions())

	e.Start("once")
	_, err = e.Stop("once")
	require.NoError(t, err)
	before := e.Sessions()

	_, err = e.Stop("once")
	assert.True(t, core.HasCode(err, core.CodeBenchmarkNotRunning))
	assert.Equal(t, before, e.Sessions())
}

func TestEngine_ResultIdempotent(t *testing.T) {
	t.Parallel()
	e, _, clock := newTestEngine(t)

	e.Start("a")
	clock.Advance(3 * time.Millisecond)
	stopped, err := e.Stop("a")
	require.NoError(t, err)

	first, err := e.Result("a")
	require.NoError(t, err)
	second, err := e.Result("a")
	require.NoError(t, err)
	assert.Equal(t, stopped, first)
	assert.Equal(t, first, second)

	_, err = e.Result("nope")
	assert.True(t, core.IsCategory(err, core.ErrCatNotFound))
}

func TestEngine_BenchmarksWithRunningSession(t *testing.T) {
	t.Parallel()
	e, _, clock := newTestEngine(t)

	e.Start("done")
	clock.Advance(time.Millisecond)
	_, err := e.Stop("done")
	require.NoError(t, err)
	e.Start("busy-1")
	e.Start("busy-2")

	results, err := e.Benchmarks()
	require.Error(t, err)
	assert.Contains(t, results, "done")
	assert.NotContains(t, results, "busy-1")
	assert.True(t, core.HasCode(err, core.CodeBenchmarkRunning))

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 2)
}

func TestEngine_BenchmarksAllStopped(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t)

	results, err := e.Benchmarks()
	require.NoError(t, err)
	assert.Empty(t, results)

	e.Start("a")
	e.Start("b")
	_, _ = e.Stop("a")
	_, _ = e.Stop("b")

	results, err = e.Benchmarks()
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestEngine_Reset(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t)

	e.Start("a")
	e.Start("b")
	_, _ = e.Stop("b")
	e.Reset()

	assert.Empty(t, e.Sessions())
	_, err := e.Stop("a")
	assert.True(t, core.HasCode(err, core.CodeBenchmarkNotRunning))
}

func TestEngine_Disabled(t *testing.T) {
	t.Parallel()
	settings := config.DefaultSettings()
	settings.Set(config.KeyBenchmarking, false)
	e := NewEngine(settings, WithProbe(&fakeProbe{}))

	e.Start("a")
	res, err := e.Stop("a")
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, e.Sessions())

	results, err := e.Benchmarks()
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, e.Sample())
}

func TestEngine_SampleRaisesPeak(t *testing.T) {
	t.Parallel()
	e, probe, _ := newTestEngine(t)

	e.Start("spike")
	probe.set(9000)
	assert.Equal(t, 1, e.Sample())
	probe.set(1200)

	res, err := e.Stop("spike")
	require.NoError(t, err)
	assert.Equal(t, uint64(9000), res.PeakMemory)
	assert.Equal(t, int64(200), res.Memory)
}

func TestEngine_ProbeFailure(t *testing.T) {
	t.Parallel()
	probe := &fakeProbe{err: errors.New("no procfs")}
	e := NewEngine(config.DefaultSettings(), WithProbe(probe))

	e.Start("a")
	res, err := e.Stop("a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Memory)
}

func TestEngine_ConcurrentNames(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t)

	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d", "e", "f"}
	for _, n := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				e.Start(name)
				_, _ = e.Stop(name)
			}
		}(n)
	}
	wg.Wait()

	results, err := e.Benchmarks()
	require.NoError(t, err)
	assert.Len(t, results, len(names))
}
