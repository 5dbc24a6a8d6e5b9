package benchmark

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Sampler periodically feeds memory readings into an engine so that peaks
// reached between Start and Stop are recorded.
type Sampler struct {
	engine   *Engine
	interval time.Duration

	stopCh  chan struct{}
	done    chan struct{}
	started atomic.Bool
	once    sync.Once
	samples atomic.Int64
}

// NewSampler creates a sampler. A non-positive interval yields a sampler
// that never runs.
func NewSampler(engine *Engine, interval time.Duration) *Sampler {
	return &Sampler{
		engine:   engine,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sampling loop. It returns immediately; the loop ends
// when ctx is cancelled or Stop is called. Calling Start twice is a no-op.
func (s *Sampler) Start(ctx context.Context) {
	if s.interval <= 0 || !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				if s.engine.Sample() > 0 {
					s.samples.Add(1)
				}
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit.
func (s *Sampler) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
	})
	if s.started.Load() {
		<-s.done
	}
}

// Samples returns how many ticks observed at least one running session.
func (s *Sampler) Samples() int64 {
	return s.samples.Load()
}
