package gameserver

import (
	"context"
	"sync"
	"time"
)

// TickManager runs named periodic jobs on a shared interval. Jobs are
// invoked sequentially with the tick's wall-clock time, so lazy timers
// downstream all settle against the same now.
//
// Invariant: each job runs at most once per interval.
type TickManager struct {
	interval time.Duration
	mu       sync.Mutex
	jobs     map[string]func(now time.Time)
}

// NewTickManager returns a manager that fires every interval.
//
// Precondition: interval must be > 0.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		panic("gameserver.NewTickManager: interval must be > 0")
	}
	return &TickManager{
		interval: interval,
		jobs:     make(map[string]func(now time.Time)),
	}
}

// Register adds a named job. Replaces any existing job with the same name.
func (t *TickManager) Register(name string, fn func(now time.Time)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[name] = fn
}

// Unregister removes the named job.
func (t *TickManager) Unregister(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, name)
}

// Run drives the tick loop until ctx is cancelled. It blocks, so callers
// supervise it from their own goroutine.
//
// Postcondition: Returns nil after ctx cancellation; every registered job
// has been invoked once per elapsed interval.
func (t *TickManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			t.mu.Lock()
			jobs := make([]func(time.Time), 0, len(t.jobs))
			for _, fn := range t.jobs {
				jobs = append(jobs, fn)
			}
			t.mu.Unlock()
			for _, fn := range jobs {
				fn(now)
			}
		}
	}
}
