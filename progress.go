package skycorr

import "sync/atomic"

// ProgressTracker observes a run. Start is called once with the number
// of primary objects before any worker launches; Increment is called
// once per fully processed primary object, concurrently from all
// workers. Implementations must be safe for concurrent use.
type ProgressTracker interface {
	Start(total int64)
	Increment()
}

// NoopProgressTracker discards all progress notifications.
// Use this when progress reporting is not needed.
type NoopProgressTracker struct{}

func (NoopProgressTracker) Start(int64) {}
func (NoopProgressTracker) Increment()  {}

// CountingProgressTracker provides simple in-memory progress counting.
// Useful for polling completion from another goroutine without
// external dependencies.
type CountingProgressTracker struct {
	total atomic.Int64
	done  atomic.Int64
}

// Start implements ProgressTracker.
func (c *CountingProgressTracker) Start(total int64) {
	c.total.Store(total)
	c.done.Store(0)
}

// Increment implements ProgressTracker.
func (c *CountingProgressTracker) Increment() {
	c.done.Add(1)
}

// Processed returns the number of primary objects completed so far.
func (c *CountingProgressTracker) Processed() int64 { return c.done.Load() }

// Total returns the number of primary objects in the run.
func (c *CountingProgressTracker) Total() int64 { return c.total.Load() }

// Percent returns completion as a value in [0, 100]. An empty run
// reports 100.
func (c *CountingProgressTracker) Percent() float64 {
	total := c.total.Load()
	if total == 0 {
		return 100
	}
	return 100 * float64(c.done.Load()) / float64(total)
}
