package testutil

import (
	"sync"
	"time"
)

// ManualClock is a deterministic clock for tests. Each call to Now returns the
// current time and then advances it by Step.
type ManualClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewManualClock returns a clock starting at start that advances by step per call.
func NewManualClock(start time.Time, step time.Duration) *ManualClock {
	return &ManualClock{current: start, step: step}
}

// Now returns the current time and advances the clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

// Peek returns the time the next call to Now will return.
func (c *ManualClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
