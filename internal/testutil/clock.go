package testutil

import (
	"sync"
	"time"
)

// Clock provides a thread-safe controllable time source for tests.
//
// Production code takes a `func() time.Time`; tests hand it
// clock.Now and steer time explicitly. This makes autosave cadence
// and artifact timestamps deterministic.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current test time.
//
// Thread-safe: uses mutex to protect the time value.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
//
// Monotonic as long as d is non-negative; the clock never moves on
// its own.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set overrides the current test time.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
