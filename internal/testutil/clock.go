package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start of a FakeClock: 1970-01-05 00:00 UTC, a Monday.
var Epoch = time.Unix(4*24*60*60, 0).UTC()

// FakeClock is a settable wall clock for tests. It satisfies engine.Clock.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFakeClock creates a clock reading start. A zero start means Epoch.
func NewFakeClock(start time.Time) *FakeClock {
	if start.IsZero() {
		start = Epoch
	}
	return &FakeClock{t: start}
}

// Now returns the current reading.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Nanos returns the reading as nanoseconds since the Unix epoch.
func (c *FakeClock) Nanos() uint64 {
	return uint64(c.Now().UnixNano())
}
