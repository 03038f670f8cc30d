package core

import (
	"sync/atomic"
	"time"
)

// Clock produces timestamps for item versions.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// MonotonicClock wraps a wall clock and guarantees strictly increasing
// results: when the source has not advanced past the last value handed
// out, the last value plus one nanosecond is returned instead.
type MonotonicClock struct {
	source func() time.Time
	last   atomic.Int64
}

// NewMonotonicClock returns a clock over source. A nil source uses time.Now.
func NewMonotonicClock(source func() time.Time) *MonotonicClock {
	if source == nil {
		source = time.Now
	}
	return &MonotonicClock{source: source}
}

// Now returns the next timestamp in UTC.
func (c *MonotonicClock) Now() time.Time {
	for {
		last := c.last.Load()
		next := c.source().UnixNano()
		if next <= last {
			next = last + 1
		}
		if c.last.CompareAndSwap(last, next) {
			return time.Unix(0, next).UTC()
		}
	}
}

// Observe moves the clock forward so that later calls to Now return values
// after t. Loading persisted items calls it to keep new versions ahead of
// what is already on disk.
func (c *MonotonicClock) Observe(t time.Time) {
	n := t.UnixNano()
	for {
		last := c.last.Load()
		if n <= last || c.last.CompareAndSwap(last, n) {
			return
		}
	}
}

var systemClock = NewMonotonicClock(nil)

// SystemClock returns the process-wide monotonic clock.
func SystemClock() *MonotonicClock { return systemClock }
