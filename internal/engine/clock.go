package engine

import "sync/atomic"

// Clock is the monotonic checkpoint counter of a run.
//
// Every checkpoint is stamped with a strictly increasing seq from this
// clock, so the archive records which checkpoint last wrote an entry
// without relying on wall-clock time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though a run only calls Next from its own goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
