package session

import "sync/atomic"

// Clock is a monotonic logical clock stamping session operations.
//
// Operations are ordered by seq, never by wall time, so journals and traces
// compare identically across runs.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
