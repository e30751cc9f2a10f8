package core

import (
	"sync"
	"time"
)

// IDSource generates identifiers for locally created notes.
type IDSource interface {
	NextID() int64
}

// ClockIDs derives ids from the wall clock in unix milliseconds.
// Two calls within the same millisecond still get distinct, increasing ids.
type ClockIDs struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClockIDs creates a clock-based id source. A nil now uses time.Now.
func NewClockIDs(now func() time.Time) *ClockIDs {
	if now == nil {
		now = time.Now
	}
	return &ClockIDs{now: now}
}

// NextID implements IDSource.
func (c *ClockIDs) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}
