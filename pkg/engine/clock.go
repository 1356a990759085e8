package engine

import (
	"math"
	"time"
)

// Clock measures wall-clock time between frames
type Clock struct {
	last     time.Time
	maxDelta float64
	now      func() time.Time
}

// NewClock creates a clock. maxDelta > 0 caps each tick, in seconds.
func NewClock(maxDelta float64) *Clock {
	return newClockWithSource(maxDelta, time.Now)
}

func newClockWithSource(maxDelta float64, now func() time.Time) *Clock {
	return &Clock{last: now(), maxDelta: maxDelta, now: now}
}

// Tick returns the seconds elapsed since the previous tick
func (c *Clock) Tick() float64 {
	now := c.now()
	dt := now.Sub(c.last).Seconds()
	c.last = now

	if dt < 0 {
		dt = 0
	}
	if c.maxDelta > 0 && dt > c.maxDelta {
		dt = c.maxDelta
	}
	return dt
}

// Reset discards the time since the previous tick, e.g. after a pause
func (c *Clock) Reset() {
	c.last = c.now()
}

// sanitizeDelta maps negative and non-finite deltas to zero
func sanitizeDelta(dt float64) float64 {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0
	}
	return dt
}
