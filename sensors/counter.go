package sensors

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// PulseCounter is the only state shared with the edge monitors (the stand-in
// for interrupt context). It holds nothing but counters and the last edge
// time; buffers and floating point stay out of the edge path.
type PulseCounter struct {
	clock    clockwork.Clock
	debounce time.Duration

	ticks    atomic.Int64
	daily    atomic.Int64
	lastEdge atomic.Int64 // unix nanos of the last accepted edge
}

func NewPulseCounter(clock clockwork.Clock, debounce time.Duration) *PulseCounter {
	c := &PulseCounter{clock: clock, debounce: debounce}
	c.lastEdge.Store(clock.Now().Add(-2 * debounce).UnixNano())
	return c
}

// Pulse registers one switch edge. Edges inside the debounce window are
// discarded; a qualifying edge bumps the raw and daily counters and records
// the edge time. Returns whether the edge was accepted.
func (c *PulseCounter) Pulse() bool {
	now := c.clock.Now().UnixNano()
	last := c.lastEdge.Load()
	if now-last <= int64(c.debounce) {
		return false
	}
	c.lastEdge.Store(now)
	c.ticks.Add(1)
	c.daily.Add(1)
	return true
}

// Drain returns the raw tick count and zeroes it in a single atomic
// exchange, so an edge landing mid-drain is never lost or double counted.
func (c *PulseCounter) Drain() int64 {
	return c.ticks.Swap(0)
}

// Daily is the cumulative count since restart. It is never drained.
func (c *PulseCounter) Daily() int64 {
	return c.daily.Load()
}
