package buffer

import (
	"sync"
)

// The station keeps three fixed-depth circular windows. None of them ever
// refuse a write: the oldest entry is overwritten unconditionally and the
// write position wraps modulo the depth.

// SampleWindow holds paired (speed, compass code) samples, one per second.
type SampleWindow struct {
	speeds []float64
	codes  []int
	pos    int
	depth  int
	lock   sync.Mutex
}

func NewSampleWindow(depth int) *SampleWindow {
	return &SampleWindow{
		speeds: make([]float64, depth),
		codes:  make([]int, depth),
		depth:  depth,
	}
}

// Put records one sample at the current position and advances it.
func (w *SampleWindow) Put(speed float64, code int) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.speeds[w.pos] = speed
	w.codes[w.pos] = code
	w.pos++
	if w.pos == w.depth {
		w.pos = 0
	}
}

// MeanSpeed is the arithmetic mean over the whole window.
func (w *SampleWindow) MeanSpeed() float64 {
	w.lock.Lock()
	defer w.lock.Unlock()
	sum := 0.0
	for _, s := range w.speeds {
		sum += s
	}
	return sum / float64(w.depth)
}

// Codes returns a copy of the buffered compass codes.
func (w *SampleWindow) Codes() []int {
	w.lock.Lock()
	defer w.lock.Unlock()
	out := make([]int, w.depth)
	copy(out, w.codes)
	return out
}

func (w *SampleWindow) Depth() int { return w.depth }

// Position is exposed for the window invariant tests.
func (w *SampleWindow) Position() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.pos
}

// GustWindow holds one (max speed, paired direction) bucket per minute.
type GustWindow struct {
	speeds []float64
	codes  []int
	pos    int
	depth  int
	lock   sync.Mutex
}

func NewGustWindow(depth int) *GustWindow {
	return &GustWindow{
		speeds: make([]float64, depth),
		codes:  make([]int, depth),
		depth:  depth,
	}
}

// Observe offers an instantaneous speed to the current bucket. The bucket
// only moves on a strict greater-than: ties keep the earlier value and its
// direction.
func (w *GustWindow) Observe(speed float64, code int) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if speed > w.speeds[w.pos] {
		w.speeds[w.pos] = speed
		w.codes[w.pos] = code
	}
}

// Current returns the running maximum of the bucket being filled.
func (w *GustWindow) Current() (float64, int) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.speeds[w.pos], w.codes[w.pos]
}

// Rotate advances to the next minute bucket and zeroes it, so the new
// minute starts from nothing regardless of the prior maximum.
func (w *GustWindow) Rotate() {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.pos++
	if w.pos == w.depth {
		w.pos = 0
	}
	w.speeds[w.pos] = 0
	w.codes[w.pos] = 0
}

// Max scans the whole window for the largest bucket and its direction.
func (w *GustWindow) Max() (float64, int) {
	w.lock.Lock()
	defer w.lock.Unlock()
	speed := 0.0
	code := 0
	for i, s := range w.speeds {
		if s > speed {
			speed = s
			code = w.codes[i]
		}
	}
	return speed, code
}

func (w *GustWindow) Position() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.pos
}

// CountWindow holds per-minute tick counts (rain bucket tips).
type CountWindow struct {
	counts []int64
	pos    int
	depth  int
	lock   sync.Mutex
}

func NewCountWindow(depth int) *CountWindow {
	return &CountWindow{
		counts: make([]int64, depth),
		depth:  depth,
	}
}

// Rotate writes the drained minute count into the current slot and advances.
func (w *CountWindow) Rotate(count int64) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.counts[w.pos] = count
	w.pos++
	if w.pos == w.depth {
		w.pos = 0
	}
}

// Sum totals the whole window.
func (w *CountWindow) Sum() int64 {
	w.lock.Lock()
	defer w.lock.Unlock()
	var sum int64
	for _, c := range w.counts {
		sum += c
	}
	return sum
}

func (w *CountWindow) Position() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.pos
}
