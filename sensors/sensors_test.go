package sensors

import (
	"testing"
	"time"

	"github.com/gr-butler/wxnode/env"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPulseCounterDebounce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewPulseCounter(clock, 10*time.Millisecond)

	require.True(t, c.Pulse())
	// Bounce inside the window is discarded.
	clock.Advance(2 * time.Millisecond)
	assert.False(t, c.Pulse())
	clock.Advance(3 * time.Millisecond)
	assert.False(t, c.Pulse())
	// Next edge past the window counts.
	clock.Advance(11 * time.Millisecond)
	assert.True(t, c.Pulse())

	assert.Equal(t, int64(2), c.Drain())
	assert.Equal(t, int64(0), c.Drain())
	// Daily total survives the drains.
	assert.Equal(t, int64(2), c.Daily())
}

func TestPulseCounterDebounceTimeRunsFromAcceptedEdge(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewPulseCounter(clock, 50*time.Millisecond)

	require.True(t, c.Pulse())
	// A rejected bounce must not extend the window.
	clock.Advance(30 * time.Millisecond)
	assert.False(t, c.Pulse())
	clock.Advance(25 * time.Millisecond) // 55ms after the accepted edge
	assert.True(t, c.Pulse())
	assert.Equal(t, int64(2), c.Drain())
}

func TestVaneClassification(t *testing.T) {
	// Sector centres from the divider table.
	cases := []struct {
		volts float64
		code  int
	}{
		{3.84, 0},  // N
		{1.98, 1},  // NNE
		{2.25, 2},  // NE
		{0.41, 3},  // ENE
		{0.45, 4},  // E
		{0.32, 5},  // ESE
		{0.90, 6},  // SE
		{0.62, 7},  // SSE
		{1.40, 8},  // S
		{1.19, 9},  // SSW
		{3.08, 10}, // SW
		{2.93, 11}, // WSW
		{4.62, 12}, // W
		{4.04, 13}, // WNW
		{4.33, 14}, // NW
		{3.43, 15}, // NNW
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, classifyVane(tc.volts), "volts %.2f", tc.volts)
	}

	// Out of range either side reads as disconnected.
	assert.Equal(t, env.DirDisconnected, classifyVane(0.01))
	assert.Equal(t, env.DirDisconnected, classifyVane(4.91))
}

func TestVaneReadErrorIsDisconnected(t *testing.T) {
	v := NewVane(FixedAnalog{Err: assert.AnError})
	assert.Equal(t, env.DirDisconnected, v.ReadCode())
}

func TestRails(t *testing.T) {
	r := NewRails(
		FixedAnalog{Volts: 3.3},  // reference exactly nominal
		FixedAnalog{Volts: 0.88}, // battery behind the divider
		FixedAnalog{Volts: 2.9},
	)
	assert.InDelta(t, 0.88*4.90, r.Battery(), 1e-9)
	assert.InDelta(t, 2.9, r.Light(), 1e-9)

	// A sagging reference rail scales the ratio back up.
	r = NewRails(
		FixedAnalog{Volts: 3.0},
		FixedAnalog{Volts: 0.88},
		FixedAnalog{Volts: 2.9},
	)
	assert.InDelta(t, 0.88*(3.3/3.0)*4.90, r.Battery(), 1e-9)

	// Dead reference never divides by zero.
	r = NewRails(FixedAnalog{Volts: 0}, FixedAnalog{Volts: 1}, FixedAnalog{Volts: 1})
	assert.Equal(t, 0.0, r.Battery())
	assert.Equal(t, 0.0, r.Light())
}
