package main

import (
	logger "github.com/sirupsen/logrus"
)

// sampleWind runs once per second from the scheduling loop: drain the raw
// tick counter, read the vane, and fold both into the windows. This is the
// only consumer of the wind counter.
func (w *weatherstation) sampleWind() {
	ticks := w.s.Wind.Drain()
	code := w.s.Vane.ReadCode()
	w.agg.RecordSecond(ticks, code)
	if ticks > 0 {
		logger.Debugf("Wind [%v] ticks, vane code [%v]", ticks, code)
	}
}
