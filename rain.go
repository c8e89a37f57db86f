package main

import (
	logger "github.com/sirupsen/logrus"
)

// rotateMinute runs every 60 seconds: the drained rain count lands in the
// hourly window and the gust window moves to a fresh bucket.
func (w *weatherstation) rotateMinute() {
	tips := w.s.Rain.Drain()
	w.agg.RotateMinute(tips)
	if tips > 0 {
		logger.Infof("Rain [%v] tips this minute, day total [%v]", tips, w.s.Rain.Daily())
	}
	if w.heartbeatLed != nil {
		go w.heartbeatLed.Flash()
	}
}
