// Package data owns the time-windowed aggregation state and turns it into
// consistent snapshots for the reporter.
package data

import (
	"math"

	"github.com/gr-butler/wxnode/buffer"
	"github.com/gr-butler/wxnode/env"
)

// Snapshot is one fully-computed reading. It is recomputed wholesale each
// reporting cycle and never partially updated.
type Snapshot struct {
	WindSpeed   float64 // instantaneous, mph
	WindDir     int     // compass code 0-15, 16 = disconnected
	WindSpeed2m float64
	WindDir2m   int
	GustSpeed   float64 // current minute bucket
	GustDir     int
	Gust10m     float64 // max over the 10 minute window
	Gust10mDir  int
	Humidity    float64 // %RH
	TempF       float64
	Pressure    float64 // Pa
	RainHour    float64 // inches over the last 60 minutes
	RainDay     float64 // inches since restart
	Battery     float64 // volts
	Light       float64 // volts, 0 - 3.3
}

// EnvReadings are the collaborator-supplied fields folded into a snapshot.
type EnvReadings struct {
	TempF    float64
	Humidity float64
	Pressure float64
	Battery  float64
	Light    float64
}

// Aggregator exclusively owns the ring windows plus the daily gust. It is
// only ever touched from the scheduling loop, never from the edge monitors.
type Aggregator struct {
	wind *buffer.SampleWindow
	gust *buffer.GustWindow
	rain *buffer.CountWindow

	lastSpeed    float64
	lastDir      int
	dayGustSpeed float64
	dayGustDir   int
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		wind: buffer.NewSampleWindow(env.WindWindowDepth),
		gust: buffer.NewGustWindow(env.GustWindowDepth),
		rain: buffer.NewCountWindow(env.RainWindowDepth),
	}
}

// RecordSecond folds one second of drained wind ticks and the current vane
// code into the windows. ticks were accumulated over exactly one second, so
// the instantaneous speed is ticks * mph-per-tick.
func (a *Aggregator) RecordSecond(ticks int64, code int) {
	speed := float64(ticks) * env.MphPerTick
	a.lastSpeed = speed
	a.lastDir = code
	a.wind.Put(speed, code)
	a.gust.Observe(speed, code)
	if speed > a.dayGustSpeed {
		a.dayGustSpeed = speed
		a.dayGustDir = code
	}
}

// RotateMinute closes out the current minute: the gust window moves to a
// fresh bucket and the drained rain count lands in the rain window.
func (a *Aggregator) RotateMinute(rainTicks int64) {
	a.gust.Rotate()
	a.rain.Rotate(rainTicks)
}

// Snapshot reduces the aggregator state and the collaborator readings into
// one reading. dailyRainTicks is the cumulative tip count since restart.
func (a *Aggregator) Snapshot(er EnvReadings, dailyRainTicks int64) Snapshot {
	gustSpeed, gustDir := a.gust.Current()
	gust10, gust10Dir := a.gust.Max()

	return Snapshot{
		WindSpeed:   a.lastSpeed,
		WindDir:     a.lastDir,
		WindSpeed2m: a.wind.MeanSpeed(),
		WindDir2m:   circularMeanCode(a.wind.Codes()),
		GustSpeed:   gustSpeed,
		GustDir:     gustDir,
		Gust10m:     gust10,
		Gust10mDir:  gust10Dir,
		Humidity:    er.Humidity,
		TempF:       er.TempF,
		Pressure:    er.Pressure,
		RainHour:    float64(a.rain.Sum()) * env.InchPerTip,
		RainDay:     float64(dailyRainTicks) * env.InchPerTip,
		Battery:     er.Battery,
		Light:       er.Light,
	}
}

// DayGust reports the largest instantaneous speed seen since restart.
func (a *Aggregator) DayGust() (float64, int) {
	return a.dayGustSpeed, a.dayGustDir
}

// circularMeanCode averages compass codes on the unit circle. A plain
// arithmetic mean is meaningless across the 15/0 wrap: {15, 0, 1} must come
// out as 0, not 5.
func circularMeanCode(codes []int) int {
	sumCos := 0.0
	sumSin := 0.0
	for _, c := range codes {
		angle := math.Pi/2 - float64(c)*(math.Pi/8)
		sumCos += math.Cos(angle)
		sumSin += math.Sin(angle)
	}
	n := float64(len(codes))
	sumCos /= n
	sumSin /= n
	mean := math.Atan2(sumCos, sumSin) * (8 / math.Pi)
	if mean < 0 {
		mean += 16
	}
	code := int(mean)
	// A mean a hair below zero lands on exactly 16.0 after the fold.
	if code >= 16 {
		code -= 16
	}
	return code
}
