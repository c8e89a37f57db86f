package main

import (
	"strconv"
	"sync"
	"time"

	"github.com/gr-butler/wxnode/command"
	"github.com/gr-butler/wxnode/data"
	"github.com/gr-butler/wxnode/env"
	"github.com/gr-butler/wxnode/led"
	"github.com/gr-butler/wxnode/sensors"
	"github.com/gr-butler/wxnode/store"
	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
)

type weatherstation struct {
	s     *sensors.Sensors
	agg   *data.Aggregator
	cfg   *store.Store
	proc  *command.Processor
	clock clockwork.Clock

	heartbeatLed *led.LED
	reportLed    *led.LED
	mirror       *mqttMirror

	// restart performs a full process re-initialization; all aggregator
	// state is rebuilt from zero, only the store survives.
	restart func(reason string)

	reportFails int

	snapLock sync.Mutex
	lastSnap data.Snapshot
}

func newStation(s *sensors.Sensors, cfg *store.Store, clock clockwork.Clock, restart func(string)) *weatherstation {
	return &weatherstation{
		s:       s,
		agg:     data.NewAggregator(),
		cfg:     cfg,
		proc:    command.NewProcessor(cfg),
		clock:   clock,
		restart: restart,
	}
}

// reportInterval reads the configured cadence from the store before every
// cycle, so a `t` command takes effect without a restart. Out-of-bound or
// unparseable values fall back to the default.
func (w *weatherstation) reportInterval() time.Duration {
	raw := w.cfg.Read(store.FieldReportInterval)
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < env.MinReportSeconds || secs > env.MaxReportSeconds {
		secs = env.DefaultReportSeconds
	}
	return time.Duration(secs) * time.Second
}

// computeSnapshot reduces the aggregator and collaborator state into one
// consistent reading and caches it for the pull responder.
func (w *weatherstation) computeSnapshot() data.Snapshot {
	er := data.EnvReadings{}
	tempF, humidity, pressure, err := w.s.Atm.Sense()
	if err != nil {
		logger.Warnf("No atmosphere data [%v]", err)
	} else {
		er.TempF = tempF
		er.Humidity = humidity
		er.Pressure = pressure
	}
	if w.s.Rail != nil {
		er.Battery = w.s.Rail.Battery()
		er.Light = w.s.Rail.Light()
	}

	snap := w.agg.Snapshot(er, w.s.Rain.Daily())

	w.snapLock.Lock()
	w.lastSnap = snap
	w.snapLock.Unlock()

	publishMetrics(snap)
	if w.mirror != nil {
		w.mirror.publish(snap)
	}
	return snap
}

func (w *weatherstation) snapshot() data.Snapshot {
	w.snapLock.Lock()
	defer w.snapLock.Unlock()
	return w.lastSnap
}
