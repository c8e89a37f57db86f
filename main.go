package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gr-butler/wxnode/env"
	"github.com/gr-butler/wxnode/led"
	"github.com/gr-butler/wxnode/sensors"
	"github.com/gr-butler/wxnode/store"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	logger "github.com/sirupsen/logrus"
)

const version = "WXNODE-1.0.2"

func main() {
	logger.Infof("Starting field weather node [%v]", version)

	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file [%v]", err)
	}

	args := env.Args{
		Test:       flag.Bool("test", false, "test mode: fake sensors, no hardware"),
		Pull:       flag.Bool("pull", false, "pull variant: accept inbound requests instead of dialing the collector"),
		Verbose:    flag.Bool("verbose", false, "debug logging"),
		StorePath:  flag.String("store", "/var/lib/wxnode/config.img", "path of the config image"),
		ListenAddr: flag.String("listen", ":8880", "pull variant listen address"),
	}
	flag.Parse()

	if *args.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	if *args.Test {
		logger.Info("TEST MODE")
	}

	cfg, err := store.Open(*args.StorePath)
	if err != nil {
		logger.Errorf("Failed to open config image [%v]", err)
		logger.Exit(1)
	}
	seedDefaults(cfg)

	clock := clockwork.NewRealClock()

	s := &sensors.Sensors{}
	if *args.Test {
		s = sensors.NewFakeSensors(clock)
	} else {
		if err := s.InitSensors(clock); err != nil {
			logger.Errorf("Failed to initialise sensors!! [%v]", err)
			logger.Exit(1)
		}
		defer s.Close()
	}

	w := newStation(s, cfg, clock, processRestart)
	if !*args.Test {
		w.heartbeatLed = led.New("Heartbeat", env.HeartbeatLed)
		w.reportLed = led.New("Report", env.RainTipLed)
	}

	if broker, ok := os.LookupEnv("MQTT_BROKER"); ok {
		topic := os.Getenv("MQTT_TOPIC")
		if topic == "" {
			topic = "wxnode/reading"
		}
		mirror, err := newMQTTMirror(broker, topic, version)
		if err != nil {
			logger.Errorf("MQTT mirror unavailable [%v]", err)
		} else {
			w.mirror = mirror
		}
	}

	// prometheus endpoint, off unless asked for
	if sendData, ok := os.LookupEnv("SENDPROMDATA"); ok && sendData == "true" {
		go func() {
			logger.Info("Starting metrics endpoint...")
			http.Handle("/metrics", promhttp.Handler())
			logger.Fatal(http.ListenAndServe(":9090", nil))
		}()
	}

	sched := newScheduler(clock)
	sched.add("wind-sample", every(time.Second), w.sampleWind)
	sched.add("minute-rotate", every(time.Minute), w.rotateMinute)
	if *args.Pull {
		// Responder keeps the latest snapshot warm; the collector pulls it.
		sched.add("snapshot", w.reportInterval, func() { w.computeSnapshot() })
		ln, err := net.Listen("tcp", *args.ListenAddr)
		if err != nil {
			logger.Errorf("Failed to listen on [%v]: [%v]", *args.ListenAddr, err)
			logger.Exit(1)
		}
		go w.servePull(ln, env.IdleTimeout)
	} else {
		sched.add("snapshot-report", w.reportInterval, w.reportSnapshot)
	}

	sched.run(context.Background())
}

// seedDefaults fills the slots a factory-fresh image is missing.
func seedDefaults(cfg *store.Store) {
	if cfg.Read(store.FieldReportInterval) == "" {
		_ = cfg.Write(store.FieldReportInterval, "10")
	}
	if cfg.Read(store.FieldPassword) == "" {
		_ = cfg.Write(store.FieldPassword, "wxnode")
	}
}

// processRestart is the real restart: log, flush, exit non-zero and let the
// supervisor bring the process back up from scratch.
func processRestart(reason string) {
	logger.Errorf("RESTARTING: %v", reason)
	logger.Exit(1)
}
