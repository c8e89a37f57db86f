// collector-sim stands in for the collector during bring-up and soak
// testing: it accepts the station's push exchange, archives readings,
// answers with any pending maintenance directive, and optionally forwards
// converted readings upstream the way the production agent does.
package main

import (
	"database/sql"
	"flag"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/go-querystring/query"
	"github.com/gr-butler/wxnode/data"
	"github.com/gr-butler/wxnode/wire"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"

	_ "github.com/lib/pq"
	logger "github.com/sirupsen/logrus"
)

const createTable = `
CREATE TABLE IF NOT EXISTS readings (
	at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	wind_speed     DOUBLE PRECISION,
	wind_dir       INTEGER,
	wind_speed_2m  DOUBLE PRECISION,
	wind_dir_2m    INTEGER,
	gust           DOUBLE PRECISION,
	gust_10m       DOUBLE PRECISION,
	humidity       DOUBLE PRECISION,
	temp_f         DOUBLE PRECISION,
	pressure_pa    DOUBLE PRECISION,
	rain_hour      DOUBLE PRECISION,
	rain_day       DOUBLE PRECISION,
	battery        DOUBLE PRECISION,
	light          DOUBLE PRECISION
)`

const insertReading = `
INSERT INTO readings (wind_speed, wind_dir, wind_speed_2m, wind_dir_2m,
	gust, gust_10m, humidity, temp_f, pressure_pa, rain_hour, rain_day,
	battery, light)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

// upstreamReading carries the long-form key names the forwarding target
// expects; compass codes become degrees.
type upstreamReading struct {
	WindSpeedMph    float64 `url:"windspeedmph"`
	WindDir         float64 `url:"winddir"`
	WindSpeedAvg2m  float64 `url:"windspdmph_avg2m"`
	WindDirAvg2m    float64 `url:"winddir_avg2m"`
	WindGustMph     float64 `url:"windgustmph"`
	WindGustDir     float64 `url:"windgustdir"`
	Humidity        float64 `url:"humidity"`
	TempF           float64 `url:"tempf"`
	BaromIn         float64 `url:"baromin"`
	RainIn          float64 `url:"rainin"`
	DailyRainIn     float64 `url:"dailyrainin"`
	SoftwareType    string  `url:"softwaretype"`
	DateUTC         string  `url:"dateutc"`
}

// inches Hg per Pascal, plus the site's elevation correction.
const pascalToInHg = 0.00029530099194
const elevationCorrection = 0.2767

type collector struct {
	db       *sql.DB
	upstream string
	breaker  *gobreaker.CircuitBreaker

	mu      sync.Mutex
	pending string
	last    data.Snapshot
	lastAt  time.Time
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file [%v]", err)
	}
	addr := flag.String("listen", ":8080", "listen address")
	flag.Parse()

	c := &collector{
		upstream: os.Getenv("UPSTREAM_URL"),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "upstream",
			Timeout: 2 * time.Minute,
		}),
	}

	if dsn, ok := os.LookupEnv("COLLECTOR_DSN"); ok {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			logger.Fatalf("Failed to open archive db [%v]", err)
		}
		if _, err := db.Exec(createTable); err != nil {
			logger.Fatalf("Failed to provision archive table [%v]", err)
		}
		c.db = db
		logger.Info("Archiving readings to postgres")
	}

	// The production agent pushes a station reset every midnight; keep the
	// same habit so the daily totals roll over.
	sched := gocron.NewScheduler(time.UTC)
	_, err := sched.Every(1).Day().At("00:00").Do(func() {
		logger.Info("Scheduling midnight station reset")
		c.setPending("!r\n")
	})
	if err != nil {
		logger.Fatalf("Failed to schedule midnight reset [%v]", err)
	}
	sched.StartAsync()

	http.HandleFunc("/weather/submit.php", c.handleSubmit)
	http.HandleFunc("/maintsig", c.handleMaintsig)
	http.HandleFunc("/latest", c.handleLatest)

	logger.Infof("collector-sim listening on [%v]", *addr)
	logger.Fatal(http.ListenAndServe(*addr, nil))
}

func (c *collector) setPending(sig string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = sig
}

// handleSubmit accepts one station reading and answers with any pending
// maintenance directive as the unframed response body.
func (c *collector) handleSubmit(rw http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("stationData")
	snap, err := wire.Decode(raw)
	if err != nil {
		logger.Errorf("Discarding reading [%v]", err)
		http.Error(rw, "bad reading", http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	c.last = snap
	c.lastAt = time.Now().UTC()
	directive := c.pending
	c.pending = ""
	c.mu.Unlock()

	if c.db != nil {
		if _, err := c.db.Exec(insertReading,
			snap.WindSpeed, snap.WindDir, snap.WindSpeed2m, snap.WindDir2m,
			snap.GustSpeed, snap.Gust10m, snap.Humidity, snap.TempF,
			snap.Pressure, snap.RainHour, snap.RainDay, snap.Battery,
			snap.Light); err != nil {
			logger.Errorf("Failed to archive reading [%v]", err)
		}
	}

	if c.upstream != "" {
		go c.forward(snap)
	}

	rw.Header().Set("Content-Type", "text/plain")
	_, _ = rw.Write([]byte(directive))
}

// handleMaintsig queues a directive for the next station exchange, e.g.
// /maintsig?sig=!t=30
func (c *collector) handleMaintsig(rw http.ResponseWriter, r *http.Request) {
	sig := r.URL.Query().Get("sig")
	if sig == "" {
		http.Error(rw, "missing sig", http.StatusBadRequest)
		return
	}
	logger.Infof("Queued maintenance directive [%v]", sig)
	c.setPending(sig + "\n")
	_, _ = rw.Write([]byte("ok\n"))
}

func (c *collector) handleLatest(rw http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	snap, at := c.last, c.lastAt
	c.mu.Unlock()
	if at.IsZero() {
		http.Error(rw, "no reading yet", http.StatusNotFound)
		return
	}
	rw.Header().Set("Content-Type", "text/plain")
	_, _ = rw.Write([]byte(at.Format(time.RFC3339) + " " + wire.Encode(snap) + "\n"))
}

// forward converts a reading to the upstream's key table and sends it,
// behind a breaker so a dead upstream cannot pile up goroutines.
func (c *collector) forward(snap data.Snapshot) {
	ur := upstreamReading{
		WindSpeedMph:   snap.WindSpeed,
		WindDir:        float64(snap.WindDir) * 22.5,
		WindSpeedAvg2m: snap.WindSpeed2m,
		WindDirAvg2m:   float64(snap.WindDir2m) * 22.5,
		WindGustMph:    snap.Gust10m,
		WindGustDir:    float64(snap.Gust10mDir) * 22.5,
		Humidity:       snap.Humidity,
		TempF:          snap.TempF,
		BaromIn:        snap.Pressure*pascalToInHg + elevationCorrection,
		RainIn:         snap.RainHour,
		DailyRainIn:    snap.RainDay,
		SoftwareType:   "wxnode-collector-sim",
		DateUTC:        time.Now().UTC().Format("2006-01-02 15:04:05"),
	}
	vals, err := query.Values(ur)
	if err != nil {
		logger.Errorf("Failed to encode upstream reading [%v]", err)
		return
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		client := http.Client{Timeout: 30 * time.Second}
		resp, err := client.Get(c.upstream + "?" + vals.Encode())
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			logger.Errorf("Upstream rejected reading [%v]", resp.Status)
		}
		return nil, nil
	})
	if err != nil {
		logger.Errorf("Upstream forward failed [%v]", err)
	}
}
