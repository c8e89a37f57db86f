package env

import "time"

const (
	GPIO12 = "GPIO12" // rain pin
	GPIO19 = "GPIO19" // rain tip LED
	GPIO20 = "GPIO20" // heartbeat LED
	GPIO27 = "GPIO27" // wind pin

	RainSensorIn = GPIO12
	WindSensorIn = GPIO27

	HeartbeatLed = GPIO20
	RainTipLed   = GPIO19

	// https://www.sparkfun.com/datasheets/Sensors/Weather/Weather%20Sensor%20Assembly..pdf
	// One switch closure per second equates to 1.492 MPH of wind.
	MphPerTick = 1.492
	// One bucket tip equates to 0.011 inches of rain.
	InchPerTip = 0.011

	// Debounce windows for the reed-switch inputs. The anemometer spins
	// fast so the window must stay short; the tip bucket is mechanical
	// and bounces for far longer.
	WindDebounce = 10 * time.Millisecond
	RainDebounce = 50 * time.Millisecond

	// Window depths: 2 minutes of 1Hz wind samples, 10 one-minute gust
	// buckets, 60 one-minute rain buckets.
	WindWindowDepth = 120
	GustWindowDepth = 10
	RainWindowDepth = 60

	// Compass sectors are 22.5 degrees; code 16 means the vane is
	// disconnected or reading out of range.
	CompassSectors  = 16
	DirDisconnected = 16

	ReferenceRailVolt = 3.3
	// The battery rail sits behind a voltage divider.
	BatteryDivider = 4.90
	// ADC samples averaged per light/battery reading.
	RailSamples = 8

	// Reporting cadence, bounded; the live value is kept in the store.
	DefaultReportSeconds = 10
	MinReportSeconds     = 1
	MaxReportSeconds     = 999

	// Consecutive push failures tolerated before we give up and restart.
	MaxReportFailures = 3

	// Pull variant: restart if nothing connects for this long.
	IdleTimeout = 5 * time.Minute

	// Network exchange limits.
	ExchangeBufferSize = 512
	ExchangeTimeout    = 15 * time.Second

	LEDFlashDuration = time.Millisecond * 50
)
