package sensors

import (
	"github.com/gr-butler/wxnode/env"
	"github.com/jonboulle/clockwork"
)

// Fakes for test mode and unit tests: no bus, no pins, fixed readings.

type FixedAnalog struct {
	Volts float64
	Err   error
}

func (f FixedAnalog) ReadVolts() (float64, error) { return f.Volts, f.Err }

type FixedAtmosphere struct {
	TempF    float64
	Humidity float64
	Pressure float64
	Err      error
}

func (f FixedAtmosphere) Sense() (float64, float64, float64, error) {
	return f.TempF, f.Humidity, f.Pressure, f.Err
}

// NewFakeSensors wires a sensor suite with plausible bench values and no
// hardware behind it.
func NewFakeSensors(clock clockwork.Clock) *Sensors {
	return &Sensors{
		Wind: NewPulseCounter(clock, env.WindDebounce),
		Rain: NewPulseCounter(clock, env.RainDebounce),
		Vane: NewVane(FixedAnalog{Volts: 3.8}), // N
		Rail: NewRails(
			FixedAnalog{Volts: 3.3},
			FixedAnalog{Volts: 0.88},
			FixedAnalog{Volts: 2.9},
		),
		Atm: FixedAtmosphere{TempF: 68.5, Humidity: 48.0, Pressure: 101200},
	}
}
