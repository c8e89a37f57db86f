// Package sensors owns every piece of hardware the station touches: the two
// pulse inputs, the vane and rail channels on the ADS1115, and the
// atmosphere chips. Everything above this package works on interfaces and
// drained counters, never on pins.
package sensors

import (
	"time"

	"github.com/gr-butler/wxnode/env"
	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/devices/v3/mcp9808"
	"periph.io/x/host/v3"
)

type Sensors struct {
	Wind *PulseCounter
	Rain *PulseCounter
	Vane *Vane
	Rail *Rails
	Atm  Atmosphere

	bus i2c.BusCloser
}

// adcPin adapts an ads1x15 channel pin to the AnalogReader interface.
type adcPin struct {
	pin ads1x15.PinADC
}

func (a adcPin) ReadVolts() (float64, error) {
	sample, err := a.pin.Read()
	if err != nil {
		return 0, err
	}
	return float64(sample.V) / float64(physic.Volt), nil
}

// InitSensors brings up the I2C devices and GPIO edge monitors. The edge
// monitor goroutines stand in for interrupt handlers: they touch only their
// pulse counter.
func (s *Sensors) InitSensors(clock clockwork.Clock) error {
	s.Wind = NewPulseCounter(clock, env.WindDebounce)
	s.Rain = NewPulseCounter(clock, env.RainDebounce)

	if _, err := host.Init(); err != nil {
		logger.Errorf("Failed to init periph host [%v]", err)
		return err
	}

	bus, err := i2creg.Open("")
	if err != nil {
		logger.Errorf("Failed to open I2C [%v]", err)
		return err
	}
	s.bus = bus

	logger.Info("Starting BME280 reader...")
	baro, err := bmxx80.NewI2C(bus, 0x76, &bmxx80.DefaultOpts)
	if err != nil {
		logger.Errorf("Failed to initialize bme280 [%v]", err)
		_ = bus.Close()
		return err
	}

	logger.Info("Starting MCP9808 temperature sensor")
	temp, err := mcp9808.New(bus, &mcp9808.Opts{Addr: 0x18, Res: mcp9808.High})
	if err != nil {
		logger.Errorf("Failed to open MCP9808 sensor [%v]", err)
		_ = bus.Close()
		return err
	}
	s.Atm = NewI2CAtmosphere(baro, temp)

	logger.Info("Starting ADS1115 ADC")
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		logger.Errorf("Failed to open ADS1115 [%v]", err)
		_ = bus.Close()
		return err
	}
	pins := make([]ads1x15.PinADC, 4)
	for i, ch := range []ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3} {
		pin, err := adc.PinForChannel(ch, 5*physic.Volt, 1*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			logger.Errorf("Failed to obtain ADC channel %d [%v]", i, err)
			_ = bus.Close()
			return err
		}
		pins[i] = pin
	}
	s.Vane = NewVane(adcPin{pins[0]})
	s.Rail = NewRails(adcPin{pins[3]}, adcPin{pins[2]}, adcPin{pins[1]})

	windPin, err := edgePin(env.WindSensorIn)
	if err != nil {
		_ = bus.Close()
		return err
	}
	rainPin, err := edgePin(env.RainSensorIn)
	if err != nil {
		_ = bus.Close()
		return err
	}

	go monitorEdges("wind", windPin, s.Wind)
	go monitorEdges("rain", rainPin, s.Rain)

	logger.Info("Sensors initialized.")
	return nil
}

func (s *Sensors) Close() {
	if s.bus != nil {
		_ = s.bus.Close()
	}
}

func edgePin(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		logger.Errorf("Failed to find pin %v", name)
		return nil, &pinError{name}
	}
	logger.Infof("%s: %s", pin, pin.Function())
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		logger.Errorf("Failed to configure %v [%v]", name, err)
		return nil, err
	}
	return pin, nil
}

type pinError struct{ name string }

func (e *pinError) Error() string { return "no such pin " + e.name }

// monitorEdges registers switch closures with the counter. The counter
// discards bounces; the only other filtering here is the level check after
// the edge fires.
func monitorEdges(name string, pin gpio.PinIO, counter *PulseCounter) {
	logger.Infof("Starting %v edge monitor", name)
	for {
		if !pin.WaitForEdge(time.Second) {
			continue
		}
		if pin.Read() == gpio.Low {
			counter.Pulse()
		}
	}
}
