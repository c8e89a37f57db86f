package sensors

import (
	"github.com/gr-butler/wxnode/env"
	logger "github.com/sirupsen/logrus"
)

// AnalogReader is one ADC channel returning volts. The hardware
// implementation sits on the ADS1115; tests substitute fixed values.
type AnalogReader interface {
	ReadVolts() (float64, error)
}

// Vane classifies one analog read into a compass code.
type Vane struct {
	adc AnalogReader
}

func NewVane(adc AnalogReader) *Vane {
	return &Vane{adc: adc}
}

// vaneSteps maps the vane's resistor ladder to compass codes. The divider
// produces a distinct voltage per 22.5 degree sector; thresholds sit midway
// between adjacent measured outputs, in ascending voltage order.
var vaneSteps = []struct {
	maxVolt float64
	code    int
}{
	{0.365, 5},  // ESE
	{0.430, 3},  // ENE
	{0.535, 4},  // E
	{0.760, 7},  // SSE
	{1.045, 6},  // SE
	{1.295, 9},  // SSW
	{1.690, 8},  // S
	{2.115, 1},  // NNE
	{2.590, 2},  // NE
	{3.005, 11}, // WSW
	{3.255, 10}, // SW
	{3.635, 15}, // NNW
	{3.940, 0},  // N
	{4.185, 13}, // WNW
	{4.475, 14}, // NW
	{4.755, 12}, // W
}

// ReadCode reads the vane and returns a compass code 0-15, or the
// disconnected sentinel for an out-of-range reading.
func (v *Vane) ReadCode() int {
	volts, err := v.adc.ReadVolts()
	if err != nil {
		logger.Debugf("Error reading wind vane [%v]", err)
		return env.DirDisconnected
	}
	return classifyVane(volts)
}

func classifyVane(volts float64) int {
	if volts < 0.25 {
		// open circuit reads near ground
		return env.DirDisconnected
	}
	for _, s := range vaneSteps {
		if volts < s.maxVolt {
			return s.code
		}
	}
	return env.DirDisconnected
}
