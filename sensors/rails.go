package sensors

import (
	"github.com/gr-butler/wxnode/env"
	logger "github.com/sirupsen/logrus"
)

// Rails reads the light sensor and the battery divider, both referenced
// against the 3.3V rail so supply sag cancels out of the ratio.
type Rails struct {
	reference AnalogReader
	battery   AnalogReader
	light     AnalogReader
}

func NewRails(reference, battery, light AnalogReader) *Rails {
	return &Rails{reference: reference, battery: battery, light: light}
}

// average8 takes eight samples and averages them; single ADC reads on these
// rails are noisy when the radio transmits.
func average8(r AnalogReader) (float64, error) {
	sum := 0.0
	for i := 0; i < env.RailSamples; i++ {
		v, err := r.ReadVolts()
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(env.RailSamples), nil
}

// Battery returns the pack voltage: averaged divider reading normalized by
// the reference rail, then scaled back up by the divider factor.
func (r *Rails) Battery() float64 {
	ref, err := average8(r.reference)
	if err != nil || ref == 0 {
		logger.Warnf("Reference rail read failed [%v]", err)
		return 0
	}
	raw, err := average8(r.battery)
	if err != nil {
		logger.Warnf("Battery rail read failed [%v]", err)
		return 0
	}
	return raw * (env.ReferenceRailVolt / ref) * env.BatteryDivider
}

// Light returns the sensor output normalized to the reference rail, a
// 0 - 3.3 volt figure the collector converts to a percentage.
func (r *Rails) Light() float64 {
	ref, err := average8(r.reference)
	if err != nil || ref == 0 {
		logger.Warnf("Reference rail read failed [%v]", err)
		return 0
	}
	raw, err := average8(r.light)
	if err != nil {
		logger.Warnf("Light sensor read failed [%v]", err)
		return 0
	}
	return raw * (env.ReferenceRailVolt / ref)
}
