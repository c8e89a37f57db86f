package sensors

import (
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/devices/v3/mcp9808"
)

// Atmosphere supplies the environmental fields of a snapshot. The station
// treats the chips as black-box collaborators.
type Atmosphere interface {
	// Sense returns temperature (F), relative humidity (%) and pressure (Pa).
	Sense() (tempF, humidity, pressurePa float64, err error)
}

// i2cAtmosphere reads pressure and humidity from the BME280 and temperature
// from the higher resolution MCP9808 next to it.
type i2cAtmosphere struct {
	baro *bmxx80.Dev
	temp *mcp9808.Dev
}

func NewI2CAtmosphere(baro *bmxx80.Dev, temp *mcp9808.Dev) Atmosphere {
	return &i2cAtmosphere{baro: baro, temp: temp}
}

func (a *i2cAtmosphere) Sense() (float64, float64, float64, error) {
	var be physic.Env
	if err := a.baro.Sense(&be); err != nil {
		return 0, 0, 0, err
	}
	var te physic.Env
	if err := a.temp.Sense(&te); err != nil {
		return 0, 0, 0, err
	}
	tempF := te.Temperature.Celsius()*9/5 + 32
	humidity := float64(be.Humidity) / float64(physic.PercentRH)
	pressurePa := float64(be.Pressure) / float64(physic.Pascal)
	return tempF, humidity, pressurePa, nil
}
