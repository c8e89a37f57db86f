package main

import (
	"github.com/gr-butler/wxnode/data"
	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"
)

var Prom_windspeed = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windspeed",
		Help: "Instantaneous wind speed mph",
	},
)

var Prom_windspeedAvg = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windspeed_avg_2m",
		Help: "2 minute average wind speed mph",
	},
)

var Prom_windgust = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windgust",
		Help: "Current minute gust mph",
	},
)

var Prom_windgust10m = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windgust_10m",
		Help: "10 minute max gust mph",
	},
)

var Prom_windDirection = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "winddirection",
		Help: "Wind direction compass code (16 = disconnected)",
	},
)

var Prom_humidity = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "relative_humidity",
		Help: "Relative Humidity",
	},
)

var Prom_temperature = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "temperature",
		Help: "Temperature F",
	},
)

var Prom_atmPressure = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "atmospheric_pressure",
		Help: "Atmospheric pressure Pa",
	},
)

var Prom_rainHour = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "rain_hour",
		Help: "Rainfall over the last 60 minutes, inches",
	},
)

var Prom_rainDay = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "rain_day",
		Help: "Rainfall since restart, inches",
	},
)

var Prom_battery = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "battery_volts",
		Help: "Battery voltage",
	},
)

var Prom_light = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "light_volts",
		Help: "Light sensor output volts",
	},
)

func init() {
	logger.Info("Initialize prometheus...")
	prometheus.MustRegister(
		Prom_windspeed,
		Prom_windspeedAvg,
		Prom_windgust,
		Prom_windgust10m,
		Prom_windDirection,
		Prom_humidity,
		Prom_temperature,
		Prom_atmPressure,
		Prom_rainHour,
		Prom_rainDay,
		Prom_battery,
		Prom_light)
}

func publishMetrics(s data.Snapshot) {
	Prom_windspeed.Set(s.WindSpeed)
	Prom_windspeedAvg.Set(s.WindSpeed2m)
	Prom_windgust.Set(s.GustSpeed)
	Prom_windgust10m.Set(s.Gust10m)
	Prom_windDirection.Set(float64(s.WindDir))
	Prom_humidity.Set(s.Humidity)
	Prom_temperature.Set(s.TempF)
	Prom_atmPressure.Set(s.Pressure)
	Prom_rainHour.Set(s.RainHour)
	Prom_rainDay.Set(s.RainDay)
	Prom_battery.Set(s.Battery)
	Prom_light.Set(s.Light)
}
