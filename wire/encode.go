// Package wire implements the exchange grammar between the station and the
// collector: the comma-separated key=value snapshot encoding and a
// byte-at-a-time scanner for the minimal request/response shape used here.
// This is deliberately not a general HTTP implementation.
package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gr-butler/wxnode/data"
)

// Field order on the wire is fixed; the collector checks for exactly these
// keys before accepting a reading.
//
//	ws   instantaneous wind speed (mph)
//	wd   instantaneous wind direction (compass code)
//	ws2  2 minute average speed
//	wd2  2 minute average direction
//	gs   current gust speed
//	gd   current gust direction
//	gs10 10 minute max gust speed
//	gd10 10 minute max gust direction
//	h    humidity %RH
//	t    temperature F
//	p    pressure Pa
//	r    hourly rain (in)
//	dr   daily rain (in)
//	b    battery (V)
//	l    light level (V)
const FieldCount = 15

// Encode renders a snapshot in the fixed wire order.
func Encode(s data.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ws=%.1f,wd=%d,ws2=%.1f,wd2=%d,", s.WindSpeed, s.WindDir, s.WindSpeed2m, s.WindDir2m)
	fmt.Fprintf(&b, "gs=%.1f,gd=%d,gs10=%.1f,gd10=%d,", s.GustSpeed, s.GustDir, s.Gust10m, s.Gust10mDir)
	fmt.Fprintf(&b, "h=%.1f,t=%.1f,p=%.2f,r=%.2f,dr=%.2f,b=%.2f,l=%.2f",
		s.Humidity, s.TempF, s.Pressure, s.RainHour, s.RainDay, s.Battery, s.Light)
	return b.String()
}

// Decode parses an encoded snapshot back into its fields. Every key must be
// present; extra or missing tokens mean a corrupted reading.
func Decode(enc string) (data.Snapshot, error) {
	vals := map[string]string{}
	for _, tok := range strings.Split(enc, ",") {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			return data.Snapshot{}, fmt.Errorf("malformed token [%v]", tok)
		}
		vals[k] = v
	}
	if len(vals) != FieldCount {
		return data.Snapshot{}, fmt.Errorf("corrupted reading: %d of %d fields", len(vals), FieldCount)
	}

	var s data.Snapshot
	var err error
	f := func(key string) float64 {
		if err != nil {
			return 0
		}
		var v float64
		v, err = strconv.ParseFloat(vals[key], 64)
		return v
	}
	i := func(key string) int {
		if err != nil {
			return 0
		}
		var v int
		v, err = strconv.Atoi(vals[key])
		return v
	}

	s.WindSpeed = f("ws")
	s.WindDir = i("wd")
	s.WindSpeed2m = f("ws2")
	s.WindDir2m = i("wd2")
	s.GustSpeed = f("gs")
	s.GustDir = i("gd")
	s.Gust10m = f("gs10")
	s.Gust10mDir = i("gd10")
	s.Humidity = f("h")
	s.TempF = f("t")
	s.Pressure = f("p")
	s.RainHour = f("r")
	s.RainDay = f("dr")
	s.Battery = f("b")
	s.Light = f("l")
	if err != nil {
		return data.Snapshot{}, err
	}
	return s, nil
}
