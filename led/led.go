package led

import (
	"sync"
	"time"

	"github.com/gr-butler/wxnode/env"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// LED drives one status LED. A missing pin is tolerated: the station runs
// headless on the bench.
type LED struct {
	Name    string
	lock    sync.Mutex
	on      bool
	gpioPin gpio.PinIO
}

func New(name string, pinName string) *LED {
	logger.Infof("Creating LED [%v] on pin [%v]", name, pinName)
	l := &LED{Name: name}
	l.gpioPin = gpioreg.ByName(pinName)
	if l.gpioPin == nil {
		logger.Errorf("Failed to find %v pin for LED [%v]", pinName, name)
		return l
	}
	_ = l.gpioPin.Out(gpio.Low)
	return l
}

func (l *LED) On() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = true
	if l.gpioPin != nil {
		_ = l.gpioPin.Out(gpio.High)
	}
}

func (l *LED) Off() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = false
	if l.gpioPin != nil {
		_ = l.gpioPin.Out(gpio.Low)
	}
}

// Flash blips the LED once. If a flash is already in progress the request
// is discarded rather than queued behind the mutex.
func (l *LED) Flash() {
	if l.gpioPin == nil {
		return
	}
	if !l.lock.TryLock() {
		return
	}
	defer l.lock.Unlock()
	if !l.on {
		_ = l.gpioPin.Out(gpio.High)
		time.Sleep(env.LEDFlashDuration)
		_ = l.gpioPin.Out(gpio.Low)
	} else {
		_ = l.gpioPin.Out(gpio.Low)
		time.Sleep(env.LEDFlashDuration)
		_ = l.gpioPin.Out(gpio.High)
	}
}

func (l *LED) IsOn() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.on
}
