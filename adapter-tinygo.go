//go:build tinygo

package dutyradio

import (
	"machine"
)

// tinygoLeds implements Leds on two machine pins.
type tinygoLeds struct {
	activity machine.Pin
	busy     machine.Pin
}

func (l *tinygoLeds) ActivityOn()  { l.activity.High() }
func (l *tinygoLeds) ActivityOff() { l.activity.Low() }
func (l *tinygoLeds) BusyOn()      { l.busy.High() }
func (l *tinygoLeds) BusyOff()     { l.busy.Low() }

// tinygoBoard has nothing to bring up; the TinyGo runtime already did.
type tinygoBoard struct{}

func (tinygoBoard) Init() error { return nil }

// NewTinyGo builds a Mote for TinyGo targets. The LEDs are driven directly
// through machine pins; the radio stays injected.
func NewTinyGo(c Config, radio Radio, activityPin, busyPin machine.Pin) (*Mote, error) {
	activityPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	busyPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	activityPin.Low()
	busyPin.Low()

	leds := &tinygoLeds{activity: activityPin, busy: busyPin}

	return New(c, Hardware{
		Radio: radio,
		Leds:  leds,
		Timer: &HostTimer{},
		Board: tinygoBoard{},
	})
}
