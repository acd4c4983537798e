//go:build !tinygo

package dutyradio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ledPin drives one indicator through a periph.io GPIO pin. Indicator
// writes have no error path in the duty-cycle design, so failures are
// logged and dropped.
type ledPin struct {
	gpio.PinIO
}

func (p ledPin) set(l gpio.Level) {
	if err := p.Out(l); err != nil {
		globalLogger.Warn("led write failed: " + err.Error())
	}
}

// periphLeds implements Leds on two GPIO pins.
type periphLeds struct {
	activity ledPin
	busy     ledPin
}

func (l *periphLeds) ActivityOn()  { l.activity.set(gpio.High) }
func (l *periphLeds) ActivityOff() { l.activity.set(gpio.Low) }
func (l *periphLeds) BusyOn()      { l.busy.set(gpio.High) }
func (l *periphLeds) BusyOff()     { l.busy.set(gpio.Low) }

// periphBoard runs periph.io host bring-up. host.Init is idempotent, so
// calling it again from Mote.Start is harmless.
type periphBoard struct{}

func (periphBoard) Init() error {
	_, err := host.Init()
	return err
}

// PeriphConfig holds the configuration for Linux boards driven through
// periph.io.
type PeriphConfig struct {
	Config
	// ActivityPin is the GPIO number (BCM numbering) of the receive
	// activity LED. Defaults to 17 if not provided.
	ActivityPin int
	// BusyPin is the GPIO number (BCM numbering) of the transmit busy LED.
	// Defaults to 27 if not provided.
	BusyPin int
}

// NewPeriph builds a Mote for Linux systems: periph.io GPIO LEDs, the
// runtime timer, and the provided radio. The radio stays injected because
// this package does not program any particular transceiver chip.
func NewPeriph(c PeriphConfig, radio Radio) (*Mote, error) {
	// gpioreg is only populated after host init.
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io host: %w", err)
	}

	if c.ActivityPin == 0 {
		c.ActivityPin = 17
	}
	if c.BusyPin == 0 {
		c.BusyPin = 27
	}

	activity := gpioreg.ByName(fmt.Sprintf("GPIO%d", c.ActivityPin))
	if activity == nil {
		return nil, fmt.Errorf("failed to open activity pin GPIO%d", c.ActivityPin)
	}
	busy := gpioreg.ByName(fmt.Sprintf("GPIO%d", c.BusyPin))
	if busy == nil {
		return nil, fmt.Errorf("failed to open busy pin GPIO%d", c.BusyPin)
	}

	leds := &periphLeds{
		activity: ledPin{activity},
		busy:     ledPin{busy},
	}
	leds.ActivityOff()
	leds.BusyOff()

	return New(c.Config, Hardware{
		Radio: radio,
		Leds:  leds,
		Timer: &HostTimer{},
		Board: periphBoard{},
	})
}
