package dutyradio

import "time"

// Callbacks carries the hardware event hooks the radio invokes from
// interrupt context. Handlers must not block and must not issue radio
// commands; they only record the event for the main loop.
type Callbacks struct {
	// TimerOverflow fires when the radio's internal timer wraps.
	TimerOverflow func()
	// TimerCompare fires on a radio timer compare match.
	TimerCompare func()
	// FrameStart fires when a start-of-frame delimiter is detected,
	// both when receiving and when a requested transmission begins.
	// The timestamp is a capture of the radio timer.
	FrameStart func(timestamp uint32)
	// FrameEnd fires when the frame completes, again for both directions.
	FrameEnd func(timestamp uint32)
}

// RxInfo describes the frame most recently received by the radio.
type RxInfo struct {
	// Length is the frame length in bytes, CRC included.
	Length int
	// RSSI is the received signal strength sample in dBm.
	RSSI int8
	// LQI is the link quality indicator sample.
	LQI uint8
	// CRCOK reports whether the hardware CRC check passed.
	CRCOK bool
}

// Radio is the capability surface of a half-duplex transceiver. How the
// chip is programmed (registers, SPI framing, synthesizer setup) is the
// implementation's business; the duty-cycle loop only issues these commands.
type Radio interface {
	// SetCallbacks registers the interrupt-context event hooks. Must be
	// called before the radio is powered on.
	SetCallbacks(Callbacks)
	// PowerOn enables the RF front end.
	PowerOn() error
	// PowerOff disables the RF front end, dropping out of receive.
	PowerOff() error
	// SetChannel tunes the radio. spacingKHz is the channel spacing in kHz,
	// frequency0 is the base frequency in units of 100 Hz, channel selects
	// the channel index within the band.
	SetChannel(spacingKHz uint32, frequency0 uint32, channel uint16) error
	// RxEnable powers the receive path and starts listening.
	RxEnable() error
	// LoadPacket stages a frame in the transmit buffer.
	LoadPacket(payload []byte) error
	// TxEnable powers the transmit path.
	TxEnable() error
	// TxNow begins transmitting the staged frame immediately.
	TxNow() error
	// ReceivedFrame copies the last received frame into buf and returns
	// its length and quality metadata.
	ReceivedFrame(buf []byte) (RxInfo, error)
}

// Leds drives the two status indicators. At most one of the two should
// ever be lit: activity marks an in-flight receive, busy an in-flight
// transmit, and the radio is half-duplex.
type Leds interface {
	ActivityOn()
	ActivityOff()
	BusyOn()
	BusyOff()
}

// Timer is a one-shot hardware countdown. The registered callback runs in
// interrupt context on expiry; a periodic tick is built by re-arming from
// inside the callback.
type Timer interface {
	// SetCallback registers the expiry hook. Must be called before the
	// first ScheduleIn.
	SetCallback(fn func())
	// ScheduleIn arms the countdown for d from now, replacing any pending
	// expiry.
	ScheduleIn(d time.Duration) error
}

// Board covers platform bring-up.
type Board interface {
	Init() error
}
