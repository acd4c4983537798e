package dutyradio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrPkg     = errors.New("dutyradio")
	ErrNoRadio = errors.New("radio not configured")
	ErrNoLeds  = errors.New("indicator LEDs not configured")
	ErrNoTimer = errors.New("periodic timer not configured")
)

// Mode is the duty-cycle state. The mote is always in exactly one mode.
type Mode uint8

const (
	// Receiving means the radio is listening. Initial mode.
	Receiving Mode = iota
	// Transmitting means a frame transmission has been requested or is in
	// the air.
	Transmitting
)

func (m Mode) String() string {
	switch m {
	case Receiving:
		return "receiving"
	case Transmitting:
		return "transmitting"
	default:
		return "unknown"
	}
}

type Config struct {
	// Channel is the channel index within the band.
	// Defaults to 0 (902.8 MHz with the default band plan).
	Channel uint16
	// ChannelSpacing is the channel spacing in kHz.
	// Defaults to 800 if not provided.
	ChannelSpacing uint32
	// Frequency0 is the base frequency in units of 100 Hz.
	// Defaults to 9028000 (902.8 MHz) if not provided.
	Frequency0 uint32
	// TimerPeriod is the interval between transmit bursts.
	// Defaults to 2 seconds if not provided.
	TimerPeriod time.Duration
	// FillByte is the identifier byte every transmitted payload is filled
	// with. Defaults to 0x99 if not provided.
	FillByte byte
}

// Hardware bundles the collaborators the mote drives.
type Hardware struct {
	Radio Radio
	Leds  Leds
	Timer Timer
	// Board is optional; when set, Start runs its bring-up first.
	Board Board
}

// Mote alternates a half-duplex radio between continuous listening and a
// periodic transmit burst. Hardware interrupts never touch the radio
// directly: the callbacks raise event flags, and Run drains them and drives
// every transition from a single goroutine.
type Mote struct {
	cfg    Config
	radio  Radio
	leds   Leds
	timer  Timer
	board  Board
	flags  *EventFlags
	stats  Stats
	mode   Mode
	packet Packet
}

// New validates the configuration, applies defaults, and registers the
// interrupt callbacks on the radio and timer.
func New(c Config, hw Hardware) (*Mote, error) {
	if hw.Radio == nil {
		return nil, fmt.Errorf("%w: %w", ErrPkg, ErrNoRadio)
	}
	if hw.Leds == nil {
		return nil, fmt.Errorf("%w: %w", ErrPkg, ErrNoLeds)
	}
	if hw.Timer == nil {
		return nil, fmt.Errorf("%w: %w", ErrPkg, ErrNoTimer)
	}
	if c.ChannelSpacing == 0 {
		c.ChannelSpacing = 800
	}
	if c.Frequency0 == 0 {
		c.Frequency0 = 9028000
	}
	if c.TimerPeriod == 0 {
		c.TimerPeriod = 2 * time.Second
	}
	if c.FillByte == 0 {
		c.FillByte = 0x99
	}

	m := &Mote{
		cfg:   c,
		radio: hw.Radio,
		leds:  hw.Leds,
		timer: hw.Timer,
		board: hw.Board,
		flags: NewEventFlags(),
		mode:  Receiving,
	}

	m.radio.SetCallbacks(Callbacks{
		TimerOverflow: m.onTimerOverflow,
		TimerCompare:  m.onTimerCompare,
		FrameStart:    m.onFrameStart,
		FrameEnd:      m.onFrameEnd,
	})
	m.timer.SetCallback(m.onTimer)

	return m, nil
}

func (m *Mote) String() string {
	return fmt.Sprintf("Mote(Channel=%d, Spacing=%dkHz, Frequency0=%d, Period=%s, Fill=0x%02X)",
		m.cfg.Channel,
		m.cfg.ChannelSpacing,
		m.cfg.Frequency0,
		m.cfg.TimerPeriod,
		m.cfg.FillByte,
	)
}

// Mode returns the current duty-cycle mode.
func (m *Mote) Mode() Mode { return m.mode }

// Frame returns the mote's single frame buffer. The buffer is owned by the
// dispatch loop; read it only while the loop is not running.
func (m *Mote) Frame() *Packet { return &m.packet }

// Stats returns a snapshot of the debug counters.
func (m *Mote) Stats() StatsSnapshot { return m.stats.Snapshot() }

// Start brings up the board, powers and tunes the radio, puts it in
// receive, and arms the periodic timer. The first transmit is seeded
// immediately rather than waiting out a full period.
func (m *Mote) Start() error {
	if m.board != nil {
		if err := m.board.Init(); err != nil {
			return fmt.Errorf("board init: %w", err)
		}
	}

	if err := m.timer.ScheduleIn(m.cfg.TimerPeriod); err != nil {
		return fmt.Errorf("arming periodic timer: %w", err)
	}

	if err := m.radio.PowerOn(); err != nil {
		return fmt.Errorf("radio power on: %w", err)
	}
	if err := m.radio.SetChannel(m.cfg.ChannelSpacing, m.cfg.Frequency0, m.cfg.Channel); err != nil {
		return fmt.Errorf("tuning channel %d: %w", m.cfg.Channel, err)
	}
	if err := m.radio.RxEnable(); err != nil {
		return fmt.Errorf("enabling receive: %w", err)
	}
	m.mode = Receiving

	globalLogger.Info("mote started: " + m.String())

	// Kick off the first transmit.
	m.flags.Raise(EventTimerTick)
	return nil
}

// Run is the main dispatch loop: sleep until at least one event is pending,
// drain the set, handle every tag in fixed order, repeat. It only returns
// when ctx is cancelled; on bare hardware pass context.Background() and it
// runs forever.
func (m *Mote) Run(ctx context.Context) error {
	for {
		if err := m.flags.Wait(ctx); err != nil {
			return err
		}
		m.dispatch(m.flags.Drain())
	}
}

// dispatchOrder fixes the handling order within one drain: frame boundaries
// are resolved before a new transmit can be started.
var dispatchOrder = [...]Event{EventFrameStart, EventFrameEnd, EventTimerTick}

// transitions enumerates every (Mode, Event) pair, including the one
// defined no-op: a timer tick during an in-flight transmit is absorbed so
// the mote never queues a second transmission.
var transitions = map[Mode]map[Event]func(*Mote){
	Receiving: {
		EventFrameStart: (*Mote).rxFrameStarted,
		EventFrameEnd:   (*Mote).rxFrameEnded,
		EventTimerTick:  (*Mote).startTransmit,
	},
	Transmitting: {
		EventFrameStart: (*Mote).txFrameStarted,
		EventFrameEnd:   (*Mote).txFrameEnded,
		EventTimerTick:  (*Mote).absorbTimerTick,
	},
}

func (m *Mote) dispatch(pending Event) {
	for _, tag := range dispatchOrder {
		if !pending.Has(tag) {
			continue
		}
		transitions[m.mode][tag](m)
	}
}

// rxFrameStarted: an incoming frame is on the air.
func (m *Mote) rxFrameStarted() {
	m.leds.ActivityOn()
}

// txFrameStarted: the requested frame has begun transmitting.
func (m *Mote) txFrameStarted() {
	m.leds.BusyOn()
}

// rxFrameEnded: a complete frame was received; fetch it and keep listening.
func (m *Mote) rxFrameEnded() {
	if err := m.packet.CaptureFrom(m.radio); err != nil {
		globalLogger.Error("fetching received frame: " + err.Error())
	}
	m.leds.ActivityOff()
}

// txFrameEnded: the burst is done; fall back to listening.
func (m *Mote) txFrameEnded() {
	if err := m.radio.RxEnable(); err != nil {
		globalLogger.Error("re-enabling receive: " + err.Error())
	}
	m.mode = Receiving
	m.leds.BusyOff()
}

// startTransmit: stop listening, refill the packet, and fire it off.
func (m *Mote) startTransmit() {
	if err := m.radio.PowerOff(); err != nil {
		globalLogger.Error("stopping receive: " + err.Error())
	}

	m.packet.FillTransmit(m.cfg.FillByte)

	if err := m.radio.LoadPacket(m.packet.Bytes()); err != nil {
		globalLogger.Error("loading transmit frame: " + err.Error())
	}
	if err := m.radio.TxEnable(); err != nil {
		globalLogger.Error("enabling transmit: " + err.Error())
	}
	if err := m.radio.TxNow(); err != nil {
		globalLogger.Error("starting transmit: " + err.Error())
	}

	m.mode = Transmitting
}

// absorbTimerTick: a tick landed while a transmit is already in flight.
// One transmit per trigger; the extra trigger is dropped.
func (m *Mote) absorbTimerTick() {}

// --- interrupt-context callbacks ---
//
// These run in whatever context the hardware adapter invokes them from.
// They only raise flags and bump counters.

func (m *Mote) onTimerOverflow() {
	m.stats.TimerOverflow.Add(1)
}

func (m *Mote) onTimerCompare() {
	m.stats.TimerCompare.Add(1)
}

func (m *Mote) onFrameStart(_ uint32) {
	m.flags.Raise(EventFrameStart)
	m.stats.FrameStart.Add(1)
}

func (m *Mote) onFrameEnd(_ uint32) {
	m.flags.Raise(EventFrameEnd)
	m.stats.FrameEnd.Add(1)
}

func (m *Mote) onTimer() {
	m.flags.Raise(EventTimerTick)
	m.stats.TimerFired.Add(1)

	// Re-arm from inside the callback: each period is measured from the
	// previous expiry, so the instantaneous period stays exact even if the
	// absolute phase drifts.
	if err := m.timer.ScheduleIn(m.cfg.TimerPeriod); err != nil {
		globalLogger.Error("re-arming periodic timer: " + err.Error())
	}
}
