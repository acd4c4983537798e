package dutyradio

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockRadio struct {
	log       *[]string
	cbs       Callbacks
	loaded    []byte
	rxPayload []byte
	rxInfo    RxInfo
	rxErr     error
}

func (r *mockRadio) record(op string) {
	if r.log != nil {
		*r.log = append(*r.log, op)
	}
}

func (r *mockRadio) SetCallbacks(cbs Callbacks) { r.cbs = cbs }

func (r *mockRadio) PowerOn() error {
	r.record("powerOn")
	return nil
}

func (r *mockRadio) PowerOff() error {
	r.record("powerOff")
	return nil
}

func (r *mockRadio) SetChannel(spacingKHz uint32, frequency0 uint32, channel uint16) error {
	r.record("setChannel")
	return nil
}

func (r *mockRadio) RxEnable() error {
	r.record("rxEnable")
	return nil
}

func (r *mockRadio) LoadPacket(payload []byte) error {
	r.record("loadPacket")
	r.loaded = append([]byte(nil), payload...)
	return nil
}

func (r *mockRadio) TxEnable() error {
	r.record("txEnable")
	return nil
}

func (r *mockRadio) TxNow() error {
	r.record("txNow")
	return nil
}

func (r *mockRadio) ReceivedFrame(buf []byte) (RxInfo, error) {
	r.record("receivedFrame")
	if r.rxErr != nil {
		return RxInfo{}, r.rxErr
	}
	copy(buf, r.rxPayload)
	return r.rxInfo, nil
}

type mockLeds struct {
	log      *[]string
	activity bool
	busy     bool
	overlap  bool
}

func (l *mockLeds) record(op string) {
	if l.log != nil {
		*l.log = append(*l.log, op)
	}
	if l.activity && l.busy {
		l.overlap = true
	}
}

func (l *mockLeds) ActivityOn()  { l.activity = true; l.record("activityOn") }
func (l *mockLeds) ActivityOff() { l.activity = false; l.record("activityOff") }
func (l *mockLeds) BusyOn()      { l.busy = true; l.record("busyOn") }
func (l *mockLeds) BusyOff()     { l.busy = false; l.record("busyOff") }

type mockTimer struct {
	fn        func()
	scheduled []time.Duration
}

func (t *mockTimer) SetCallback(fn func()) { t.fn = fn }

func (t *mockTimer) ScheduleIn(d time.Duration) error {
	t.scheduled = append(t.scheduled, d)
	return nil
}

func newTestMote(t *testing.T, cfg Config) (*Mote, *mockRadio, *mockLeds, *mockTimer, *[]string) {
	t.Helper()
	log := &[]string{}
	radio := &mockRadio{log: log}
	leds := &mockLeds{log: log}
	timer := &mockTimer{}
	m, err := New(cfg, Hardware{Radio: radio, Leds: leds, Timer: timer})
	require.NoError(t, err)
	return m, radio, leds, timer, log
}

// --- Tests ---

func TestNewValidation(t *testing.T) {
	_, err := New(Config{}, Hardware{Leds: &mockLeds{}, Timer: &mockTimer{}})
	require.ErrorIs(t, err, ErrNoRadio)

	_, err = New(Config{}, Hardware{Radio: &mockRadio{}, Timer: &mockTimer{}})
	require.ErrorIs(t, err, ErrNoLeds)

	_, err = New(Config{}, Hardware{Radio: &mockRadio{}, Leds: &mockLeds{}})
	require.ErrorIs(t, err, ErrNoTimer)
}

func TestNewDefaults(t *testing.T) {
	m, _, _, _, _ := newTestMote(t, Config{})

	assert.Equal(t, uint16(0), m.cfg.Channel)
	assert.Equal(t, uint32(800), m.cfg.ChannelSpacing)
	assert.Equal(t, uint32(9028000), m.cfg.Frequency0)
	assert.Equal(t, 2*time.Second, m.cfg.TimerPeriod)
	assert.Equal(t, byte(0x99), m.cfg.FillByte)
	assert.Equal(t, Receiving, m.Mode())
}

func TestTransitionTableComplete(t *testing.T) {
	// Every (Mode, Event) pair has an explicit handler, including the
	// absorbed tick while transmitting.
	for _, mode := range []Mode{Receiving, Transmitting} {
		for _, tag := range dispatchOrder {
			assert.NotNil(t, transitions[mode][tag], "missing handler for (%s, %s)", mode, tag)
		}
	}
}

func TestStartSequence(t *testing.T) {
	m, _, _, timer, log := newTestMote(t, Config{TimerPeriod: time.Second})

	require.NoError(t, m.Start())

	assert.Equal(t, []string{"powerOn", "setChannel", "rxEnable"}, *log)
	require.Len(t, timer.scheduled, 1)
	assert.Equal(t, time.Second, timer.scheduled[0])
	assert.Equal(t, Receiving, m.Mode())

	// The first transmit is seeded without waiting out a period.
	assert.Equal(t, EventTimerTick, m.flags.Drain())
}

func TestTimerWhileReceivingStartsTransmit(t *testing.T) {
	m, radio, _, _, log := newTestMote(t, Config{})

	m.flags.Raise(EventTimerTick)
	m.dispatch(m.flags.Drain())

	assert.Equal(t, Transmitting, m.Mode())
	assert.Equal(t, []string{"powerOff", "loadPacket", "txEnable", "txNow"}, *log)
	assert.True(t, m.flags.Empty())

	// Wire contract: full-capacity frame, every byte the fill byte.
	require.Len(t, radio.loaded, PacketLength)
	assert.Equal(t, bytes.Repeat([]byte{0x99}, PacketLength), radio.loaded)
	assert.Equal(t, PacketLength, m.Frame().Length())
}

func TestTimerWhileTransmittingIsAbsorbed(t *testing.T) {
	m, _, _, _, log := newTestMote(t, Config{})
	m.mode = Transmitting

	m.dispatch(EventTimerTick)

	assert.Equal(t, Transmitting, m.Mode())
	assert.Empty(t, *log, "absorbed tick must not issue any command")
}

func TestFrameEndWhileTransmittingReturnsToReceiving(t *testing.T) {
	m, _, leds, _, log := newTestMote(t, Config{})
	m.mode = Transmitting
	leds.busy = true

	m.dispatch(EventFrameEnd)

	assert.Equal(t, Receiving, m.Mode())
	assert.Equal(t, []string{"rxEnable", "busyOff"}, *log)
	assert.False(t, leds.busy)
}

func TestReceiveBurstInOneDrain(t *testing.T) {
	m, radio, leds, _, log := newTestMote(t, Config{})
	radio.rxPayload = []byte("ping")
	radio.rxInfo = RxInfo{Length: 4, RSSI: -70, LQI: 200, CRCOK: true}

	m.flags.Raise(EventFrameStart)
	m.flags.Raise(EventFrameEnd)
	m.dispatch(m.flags.Drain())

	assert.Equal(t, Receiving, m.Mode())
	assert.Equal(t, []string{"activityOn", "receivedFrame", "activityOff"}, *log)
	assert.False(t, leds.activity)
	assert.Equal(t, []byte("ping"), m.Frame().Bytes())
	assert.Equal(t, int8(-70), m.Frame().RSSI())
	assert.Equal(t, uint8(200), m.Frame().LQI())
	assert.True(t, m.Frame().CRCOK())
}

func TestCRCInvalidFrameIsStillCaptured(t *testing.T) {
	m, radio, _, _, _ := newTestMote(t, Config{})
	radio.rxPayload = []byte("garbled")
	radio.rxInfo = RxInfo{Length: 7, RSSI: -90, LQI: 12, CRCOK: false}

	m.dispatch(EventFrameEnd)

	assert.Equal(t, []byte("garbled"), m.Frame().Bytes())
	assert.False(t, m.Frame().CRCOK())
	// No control-flow branch on CRC: still listening.
	assert.Equal(t, Receiving, m.Mode())
}

func TestFetchErrorKeepsListening(t *testing.T) {
	m, radio, leds, _, _ := newTestMote(t, Config{})
	radio.rxErr = errors.New("fifo underrun")
	leds.activity = true

	m.dispatch(EventFrameEnd)

	// The error is logged, not escalated: activity still ends off and the
	// mote keeps listening.
	assert.Equal(t, Receiving, m.Mode())
	assert.False(t, leds.activity)
}

func TestDispatchOrderIsFixed(t *testing.T) {
	m, radio, _, _, log := newTestMote(t, Config{})
	radio.rxPayload = []byte("x")
	radio.rxInfo = RxInfo{Length: 1, CRCOK: true}

	// Raise in reverse order; handling order must still be frame-start,
	// frame-end, timer.
	m.flags.Raise(EventTimerTick)
	m.flags.Raise(EventFrameEnd)
	m.flags.Raise(EventFrameStart)
	m.dispatch(m.flags.Drain())

	assert.Equal(t, []string{
		"activityOn", "receivedFrame", "activityOff",
		"powerOff", "loadPacket", "txEnable", "txNow",
	}, *log)
	assert.True(t, m.flags.Empty())
	assert.Equal(t, Transmitting, m.Mode())
}

func TestIndicatorsNeverOverlap(t *testing.T) {
	m, radio, leds, _, _ := newTestMote(t, Config{})
	radio.rxInfo = RxInfo{Length: 0, CRCOK: true}

	// Several full duty cycles interleaved with receive bursts.
	script := []Event{
		EventTimerTick,                 // rx -> tx
		EventFrameStart,                // tx on air
		EventFrameEnd,                  // tx done -> rx
		EventFrameStart,                // rx burst
		EventFrameEnd,                  //
		EventTimerTick,                 // rx -> tx
		EventFrameStart | EventFrameEnd | EventTimerTick, // pile-up drain
		EventFrameStart,
		EventFrameEnd,
	}
	for _, pending := range script {
		m.dispatch(pending)
		assert.False(t, leds.overlap, "busy and activity lit together")
	}
}

func TestCallbacksRaiseFlagsAndCountOnly(t *testing.T) {
	m, radio, _, timer, log := newTestMote(t, Config{TimerPeriod: time.Minute})

	radio.cbs.FrameStart(100)
	radio.cbs.FrameEnd(200)
	radio.cbs.TimerOverflow()
	radio.cbs.TimerCompare()
	timer.fn()

	// Callbacks defer everything: no collaborator command was issued.
	assert.Empty(t, *log)

	s := m.Stats()
	assert.Equal(t, uint32(1), s.FrameStart)
	assert.Equal(t, uint32(1), s.FrameEnd)
	assert.Equal(t, uint32(1), s.TimerOverflow)
	assert.Equal(t, uint32(1), s.TimerCompare)
	assert.Equal(t, uint32(1), s.TimerFired)

	pending := m.flags.Drain()
	assert.True(t, pending.Has(EventFrameStart))
	assert.True(t, pending.Has(EventFrameEnd))
	assert.True(t, pending.Has(EventTimerTick))

	// The timer callback re-armed itself for the same period.
	require.Len(t, timer.scheduled, 1)
	assert.Equal(t, time.Minute, timer.scheduled[0])
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "receiving", Receiving.String())
	assert.Equal(t, "transmitting", Transmitting.String())
}
