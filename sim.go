package dutyradio

import (
	"errors"
	"time"

	"github.com/dgroth/dutyradio/internal/syncutil"
)

var (
	ErrNoTxFrame    = errors.New("no frame staged for transmit")
	ErrTxNotArmed   = errors.New("transmit path not enabled")
	ErrNoRxFrame    = errors.New("no received frame available")
	ErrNotListening = errors.New("radio is not listening")
)

// simMaxFrame is the transceiver's hard frame-size limit.
const simMaxFrame = 2047

// SimRadio honors the Radio contract entirely in memory. A transmit fires
// the frame-start callback, waits out a configurable air time, then fires
// frame-end; InjectFrame plays an incoming frame while the radio is
// listening. It backs the examples and the integration tests, so it keeps
// every frame it is asked to send.
type SimRadio struct {
	mu        syncutil.Mutex
	cbs       Callbacks
	started   time.Time
	airTime   time.Duration
	powered   bool
	listening bool
	txArmed   bool
	spacing   uint32
	freq0     uint32
	channel   uint16
	staged    []byte
	sent      [][]byte
	rxPayload []byte
	rxInfo    RxInfo
	rxValid   bool
}

// NewSimRadio returns a powered-off simulated radio with a 5ms air time.
func NewSimRadio() *SimRadio {
	return &SimRadio{
		started: time.Now(),
		airTime: 5 * time.Millisecond,
	}
}

// SetAirTime changes the simulated frame-start to frame-end delay.
func (r *SimRadio) SetAirTime(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.airTime = d
}

func (r *SimRadio) SetCallbacks(cbs Callbacks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cbs = cbs
}

func (r *SimRadio) PowerOn() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.powered = true
	return nil
}

func (r *SimRadio) PowerOff() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.powered = false
	r.listening = false
	r.txArmed = false
	return nil
}

func (r *SimRadio) SetChannel(spacingKHz uint32, frequency0 uint32, channel uint16) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spacing = spacingKHz
	r.freq0 = frequency0
	r.channel = channel
	return nil
}

// RxEnable powers the receive path, like the hardware does even from the
// off state.
func (r *SimRadio) RxEnable() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.powered = true
	r.listening = true
	r.txArmed = false
	return nil
}

func (r *SimRadio) LoadPacket(payload []byte) error {
	if len(payload) > simMaxFrame {
		return errors.New("frame exceeds maximum length")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged = append([]byte(nil), payload...)
	return nil
}

func (r *SimRadio) TxEnable() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.powered = true
	r.listening = false
	r.txArmed = true
	return nil
}

// TxNow launches the staged frame: frame-start fires immediately, frame-end
// after the air time, both from a separate goroutine standing in for the
// radio's interrupt line.
func (r *SimRadio) TxNow() error {
	r.mu.Lock()
	if !r.txArmed {
		r.mu.Unlock()
		return ErrTxNotArmed
	}
	if r.staged == nil {
		r.mu.Unlock()
		return ErrNoTxFrame
	}
	frame := r.staged
	r.sent = append(r.sent, frame)
	cbs := r.cbs
	air := r.airTime
	r.mu.Unlock()

	go func() {
		if cbs.FrameStart != nil {
			cbs.FrameStart(r.timestamp())
		}
		time.Sleep(air)
		if cbs.FrameEnd != nil {
			cbs.FrameEnd(r.timestamp())
		}
	}()
	return nil
}

// InjectFrame plays an incoming frame. It fires frame-start and frame-end
// synchronously, so a test that calls it from its own goroutine sees a
// deterministic sequence. Fails if the radio is not listening; a
// half-duplex radio cannot receive mid-transmit.
func (r *SimRadio) InjectFrame(payload []byte, rssi int8, lqi uint8, crcOK bool) error {
	r.mu.Lock()
	if !r.listening {
		r.mu.Unlock()
		return ErrNotListening
	}
	cbs := r.cbs
	r.rxPayload = append([]byte(nil), payload...)
	r.rxInfo = RxInfo{Length: len(payload), RSSI: rssi, LQI: lqi, CRCOK: crcOK}
	r.rxValid = true
	r.mu.Unlock()

	if cbs.FrameStart != nil {
		cbs.FrameStart(r.timestamp())
	}
	if cbs.FrameEnd != nil {
		cbs.FrameEnd(r.timestamp())
	}
	return nil
}

func (r *SimRadio) ReceivedFrame(buf []byte) (RxInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.rxValid {
		return RxInfo{}, ErrNoRxFrame
	}
	copy(buf, r.rxPayload)
	return r.rxInfo, nil
}

// Sent returns copies of every frame transmitted so far.
func (r *SimRadio) Sent() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.sent))
	for i, f := range r.sent {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// Listening reports whether the receive path is currently enabled.
func (r *SimRadio) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}

func (r *SimRadio) timestamp() uint32 {
	return uint32(time.Since(r.started) / time.Microsecond)
}

var _ Radio = (*SimRadio)(nil)
