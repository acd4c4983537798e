package dutyradio

import (
	"context"
	"sync/atomic"
)

// Event tags one class of deferred hardware event.
type Event uint32

const (
	// EventFrameStart is raised by the radio's start-of-frame interrupt.
	EventFrameStart Event = 1 << iota
	// EventFrameEnd is raised by the radio's end-of-frame interrupt.
	EventFrameEnd
	// EventTimerTick is raised by the periodic timer expiry.
	EventTimerTick
)

// Has reports whether tag is present in the set.
func (e Event) Has(tag Event) bool {
	return e&tag != 0
}

func (e Event) String() string {
	switch e {
	case EventFrameStart:
		return "frame-start"
	case EventFrameEnd:
		return "frame-end"
	case EventTimerTick:
		return "timer-tick"
	default:
		return "event-set"
	}
}

// EventFlags is the one piece of state shared between interrupt context and
// the main loop: a bitset of pending events. Interrupt handlers only set
// bits (Raise); the main loop performs the sole read-and-clear (Drain).
// Both sides go through atomics, so a tag raised while a drain is in flight
// either lands in that drain's snapshot or survives for the next one; it is
// never lost and never handled twice.
type EventFlags struct {
	bits atomic.Uint32
	wake chan struct{}
}

// NewEventFlags returns an empty flag set.
func NewEventFlags() *EventFlags {
	return &EventFlags{wake: make(chan struct{}, 1)}
}

// Raise marks tag pending and wakes a sleeping Wait. Safe to call from
// interrupt context: a single atomic OR plus a non-blocking channel send.
// Raising a tag that is already pending is a no-op.
func (f *EventFlags) Raise(tag Event) {
	f.bits.Or(uint32(tag))
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Drain atomically takes and clears the entire pending set. Only the main
// loop may call it.
func (f *EventFlags) Drain() Event {
	return Event(f.bits.Swap(0))
}

// Empty reports whether no tag is pending.
func (f *EventFlags) Empty() bool {
	return f.bits.Load() == 0
}

// Wait blocks until at least one tag is pending or ctx is done. It may also
// return with nothing pending after a tick that was already drained; the
// caller re-checks by draining. This is the low-power idle wait of the main
// loop: on hosted platforms the "interrupt" that ends it is the wake
// notification from Raise.
func (f *EventFlags) Wait(ctx context.Context) error {
	if !f.Empty() {
		return nil
	}
	select {
	case <-f.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
