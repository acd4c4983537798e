package dutyradio

import (
	"errors"
	"time"

	"github.com/dgroth/dutyradio/internal/syncutil"
)

// ErrNoTimerCallback is returned by HostTimer.ScheduleIn when no expiry
// callback has been registered.
var ErrNoTimerCallback = errors.New("timer callback not set")

// HostTimer implements the Timer capability on top of the Go runtime
// timer. The callback runs on a runtime timer goroutine, which stands in
// for the hardware's interrupt context: it must only raise flags.
type HostTimer struct {
	mu syncutil.Mutex
	fn func()
	t  *time.Timer
}

// SetCallback registers the expiry hook. Call before the first ScheduleIn.
func (ht *HostTimer) SetCallback(fn func()) {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	ht.fn = fn
}

// ScheduleIn arms a one-shot countdown for d from now. A pending countdown
// is replaced.
func (ht *HostTimer) ScheduleIn(d time.Duration) error {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	if ht.fn == nil {
		return ErrNoTimerCallback
	}
	if ht.t != nil {
		ht.t.Stop()
	}
	ht.t = time.AfterFunc(d, ht.fn)
	return nil
}

// Stop cancels any pending expiry. The duty-cycle design never cancels its
// timer; this exists so hosted programs and tests can shut down cleanly.
func (ht *HostTimer) Stop() {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	if ht.t != nil {
		ht.t.Stop()
		ht.t = nil
	}
}

var _ Timer = (*HostTimer)(nil)
