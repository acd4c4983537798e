package dutyradio

import "sync/atomic"

// Stats counts hardware callback invocations. Counters are bumped once per
// callback from interrupt context, never reset, and never consulted by the
// control logic; they exist so a debugger or a log line can see what the
// hardware has been doing.
type Stats struct {
	TimerOverflow atomic.Uint32
	TimerCompare  atomic.Uint32
	FrameStart    atomic.Uint32
	FrameEnd      atomic.Uint32
	TimerFired    atomic.Uint32
}

// StatsSnapshot is a plain-value copy of Stats, safe to compare and print.
type StatsSnapshot struct {
	TimerOverflow uint32
	TimerCompare  uint32
	FrameStart    uint32
	FrameEnd      uint32
	TimerFired    uint32
}

// Snapshot reads all counters. The counters advance independently, so the
// snapshot is per-field consistent, not globally consistent.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		TimerOverflow: s.TimerOverflow.Load(),
		TimerCompare:  s.TimerCompare.Load(),
		FrameStart:    s.FrameStart.Load(),
		FrameEnd:      s.FrameEnd.Load(),
		TimerFired:    s.TimerFired.Load(),
	}
}
