//go:build !deadlock

// Package syncutil provides the package mutex type. The default build uses
// the standard sync.Mutex with zero overhead; build with -tags=deadlock to
// swap in github.com/sasha-s/go-deadlock and get lock-order checking.
package syncutil

import "sync"

// Mutex wraps sync.Mutex. Build with -tags=deadlock for deadlock detection.
type Mutex struct {
	sync.Mutex
}
