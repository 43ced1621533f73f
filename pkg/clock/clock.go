// Package clock abstracts the timer operations used by the confirm button so
// the auto-reset delay can be driven deterministically in tests.
package clock

import "time"

// Clock is the subset of the time package the form-state controllers use.
type Clock interface {
	Now() time.Time
	// AfterFunc waits for d, then calls f on its own goroutine (real) or
	// synchronously inside Advance (fake).
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. Reports false when the timer
	// already fired or was stopped.
	Stop() bool
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
