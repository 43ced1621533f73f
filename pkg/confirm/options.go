package confirm

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/clock"
)

// DefaultResetDelay is how long a completed state stays decorated.
const DefaultResetDelay = 2000 * time.Millisecond

// Option configures a Button.
type Option func(*Button)

// WithClock injects the clock used for the reset timer.
func WithClock(c clock.Clock) Option {
	return func(b *Button) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithResetDelay overrides DefaultResetDelay. Non-positive values are
// ignored.
func WithResetDelay(d time.Duration) Option {
	return func(b *Button) {
		if d > 0 {
			b.delay = d
		}
	}
}

// WithInitialState sets the state the button is mounted with.
func WithInitialState(s State) Option {
	return func(b *Button) {
		if s != "" {
			b.state = s
		}
	}
}

// WithLogger attaches a logger for transition tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Button) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithNotify registers fn to receive every observable change, including
// the timer-driven reset. fn is never called after Close.
func WithNotify(fn func(Snapshot)) Option {
	return func(b *Button) {
		if fn != nil {
			b.notify = append(b.notify, fn)
		}
	}
}
