package confirm

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/clock"
)

// Button tracks the transition state of a confirm button and owns its
// auto-reset timer. The zero value is a default-state button on the real
// clock; use New to configure it.
type Button struct {
	mu     sync.Mutex
	clock  clock.Clock
	delay  time.Duration
	logger *zap.Logger
	notify []func(Snapshot)

	state   State
	display bool
	timer   clock.Timer
	// generation invalidates callbacks of timers that were stopped after
	// they had already started firing.
	generation uint64
	closed     bool
}

// New constructs a Button in StateDefault unless WithInitialState says
// otherwise. A button mounted while loading starts with the completed flag
// set; one mounted in success or error arms no timer.
func New(opts ...Option) *Button {
	b := &Button{
		clock:  clock.Real(),
		delay:  DefaultResetDelay,
		logger: zap.NewNop(),
		state:  StateDefault,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	if b.state == StateLoading {
		b.display = true
	}
	return b
}

// SetState applies an external state change. Setting the current state
// again is a no-op; calls after Close are ignored.
func (b *Button) SetState(next State) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.defaultsLocked()
	if b.closed || next == b.state {
		b.mu.Unlock()
		return
	}
	prev := b.state
	b.state = next

	switch {
	case next == StateLoading:
		b.display = true
		b.cancelTimerLocked()
	case next.Completed():
		b.cancelTimerLocked()
		generation := b.generation
		b.timer = b.clock.AfterFunc(b.delay, func() { b.expire(generation) })
	}
	snap := b.snapshotLocked()
	listeners := b.notify
	b.mu.Unlock()

	b.logger.Debug("confirm button transition",
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
		zap.Bool("display_completed", snap.DisplayCompleted),
	)
	emit(listeners, snap)
}

// Click invokes onClick unless the button is loading. It reports whether
// onClick ran.
func (b *Button) Click(onClick func()) bool {
	if b == nil || onClick == nil {
		return false
	}
	b.mu.Lock()
	loading := b.state == StateLoading
	b.mu.Unlock()
	if loading {
		return false
	}
	onClick()
	return true
}

// Snapshot returns the current state and completed flag.
func (b *Button) Snapshot() Snapshot {
	if b == nil {
		return Snapshot{State: StateDefault}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// State returns the last state supplied by the host.
func (b *Button) State() State {
	return b.Snapshot().State
}

// DisplayCompletedActionState reports whether the loading or completed
// decoration should still be shown.
func (b *Button) DisplayCompletedActionState() bool {
	return b.Snapshot().DisplayCompleted
}

// Disabled reports whether the control is disabled for the host's
// disabled flag.
func (b *Button) Disabled(external bool) bool {
	return b.Snapshot().Disabled(external)
}

// View derives the render contract for this pass.
func (b *Button) View(external bool, label string) View {
	return b.Snapshot().View(external, label)
}

// Close cancels any pending reset. It is safe to call more than once.
func (b *Button) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.cancelTimerLocked()
}

func (b *Button) expire(generation uint64) {
	b.mu.Lock()
	if b.closed || generation != b.generation {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	if !b.display {
		b.mu.Unlock()
		return
	}
	b.display = false
	snap := b.snapshotLocked()
	listeners := b.notify
	b.mu.Unlock()

	b.logger.Debug("confirm button reset", zap.String("state", string(snap.State)))
	emit(listeners, snap)
}

func (b *Button) cancelTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.generation++
}

func (b *Button) snapshotLocked() Snapshot {
	b.defaultsLocked()
	return Snapshot{State: b.state, DisplayCompleted: b.display}
}

// defaultsLocked fills the fields New would have set on a zero Button.
func (b *Button) defaultsLocked() {
	if b.clock == nil {
		b.clock = clock.Real()
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.delay <= 0 {
		b.delay = DefaultResetDelay
	}
	if b.state == "" {
		b.state = StateDefault
	}
}

func emit(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
