package explore

import (
	"sync"
	"time"
)

// DefaultQuietInterval is the trailing-edge debounce window used by the dose
// and range-filter controllers.
const DefaultQuietInterval = 200 * time.Millisecond

// Timer is the cancellable handle returned by a Clock.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call
	// stopped the timer before it fired.
	Stop() bool
}

// Clock abstracts timer creation so the debounce state machine can be driven
// by a fake clock in tests.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall-clock implementation of Clock.
func RealClock() Clock { return realClock{} }

// debounceState is the explicit controller state: idle, or holding a pending
// commit behind a running timer.
type debounceState int

const (
	stateIdle debounceState = iota
	statePendingCommit
)

// Debouncer decouples rapid continuous input from expensive downstream
// recomputation. The pending value updates synchronously on every Schedule
// call so the UI can echo it immediately, while the commit callback fires
// only after a quiet interval with no further updates.
//
// Semantics:
//   - Schedule with a value equal to the current pending value is a no-op:
//     no timer reset, no callback.
//   - Sync snaps the pending value to an externally-changed canonical value
//     and cancels any in-flight commit.
//   - Close cancels any pending timer so a commit can never fire after
//     disposal.
type Debouncer[T comparable] struct {
	mu      sync.Mutex
	state   debounceState
	pending T
	quiet   time.Duration
	commit  func(T)
	clock   Clock
	timer   Timer
	closed  bool
}

// NewDebouncer constructs a Debouncer with the given initial value, quiet
// interval, and commit callback. A nil clock selects the real clock.
func NewDebouncer[T comparable](initial T, quiet time.Duration, commit func(T), clock Clock) *Debouncer[T] {
	if quiet <= 0 {
		quiet = DefaultQuietInterval
	}
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer[T]{
		state:   stateIdle,
		pending: initial,
		quiet:   quiet,
		commit:  commit,
		clock:   clock,
	}
}

// Pending returns the currently visible value.
func (d *Debouncer[T]) Pending() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Schedule records a new input value and (re)arms the commit timer. Equal
// values are ignored entirely.
func (d *Debouncer[T]) Schedule(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || v == d.pending {
		return
	}
	d.pending = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.state = statePendingCommit
	d.timer = d.clock.AfterFunc(d.quiet, d.fire)
}

// fire runs on timer expiry: commit the latest pending value and return to
// idle. The callback is invoked outside the lock so it may call back into the
// controller.
func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if d.closed || d.state != statePendingCommit {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.state = stateIdle
	d.timer = nil
	commit := d.commit
	d.mu.Unlock()

	if commit != nil {
		commit(v)
	}
}

// Sync snaps the pending value to an externally-changed canonical value and
// cancels any in-flight commit timer. No commit fires for the synced value.
func (d *Debouncer[T]) Sync(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.pending = v
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.state = stateIdle
}

// Close cancels any pending timer. Further Schedule and Sync calls are
// ignored.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.state = stateIdle
}
