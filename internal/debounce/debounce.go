// Package debounce collapses bursts of calls into a single delayed action.
package debounce

import (
	"sync"
	"time"
)

// Timer is the handle returned by an AfterFunc. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs an action once the quiescence window has elapsed without a
// new Trigger. Every Trigger resets the window and replaces the pending
// action.
type Debouncer struct {
	window    time.Duration
	afterFunc AfterFunc

	mu      sync.Mutex
	pending Timer
	seq     uint64
	stopped bool
}

// New returns a Debouncer using the real clock.
func New(window time.Duration) *Debouncer {
	return NewWithClock(window, nil)
}

// NewWithClock returns a Debouncer that schedules through afterFunc. A nil
// afterFunc uses time.AfterFunc.
func NewWithClock(window time.Duration, afterFunc AfterFunc) *Debouncer {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Debouncer{window: window, afterFunc: afterFunc}
}

// Window returns the quiescence window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Trigger (re)starts the window; action runs when it elapses.
func (d *Debouncer) Trigger(action func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = d.afterFunc(d.window, func() {
		d.mu.Lock()
		// A timer that fired concurrently with a reset must not run.
		if d.stopped || seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		action()
	})
}

// Pending reports whether an action is waiting for the window to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Cancel drops the pending action without stopping the debouncer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.seq++
}

// Stop cancels the pending action; later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
