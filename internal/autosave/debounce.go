// Package autosave keeps a server-side workout in step with local edits:
// edits are coalesced by a Debouncer and persisted through a SingleFlight
// gate so at most one write per workout is ever in flight.
package autosave

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last edit before a save fires.
const DefaultDelay = 250 * time.Millisecond

// Debouncer coalesces rapid calls and fires fn once with the latest value
// after delay has passed without a new call.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64 // bumped on every reschedule; stale timer fires compare against it
	pending bool
	value   T
	stopped bool
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call replaces the pending value with v and restarts the quiet period.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gen++
	gen := d.gen
	d.value = v
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush fires the pending value now, if there is one.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()
	d.fn(v)
}

// Stop drops any pending value; later calls are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.take()
}

// Pending reports whether a value is waiting for its quiet period to end.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()
	d.fn(v)
}

// take clears the pending slot and returns its value. Callers hold mu.
func (d *Debouncer[T]) take() T {
	v := d.value
	var zero T
	d.value = zero
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v
}
