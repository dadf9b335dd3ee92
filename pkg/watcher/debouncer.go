// Package watcher reports changes to a single file, coalescing bursts of
// writes into one notification. It prefers fsnotify and falls back to
// polling the modification time when no notifier is available.
package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period a burst of writes must be followed by.
const DefaultDebounce = 250 * time.Millisecond

// Debouncer runs only the last of a burst of callbacks, once the burst has
// been quiet for the configured duration.
type Debouncer struct {
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // bumped on every Trigger and Cancel
}

// NewDebouncer returns a debouncer. A non-positive duration means
// DefaultDebounce.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounce
	}
	return &Debouncer{duration: d}
}

// Trigger (re)schedules fn. Only the fn of the latest Trigger runs.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		if d.claim(gen) {
			fn()
		}
	})
}

// claim reports whether gen is still the latest generation. A timer that
// fired just before being stopped loses here.
func (d *Debouncer) claim(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return false
	}
	d.timer = nil
	return true
}

// Pending returns true while a callback is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the scheduled callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Duration returns the quiet period
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
