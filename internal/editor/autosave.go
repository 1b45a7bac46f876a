package editor

import (
	"sync"
	"time"
)

// Debounce is a single-shot, re-armable delayed task. Arm replaces any
// pending task, so a burst of calls runs the function once, after the last
// call's wait elapses. The zero value is ready to use.
type Debounce struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// Arm schedules fn to run after wait, cancelling any pending task. fn runs
// on the timer goroutine.
func (d *Debounce) Arm(wait time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	// The generation check keeps a timer that fired concurrently with a
	// later Arm or Cancel from running its stale task.
	d.timer = time.AfterFunc(wait, func() {
		d.mu.Lock()
		stale := gen != d.gen
		d.mu.Unlock()
		if !stale {
			fn()
		}
	})
}

// Cancel discards the pending task, if any. A task that already started
// running is not interrupted.
func (d *Debounce) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
