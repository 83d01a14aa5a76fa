package engine

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of edits into one recomputation after a fixed
// quiescence window. It is a scheduling layer only: the engine stays fully
// correct when called synchronously, and a zero window disables deferral.
// Superseded triggers are discarded by sequence number, not by timing.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	seq    uint64
	timer  *time.Timer
	fn     func()
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger schedules fn after the quiescence window. A newer trigger
// supersedes any pending one; only the latest fn ever runs.
func (d *Debouncer) Trigger(fn func()) {
	if d == nil || fn == nil {
		return
	}

	d.mu.Lock()
	if d.window <= 0 {
		d.seq++
		d.fn = nil
		d.mu.Unlock()
		fn()
		return
	}

	d.seq++
	seq := d.seq
	d.fn = fn

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.fire(seq)
	})
	d.mu.Unlock()
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.fn == nil {
		d.mu.Unlock()
		return
	}
	fn := d.fn
	d.fn = nil
	d.mu.Unlock()

	fn()
}

// Flush runs any pending trigger immediately.
func (d *Debouncer) Flush() {
	if d == nil {
		return
	}

	d.mu.Lock()
	d.seq++
	fn := d.fn
	d.fn = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop cancels any pending trigger without running it.
func (d *Debouncer) Stop() {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.fn = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
