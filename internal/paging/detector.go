package paging

import (
	"sync"
	"time"

	"github.com/artpar/marquee/internal/clock"
)

// Defaults for the proximity detector.
const (
	DefaultDelay  = 100 * time.Millisecond
	DefaultMargin = 5
)

// Visibility describes how far a list viewport reaches. SentinelAt is the
// row just past the last loaded item; ViewportEnd is the last visible row.
type Visibility struct {
	ViewportEnd int
	SentinelAt  int
}

// Intersecting reports whether the sentinel is within margin rows of the
// viewport.
func (v Visibility) Intersecting(margin int) bool {
	return v.ViewportEnd+margin >= v.SentinelAt
}

// Detector turns viewport observations into a debounced trigger. Rapid
// intersecting observations collapse into one call after the delay.
type Detector struct {
	clock   clock.Clock
	delay   time.Duration
	margin  int
	trigger func()

	mu     sync.Mutex
	timer  *clock.Timer
	gen    uint64
	closed bool
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithClock sets the clock used for the debounce timer.
func WithClock(c clock.Clock) DetectorOption {
	return func(d *Detector) {
		d.clock = c
	}
}

// WithDelay sets the debounce delay.
func WithDelay(delay time.Duration) DetectorOption {
	return func(d *Detector) {
		d.delay = delay
	}
}

// WithMargin sets how many rows ahead of the sentinel count as near.
func WithMargin(rows int) DetectorOption {
	return func(d *Detector) {
		d.margin = rows
	}
}

// NewDetector creates a Detector that calls trigger when the sentinel
// comes near the viewport.
func NewDetector(trigger func(), opts ...DetectorOption) *Detector {
	d := &Detector{
		clock:   clock.Real(),
		delay:   DefaultDelay,
		margin:  DefaultMargin,
		trigger: trigger,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Observe records a viewport position. When the sentinel is near, any
// pending trigger is replaced by a new one after the delay. It reports
// whether the observation was intersecting.
func (d *Detector) Observe(v Visibility) bool {
	d.mu.Lock()
	if d.closed || !v.Intersecting(d.margin) {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	// The clock may run the callback before AfterFunc returns, so the
	// lock is not held here.
	timer := d.clock.AfterFunc(d.delay, func() { d.fire(gen) })

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen == gen && !d.closed {
		d.timer = timer
	} else {
		timer.Stop()
	}
	return true
}

func (d *Detector) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || d.gen != gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.gen++
	trigger := d.trigger
	d.mu.Unlock()

	trigger()
}

// Pending reports whether a trigger is scheduled.
func (d *Detector) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Close cancels any pending trigger. Later observations are ignored.
func (d *Detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
