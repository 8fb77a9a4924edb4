// Package clock supplies the logical "now" used for scheduling and timestamps.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// InLocation wraps a clock so every reading is expressed in loc.
// The delivery cutoff is evaluated in business-local time, not server time.
func InLocation(c Clock, loc *time.Location) Clock {
	return locClock{inner: c, loc: loc}
}

type locClock struct {
	inner Clock
	loc   *time.Location
}

func (c locClock) Now() time.Time { return c.inner.Now().In(c.loc) }

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{t: t} }

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}
