package render

import "time"

// DefaultInterval is the minimum time between two rendered frames.
const DefaultInterval = 100 * time.Millisecond

// Throttle limits how often frames are drawn.
type Throttle struct {
	interval time.Duration
	last     time.Time
}

// NewThrottle creates a throttle whose first frame is due one interval
// after start.
func NewThrottle(interval time.Duration, start time.Time) *Throttle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Throttle{interval: interval, last: start}
}

// Due reports whether a frame may be drawn at now.
func (t *Throttle) Due(now time.Time) bool {
	return now.Sub(t.last) >= t.interval
}

// Mark records a drawn frame.
func (t *Throttle) Mark(now time.Time) {
	t.last = now
}
