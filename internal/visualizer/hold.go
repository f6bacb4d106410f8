package visualizer

import "time"

// DefaultHold is how long the peak marker stays up before falling back.
const DefaultHold = 1600 * time.Millisecond

// PeakHold tracks the held marker position of a peak meter. The marker
// jumps up as soon as a larger position arrives and only falls back to the
// current position once the hold time has passed since the last rise.
type PeakHold struct {
	hold     time.Duration
	position int
	since    time.Time
}

// NewPeakHold creates a holder starting at position 0.
func NewPeakHold(hold time.Duration, now time.Time) *PeakHold {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &PeakHold{hold: hold, since: now}
}

// Update feeds the current position and returns the held one.
func (p *PeakHold) Update(pos int, now time.Time) int {
	if pos > p.position {
		p.position = pos
		p.since = now
	} else if now.Sub(p.since) > p.hold {
		// since is left alone here, so after expiry the marker follows
		// the bar until the next rise.
		p.position = pos
	}
	return p.position
}

// Position returns the held position.
func (p *PeakHold) Position() int { return p.position }
