package app

import (
	"context"
	"time"
)

// Pacer holds the loop to a fixed tick rate. A tick that overruns its
// budget is not made up for later.
type Pacer struct {
	budget time.Duration
}

// NewPacer returns a pacer for fps ticks per second.
func NewPacer(fps int) *Pacer {
	if fps <= 0 {
		fps = 30
	}
	return &Pacer{budget: time.Second / time.Duration(fps)}
}

// Budget returns the duration of one tick.
func (p *Pacer) Budget() time.Duration {
	return p.budget
}

// Remaining returns how much of the tick that began at start is left at now.
func (p *Pacer) Remaining(start, now time.Time) time.Duration {
	left := p.budget - now.Sub(start)
	if left < 0 {
		return 0
	}
	return left
}

// Wait sleeps out the rest of the tick that began at start, returning early
// if ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context, start time.Time) {
	left := p.Remaining(start, time.Now())
	if left == 0 {
		return
	}

	timer := time.NewTimer(left)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
