// Package command turns classified gestures into rate-limited playback
// actions.
package command

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultCooldown is the minimum time between two accepted commands.
const DefaultCooldown = 500 * time.Millisecond

// State is the debouncer state at a given instant.
type State int

const (
	// Idle accepts the next qualifying gesture.
	Idle State = iota
	// Cooldown drops gestures until the interval has elapsed.
	Cooldown
)

// String returns a short name for logs.
func (s State) String() string {
	if s == Cooldown {
		return "cooldown"
	}
	return "idle"
}

// Debouncer is a rate limiter for discrete gestures. Rejected gestures are
// dropped; nothing is queued. The transition back to Idle is evaluated lazily
// when the next gesture arrives.
type Debouncer struct {
	cooldown time.Duration
	last     time.Time
	accepted bool
}

// NewDebouncer returns a debouncer with the given cooldown. Non-positive
// values fall back to DefaultCooldown.
func NewDebouncer(cooldown time.Duration) *Debouncer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Debouncer{cooldown: cooldown}
}

// Cooldown returns the configured interval.
func (d *Debouncer) Cooldown() time.Duration {
	return d.cooldown
}

// Accept reports whether dir should fire at now, and records it if so.
func (d *Debouncer) Accept(dir gesture.Direction, now time.Time) bool {
	if dir == gesture.None {
		return false
	}
	if d.State(now) == Cooldown {
		return false
	}

	d.last = now
	d.accepted = true
	return true
}

// State returns Cooldown while less than the interval has passed since the
// last accepted gesture.
func (d *Debouncer) State(now time.Time) State {
	if d.accepted && now.Sub(d.last) < d.cooldown {
		return Cooldown
	}
	return Idle
}

// LastAccepted returns the time of the last accepted gesture and whether any
// gesture has been accepted yet.
func (d *Debouncer) LastAccepted() (time.Time, bool) {
	return d.last, d.accepted
}
