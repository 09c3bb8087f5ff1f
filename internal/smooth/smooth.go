// Package smooth provides single-pole exponential filters for continuous
// control signals.
package smooth

import (
	"errors"
	"fmt"
)

// ErrFactorRange is returned when a smoothing factor is outside (0, 1].
var ErrFactorRange = errors.New("smoothing factor must be in (0, 1]")

// Signal tracks a raw target with value += (target - value) * factor per
// step. The target holds between updates, so a signal whose source
// disappears settles toward the last target instead of snapping.
type Signal struct {
	factor float64
	value  []float64
	target []float64
}

// New returns a signal of len(initial) dimensions. Value and target both
// start at initial.
func New(factor float64, initial ...float64) (*Signal, error) {
	if err := CheckFactor(factor); err != nil {
		return nil, err
	}

	s := &Signal{
		factor: factor,
		value:  make([]float64, len(initial)),
		target: make([]float64, len(initial)),
	}
	copy(s.value, initial)
	copy(s.target, initial)

	return s, nil
}

// CheckFactor validates a smoothing factor.
func CheckFactor(factor float64) error {
	if !(factor > 0 && factor <= 1) {
		return fmt.Errorf("%w: got %v", ErrFactorRange, factor)
	}
	return nil
}

// Factor returns the per-step weight of the target.
func (s *Signal) Factor() float64 {
	return s.factor
}

// Dim returns the number of components.
func (s *Signal) Dim() int {
	return len(s.value)
}

// SetTarget replaces the target. Extra components are ignored and missing
// ones keep their previous target.
func (s *Signal) SetTarget(target ...float64) {
	copy(s.target, target)
}

// Step advances the filter by one tick and returns the new value.
func (s *Signal) Step() []float64 {
	for i := range s.value {
		s.value[i] += (s.target[i] - s.value[i]) * s.factor
	}
	return s.Value()
}

// Value returns a copy of the current filtered value.
func (s *Signal) Value() []float64 {
	out := make([]float64, len(s.value))
	copy(out, s.value)
	return out
}

// Target returns a copy of the current target.
func (s *Signal) Target() []float64 {
	out := make([]float64, len(s.target))
	copy(out, s.target)
	return out
}

// Reset sets both value and target, dropping any pending settle.
func (s *Signal) Reset(v ...float64) {
	copy(s.value, v)
	copy(s.target, v)
}
