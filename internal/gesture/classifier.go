package gesture

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/detector"
)

// Classifier maps the index finger pointing vector of a moving hand to a
// cardinal direction.
type Classifier struct {
	// MovementThreshold is the minimum palm travel between calls, in
	// normalized frame units, for a gesture to count.
	MovementThreshold float64
	// GestureThreshold is the minimum pointing extension along the
	// dominant axis.
	GestureThreshold float64
	// DominanceRatio is how much larger the dominant axis must be than the
	// other one. Diagonal pointing is rejected.
	DominanceRatio float64
}

// DefaultClassifier returns the tuned classifier.
func DefaultClassifier() Classifier {
	return Classifier{
		MovementThreshold: 0.05,
		GestureThreshold:  0.12,
		DominanceRatio:    1.5,
	}
}

// Classify returns the direction hand is pointing and its palm position,
// which the caller passes back as prev on the next call. A nil prev skips the
// movement check.
func (c Classifier) Classify(hand *detector.HandLandmarks, prev *r2.Vec) (Direction, r2.Vec) {
	palm := hand.Palm().Flat()

	if prev != nil && r2.Norm(r2.Sub(palm, *prev)) < c.MovementThreshold {
		return None, palm
	}

	pointing := r2.Sub(hand.Points[detector.IndexTip].Flat(), hand.Points[detector.Wrist].Flat())
	absX, absY := math.Abs(pointing.X), math.Abs(pointing.Y)

	switch {
	case absX > absY*c.DominanceRatio:
		if pointing.X > c.GestureThreshold {
			return Right, palm
		}
		if pointing.X < -c.GestureThreshold {
			return Left, palm
		}
	case absY > absX*c.DominanceRatio:
		// Image Y grows downward.
		if pointing.Y > c.GestureThreshold {
			return Down, palm
		}
		if pointing.Y < -c.GestureThreshold {
			return Up, palm
		}
	}

	return None, palm
}
