package gesture

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/detector"
)

// normEpsilon is added to vector lengths before dividing so a collapsed hand
// yields a zero vector instead of NaN.
const normEpsilon = 1e-4

// Orientation holds rotation angles in radians about the X (pitch),
// Y (yaw) and Z (roll) axes.
type Orientation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Estimator derives a rotation from the wrist to middle-knuckle vector of a
// hand.
// Yaw is the only free axis; pitch is damped and roll is fixed at zero.
type Estimator struct {
	// YawGain exaggerates the limited range of wrist rotation.
	YawGain float64
	// PitchGain damps up/down tilt for stability.
	PitchGain float64
}

// DefaultEstimator returns the tuned estimator.
func DefaultEstimator() Estimator {
	return Estimator{
		YawGain:   1.8,
		PitchGain: 0.3,
	}
}

// Estimate returns the orientation of hand.
func (e Estimator) Estimate(hand *detector.HandLandmarks) Orientation {
	wrist := hand.Points[detector.Wrist].Vec()
	forward := unit(r3.Sub(hand.Points[detector.MiddleMCP].Vec(), wrist))

	yaw := math.Atan2(forward.X, -forward.Z) * e.YawGain
	pitch := math.Atan2(forward.Y, math.Hypot(forward.X, forward.Z)) * e.PitchGain

	return Orientation{
		Pitch: pitch,
		Yaw:   yaw,
		Roll:  0,
	}
}

func unit(v r3.Vec) r3.Vec {
	return r3.Scale(1/(r3.Norm(v)+normEpsilon), v)
}
