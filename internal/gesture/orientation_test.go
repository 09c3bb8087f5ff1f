package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

const epsilon = 1e-9

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func TestEstimator_Estimate(t *testing.T) {
	e := DefaultEstimator()

	// The normalization epsilon shrinks unit vectors slightly, so angles
	// are compared with a loose tolerance.
	const tol = 1e-3

	tests := []struct {
		name      string
		forward   detector.Point3D
		wantYaw   float64
		wantPitch float64
	}{
		{
			name:    "pointing into the screen",
			forward: detector.Point3D{X: 0, Y: 0, Z: -0.1},
		},
		{
			name:    "turned right",
			forward: detector.Point3D{X: 0.1, Z: -0.1},
			wantYaw: math.Pi / 4 * 1.8,
		},
		{
			name:    "turned left",
			forward: detector.Point3D{X: -0.1, Z: -0.1},
			wantYaw: -math.Pi / 4 * 1.8,
		},
		{
			name:      "tilted up",
			forward:   detector.Point3D{Y: -0.1, Z: -0.1},
			wantPitch: -math.Pi / 4 * 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hand detector.HandLandmarks
			hand.Points[detector.Wrist] = detector.Point3D{X: 0.3, Y: 0.6, Z: 0}
			hand.Points[detector.MiddleMCP] = detector.Point3D{
				X: 0.3 + tt.forward.X,
				Y: 0.6 + tt.forward.Y,
				Z: tt.forward.Z,
			}

			got := e.Estimate(&hand)

			if math.Abs(got.Yaw-tt.wantYaw) > tol {
				t.Errorf("Yaw = %f, want %f", got.Yaw, tt.wantYaw)
			}
			if math.Abs(got.Pitch-tt.wantPitch) > tol {
				t.Errorf("Pitch = %f, want %f", got.Pitch, tt.wantPitch)
			}
			if got.Roll != 0 {
				t.Errorf("Roll = %f, want 0", got.Roll)
			}
		})
	}
}

func TestEstimator_DegenerateHandIsFinite(t *testing.T) {
	e := DefaultEstimator()

	tests := []struct {
		name   string
		offset detector.Point3D
	}{
		{name: "collapsed", offset: detector.Point3D{}},
		{name: "tiny", offset: detector.Point3D{X: 1e-12, Y: -1e-12, Z: 1e-12}},
		{name: "subnormal", offset: detector.Point3D{X: 5e-324}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hand detector.HandLandmarks
			for i := range hand.Points {
				hand.Points[i] = detector.Point3D{X: 0.4, Y: 0.4, Z: 0.01}
			}
			hand.Points[detector.MiddleMCP] = detector.Point3D{
				X: 0.4 + tt.offset.X,
				Y: 0.4 + tt.offset.Y,
				Z: 0.01 + tt.offset.Z,
			}

			got := e.Estimate(&hand)

			if !finite(got.Pitch) || !finite(got.Yaw) || !finite(got.Roll) {
				t.Errorf("Estimate() = %+v, want finite angles", got)
			}
		})
	}
}

func TestEstimator_Gains(t *testing.T) {
	var hand detector.HandLandmarks
	hand.Points[detector.MiddleMCP] = detector.Point3D{X: 0.1, Y: -0.05, Z: -0.1}

	base := Estimator{YawGain: 1, PitchGain: 1}.Estimate(&hand)
	scaled := DefaultEstimator().Estimate(&hand)

	if math.Abs(scaled.Yaw-base.Yaw*1.8) > epsilon {
		t.Errorf("scaled Yaw = %f, want %f", scaled.Yaw, base.Yaw*1.8)
	}
	if math.Abs(scaled.Pitch-base.Pitch*0.3) > epsilon {
		t.Errorf("scaled Pitch = %f, want %f", scaled.Pitch, base.Pitch*0.3)
	}
}
