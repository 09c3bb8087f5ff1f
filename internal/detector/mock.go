package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands  []HandLandmarks
	err    error
	calls  int
	closed int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Close records the call for tests.
func (m *MockDetector) Close() error {
	m.closed++
	return nil
}

// Closed returns how many times Close has been called.
func (m *MockDetector) Closed() int {
	return m.closed
}

// OpenPalmLandmarks returns a right hand held upright in the middle of the
// frame with all fingers extended and the palm facing the camera.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: -0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: -0.02}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: -0.02}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: -0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: -0.03}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: -0.03}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: -0.04}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: -0.03}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: -0.03}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: -0.04}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: -0.03}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: -0.03}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: -0.04}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: -0.03}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: -0.03}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: -0.04}

	return landmarks
}

// PointingLandmarks returns an open palm whose palm center sits at (palmX,
// palmY) and whose index fingertip is offset from the wrist by (dx, dy).
// Negative dy points up in image coordinates.
func PointingLandmarks(palmX, palmY, dx, dy float64) HandLandmarks {
	base := OpenPalmLandmarks()
	palm := base.Palm()
	hand := base.Translate(palmX-palm.X, palmY-palm.Y)

	wrist := hand.Points[Wrist]
	hand.Points[IndexTip] = Point3D{X: wrist.X + dx, Y: wrist.Y + dy, Z: -0.04}

	return hand
}
