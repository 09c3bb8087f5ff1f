package gesture

import "github.com/ayusman/mudra/internal/detector"

// Role is the control role of a hand, decided by which side of the screen
// its palm is on.
type Role int

const (
	// RoleVisualizer hands steer the cube.
	RoleVisualizer Role = iota
	// RoleCommand hands issue playback commands.
	RoleCommand
)

// String returns a short name for logs.
func (r Role) String() string {
	if r == RoleVisualizer {
		return "visualizer"
	}
	return "command"
}

// Router splits the frame at a vertical midline.
type Router struct {
	// Midline is the split position as a fraction of frame width.
	Midline float64
}

// DefaultRouter splits the frame in half.
func DefaultRouter() Router {
	return Router{Midline: 0.5}
}

// Route returns RoleVisualizer for palms strictly left of the midline and
// RoleCommand otherwise, so a palm exactly on the midline is a command hand.
func (r Router) Route(hand *detector.HandLandmarks) Role {
	if hand.Palm().X < r.Midline {
		return RoleVisualizer
	}
	return RoleCommand
}
