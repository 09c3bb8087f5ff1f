// Package gesture turns hand landmarks into control signals: a rotation
// estimate for the visualizer hand, a cardinal direction for the command
// hand, and the zone each hand belongs to.
package gesture

import "fmt"

// Direction is a discrete pointing gesture.
type Direction int

const (
	// None means no gesture was recognized this frame.
	None Direction = iota
	Up
	Down
	Left
	Right
)

var directionNames = map[Direction]string{
	None:  "NONE",
	Up:    "UP",
	Down:  "DOWN",
	Left:  "LEFT",
	Right: "RIGHT",
}

// String returns the upper-case name of the direction.
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name produced by MarshalText.
func (d *Direction) UnmarshalText(text []byte) error {
	for dir, name := range directionNames {
		if name == string(text) {
			*d = dir
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", text)
}
