package command

import (
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/playback"
)

var actions = map[gesture.Direction]playback.Action{
	gesture.Up:    playback.VolumeUp,
	gesture.Down:  playback.VolumeDown,
	gesture.Left:  playback.Previous,
	gesture.Right: playback.Next,
}

// ActionFor returns the playback action bound to dir. It returns false for
// gesture.None.
func ActionFor(dir gesture.Direction) (playback.Action, bool) {
	a, ok := actions[dir]
	return a, ok
}
