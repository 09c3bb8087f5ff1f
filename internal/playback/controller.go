// Package playback controls a remote music player and caches its state.
package playback

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnavailable is returned by the offline controller.
	ErrUnavailable = errors.New("playback backend unavailable")
	// ErrNoActiveDevice is returned when the backend has nothing playing.
	ErrNoActiveDevice = errors.New("no active playback device")
)

// Action is a discrete playback command.
type Action string

const (
	Next       Action = "next"
	Previous   Action = "previous"
	VolumeUp   Action = "volume-up"
	VolumeDown Action = "volume-down"
)

// Placeholder strings shown when no track information is known.
const (
	NoTrack  = "No Track"
	NoArtist = "No Artist"
)

// State is a snapshot of the player.
type State struct {
	Available bool          `json:"available"`
	TrackName string        `json:"track_name"`
	Artist    string        `json:"artist"`
	Album     string        `json:"album"`
	Duration  time.Duration `json:"duration"`
	Progress  time.Duration `json:"progress"`
	IsPlaying bool          `json:"is_playing"`
	Volume    int           `json:"volume"`
	Device    string        `json:"device,omitempty"`
}

// Title returns the track name or a placeholder.
func (s State) Title() string {
	if s.TrackName == "" {
		return NoTrack
	}
	return s.TrackName
}

// ArtistName returns the artist or a placeholder.
func (s State) ArtistName() string {
	if s.Artist == "" {
		return NoArtist
	}
	return s.Artist
}

// Controller is a playback backend. Every call may fail; callers treat a
// failure as a no-op for the current tick.
type Controller interface {
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	VolumeUp(ctx context.Context) error
	VolumeDown(ctx context.Context) error
	State(ctx context.Context) (State, error)
}

// Do runs action on c.
func Do(ctx context.Context, c Controller, action Action) error {
	switch action {
	case Next:
		return c.Next(ctx)
	case Previous:
		return c.Previous(ctx)
	case VolumeUp:
		return c.VolumeUp(ctx)
	case VolumeDown:
		return c.VolumeDown(ctx)
	default:
		return fmt.Errorf("unknown playback action %q", action)
	}
}

// ChangesTrack reports whether action moves to a different track.
func (a Action) ChangesTrack() bool {
	return a == Next || a == Previous
}

// stepVolume adds delta to current, clamped to [0, 100].
func stepVolume(current, delta int) int {
	v := current + delta
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Unavailable is the controller used when no backend is configured or
// reachable. The visualizer keeps working; commands fail with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) Next(context.Context) error       { return ErrUnavailable }
func (Unavailable) Previous(context.Context) error   { return ErrUnavailable }
func (Unavailable) VolumeUp(context.Context) error   { return ErrUnavailable }
func (Unavailable) VolumeDown(context.Context) error { return ErrUnavailable }

// State returns an offline state with placeholder text.
func (Unavailable) State(context.Context) (State, error) {
	return State{TrackName: "No Spotify", Artist: "Not Connected"}, nil
}
