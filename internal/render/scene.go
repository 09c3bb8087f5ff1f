// Package render draws the per-tick scene: the rotating cube visualizer,
// the command puck and the now-playing text.
package render

import (
	"errors"
	"log"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/playback"
)

// ErrQuit is returned by a renderer when the user asks to exit.
var ErrQuit = errors.New("render: quit requested")

// Scene is everything a renderer needs for one tick.
type Scene struct {
	SessionID string    `json:"session_id"`
	Tick      uint64    `json:"tick"`
	Time      time.Time `json:"time"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	// Midline is the zone boundary as a fraction of the frame width.
	Midline float64 `json:"midline"`

	Rotation   gesture.Orientation `json:"rotation"`
	Visualizer r2.Vec              `json:"visualizer"`
	Command    r2.Vec              `json:"command"`

	// Active is the command accepted on this tick, or None.
	Active          gesture.Direction `json:"active"`
	VisualizerHand  bool              `json:"visualizer_hand"`
	CommandHand     bool              `json:"command_hand"`
	CommandsEnabled bool              `json:"commands_enabled"`

	Playback playback.State `json:"playback"`
}

// Renderer consumes one scene per tick. img is the current camera frame and
// may be nil when running without a camera preview.
type Renderer interface {
	Render(img *gocv.Mat, scene Scene) error
}

// Func adapts a function to Renderer.
type Func func(img *gocv.Mat, scene Scene) error

func (f Func) Render(img *gocv.Mat, scene Scene) error {
	return f(img, scene)
}

// Multi fans a scene out to several renderers.
type Multi []Renderer

// Render calls every renderer in order. The first ErrQuit is returned after
// all renderers ran; other errors are logged.
func (m Multi) Render(img *gocv.Mat, scene Scene) error {
	var quit error
	for _, r := range m {
		err := r.Render(img, scene)
		switch {
		case err == nil:
		case errors.Is(err, ErrQuit):
			if quit == nil {
				quit = err
			}
		default:
			log.Printf("Render error: %v", err)
		}
	}
	return quit
}
