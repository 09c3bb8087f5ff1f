// Package app runs the Mudra tick loop: it reads camera frames, interprets
// the hands in them and drives playback and the renderers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/render"
)

// DefaultFPS is the target tick rate.
const DefaultFPS = 30

// Config holds the collaborators of the tick loop.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	// Playback defaults to an offline cache when nil.
	Playback *playback.Cache
	// Renderer may be nil for a headless run.
	Renderer render.Renderer
	Session  SessionConfig
	FPS      int
}

// App owns the camera and detector for the lifetime of Run.
type App struct {
	camera   capture.Camera
	detector detector.Detector
	playback *playback.Cache
	renderer render.Renderer
	session  *Session
	pacer    *Pacer

	enabled   atomic.Bool
	quit      chan struct{}
	quitOnce  sync.Once
	closeOnce sync.Once
	tick      uint64
}

// New creates an App from config. Camera and Detector are required.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, errors.New("app: camera is required")
	}
	if config.Detector == nil {
		return nil, errors.New("app: detector is required")
	}

	session, err := NewSession(config.Session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	cache := config.Playback
	if cache == nil {
		cache = playback.NewCache(playback.Unavailable{}, 0, 0)
	}
	renderer := config.Renderer
	if renderer == nil {
		renderer = render.Multi{}
	}

	a := &App{
		camera:   config.Camera,
		detector: config.Detector,
		playback: cache,
		renderer: renderer,
		session:  session,
		pacer:    NewPacer(config.FPS),
		quit:     make(chan struct{}),
	}
	a.enabled.Store(true)

	return a, nil
}

// SetCommandsEnabled enables or disables playback commands. It is safe to
// call from any goroutine.
func (a *App) SetCommandsEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

// CommandsEnabled reports whether playback commands are enabled.
func (a *App) CommandsEnabled() bool {
	return a.enabled.Load()
}

// Quit asks Run to return after the current tick. It is safe to call more
// than once and from any goroutine.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Session returns the interpretation session.
func (a *App) Session() *Session {
	return a.session
}

// Playback returns the metadata cache.
func (a *App) Playback() *playback.Cache {
	return a.playback
}

// Run opens the camera and ticks until ctx is cancelled, Quit is called or a
// renderer returns render.ErrQuit, all of which return nil. A camera read
// failure ends the loop with an error wrapping capture.ErrCameraRead.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		a.Close()
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.Close()

	log.Printf("Session %s started", a.session.ID())

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down")
			return nil
		case <-a.quit:
			log.Println("Quit requested")
			return nil
		default:
		}

		start := time.Now()
		err := a.Step(ctx, start)
		if errors.Is(err, render.ErrQuit) {
			log.Println("Window closed")
			return nil
		}
		if err != nil {
			return err
		}

		a.pacer.Wait(ctx, start)
	}
}

// Step runs a single tick at now.
func (a *App) Step(ctx context.Context, now time.Time) error {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	// Drawing works in the session's pixel space, whatever the device delivers.
	if cfg := a.session.Config(); frame.Cols() != cfg.Width || frame.Rows() != cfg.Height {
		fitted := capture.Fit(*frame, cfg.Width, cfg.Height)
		frame.Close()
		frame = &fitted
	}
	defer frame.Close()

	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Hand detection error: %v", err)
		hands = nil
	}

	a.session.SetCommandsEnabled(a.enabled.Load())
	res := a.session.Tick(hands, now)

	if res.Accepted {
		if err := a.playback.Do(ctx, res.Action, now); err != nil {
			log.Printf("Command %s failed: %v", res.Action, err)
		} else {
			log.Printf("Gesture %s: %s", res.Direction, res.Action)
		}
	}

	a.playback.Refresh(ctx, now)

	a.tick++
	return a.renderer.Render(frame, a.scene(res, now))
}

func (a *App) scene(res Result, now time.Time) render.Scene {
	cfg := a.session.Config()
	return render.Scene{
		SessionID:       a.session.ID(),
		Tick:            a.tick,
		Time:            now,
		Width:           cfg.Width,
		Height:          cfg.Height,
		Midline:         cfg.Router.Midline,
		Rotation:        res.Rotation,
		Visualizer:      res.Visualizer,
		Command:         res.Command,
		Active:          res.Active(),
		VisualizerHand:  res.VisualizerHand,
		CommandHand:     res.CommandHand,
		CommandsEnabled: a.session.CommandsEnabled(),
		Playback:        a.playback.State(),
	}
}

// Close releases the camera and detector. Only the first call has an effect.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	})
}
