package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/command"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/smooth"
)

// SessionConfig holds the tuning for one interpretation session.
type SessionConfig struct {
	Router     gesture.Router
	Estimator  gesture.Estimator
	Classifier gesture.Classifier

	// RotationSensitivity scales the estimated yaw before smoothing.
	RotationSensitivity float64

	RotationSmoothing   float64
	VisualizerSmoothing float64
	CommandSmoothing    float64

	Cooldown time.Duration

	// Width and Height are the frame size in pixels. Smoothed positions are
	// kept in pixel space.
	Width  int
	Height int
}

// DefaultSessionConfig returns the tuned settings for a 1280x720 frame.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Router:              gesture.DefaultRouter(),
		Estimator:           gesture.DefaultEstimator(),
		Classifier:          gesture.DefaultClassifier(),
		RotationSensitivity: 1.2,
		RotationSmoothing:   0.08,
		VisualizerSmoothing: 0.15,
		CommandSmoothing:    0.15,
		Cooldown:            command.DefaultCooldown,
		Width:               1280,
		Height:              720,
	}
}

// Result is the outcome of one session tick.
type Result struct {
	Rotation   gesture.Orientation
	Visualizer r2.Vec
	Command    r2.Vec

	// Direction is what the command hand pointed at this tick.
	Direction gesture.Direction
	// Accepted is set when Direction passed the debouncer, in which case
	// Action is the playback action to dispatch.
	Accepted bool
	Action   playback.Action

	VisualizerHand bool
	CommandHand    bool
}

// Active returns the accepted direction, or gesture.None.
func (r Result) Active() gesture.Direction {
	if r.Accepted {
		return r.Direction
	}
	return gesture.None
}

// Session carries the state that survives between frames: the three
// smoothed signals, the command cooldown and the previous command palm.
// It is not safe for concurrent use.
type Session struct {
	id     string
	config SessionConfig

	rotation   *smooth.Signal
	visualizer *smooth.Signal
	command    *smooth.Signal

	debouncer *command.Debouncer
	prevPalm  *r2.Vec
	commands  bool
}

// NewSession returns a session with rotation at rest and both positions at
// their default screen locations.
func NewSession(config SessionConfig) (*Session, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("frame size %dx%d must be positive", config.Width, config.Height)
	}

	rotation, err := smooth.New(config.RotationSmoothing, 0, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("rotation: %w", err)
	}
	visualizer, err := smooth.New(config.VisualizerSmoothing, 200, 200)
	if err != nil {
		return nil, fmt.Errorf("visualizer position: %w", err)
	}
	cmd, err := smooth.New(config.CommandSmoothing, float64(config.Width-200), float64(config.Height)/2)
	if err != nil {
		return nil, fmt.Errorf("command position: %w", err)
	}

	return &Session{
		id:         uuid.NewString(),
		config:     config,
		rotation:   rotation,
		visualizer: visualizer,
		command:    cmd,
		debouncer:  command.NewDebouncer(config.Cooldown),
		commands:   true,
	}, nil
}

// ID returns the random session identifier.
func (s *Session) ID() string {
	return s.id
}

// Config returns the session settings.
func (s *Session) Config() SessionConfig {
	return s.config
}

// SetCommandsEnabled turns command dispatch on or off. The visualizer keeps
// tracking while commands are off.
func (s *Session) SetCommandsEnabled(enabled bool) {
	s.commands = enabled
}

// CommandsEnabled reports whether accepted gestures produce actions.
func (s *Session) CommandsEnabled() bool {
	return s.commands
}

// Tick interprets the hands seen in one frame. A zone without a hand keeps
// its last target, and every signal advances one step either way.
func (s *Session) Tick(hands []detector.HandLandmarks, now time.Time) Result {
	var (
		res     Result
		visHand *detector.HandLandmarks
		cmdHand *detector.HandLandmarks
	)

	// Later hands overwrite earlier ones in the same zone.
	for i := range hands {
		hand := &hands[i]
		if s.config.Router.Route(hand) == gesture.RoleVisualizer {
			visHand = hand
		} else {
			cmdHand = hand
		}
	}

	if visHand != nil {
		res.VisualizerHand = true
		o := s.config.Estimator.Estimate(visHand)
		s.rotation.SetTarget(o.Pitch, o.Yaw*s.config.RotationSensitivity, o.Roll)
		s.visualizer.SetTarget(s.pixels(visHand.Palm().Flat())...)
	}

	if cmdHand != nil {
		res.CommandHand = true
		dir, palm := s.config.Classifier.Classify(cmdHand, s.prevPalm)
		s.prevPalm = &palm
		s.command.SetTarget(s.pixels(palm)...)

		res.Direction = dir
		if s.commands && s.debouncer.Accept(dir, now) {
			res.Action, res.Accepted = command.ActionFor(dir)
		}
	}

	rot := s.rotation.Step()
	res.Rotation = gesture.Orientation{Pitch: rot[0], Yaw: rot[1], Roll: rot[2]}
	vis := s.visualizer.Step()
	res.Visualizer = r2.Vec{X: vis[0], Y: vis[1]}
	cmd := s.command.Step()
	res.Command = r2.Vec{X: cmd[0], Y: cmd[1]}

	return res
}

func (s *Session) pixels(p r2.Vec) []float64 {
	return []float64{p.X * float64(s.config.Width), p.Y * float64(s.config.Height)}
}
