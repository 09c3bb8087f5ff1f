package app

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/render"
)

// recorder is a playback.Controller that remembers the actions it ran.
type recorder struct {
	mu      sync.Mutex
	actions []playback.Action
	err     error
}

func (r *recorder) record(a playback.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	return r.err
}

func (r *recorder) Next(context.Context) error       { return r.record(playback.Next) }
func (r *recorder) Previous(context.Context) error   { return r.record(playback.Previous) }
func (r *recorder) VolumeUp(context.Context) error   { return r.record(playback.VolumeUp) }
func (r *recorder) VolumeDown(context.Context) error { return r.record(playback.VolumeDown) }

func (r *recorder) State(context.Context) (playback.State, error) {
	return playback.State{Available: true, TrackName: "Song", Artist: "Band", IsPlaying: true}, nil
}

func (r *recorder) Actions() []playback.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]playback.Action(nil), r.actions...)
}

// scenes collects rendered scenes and returns ErrQuit after limit ticks.
type scenes struct {
	limit int
	got   []render.Scene
	sizes []image.Point
}

func (s *scenes) Render(img *gocv.Mat, scene render.Scene) error {
	if img == nil || img.Empty() {
		return errors.New("renderer got no frame")
	}
	s.got = append(s.got, scene)
	s.sizes = append(s.sizes, image.Pt(img.Cols(), img.Rows()))
	if s.limit > 0 && len(s.got) >= s.limit {
		return render.ErrQuit
	}
	return nil
}

type fixture struct {
	camera   *capture.MockCamera
	detector *detector.MockDetector
	ctrl     *recorder
	scenes   *scenes
	app      *App
}

func newFixture(t *testing.T, loop bool, frames, limit int) *fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	f := &fixture{
		camera:   capture.NewMockCamera(capture.BlankFrames(frames, 64, 48), loop),
		detector: detector.NewMockDetector(),
		ctrl:     &recorder{},
		scenes:   &scenes{limit: limit},
	}
	t.Cleanup(f.camera.Release)

	a, err := New(Config{
		Camera:   f.camera,
		Detector: f.detector,
		Playback: playback.NewCache(f.ctrl, 0, 0),
		Renderer: f.scenes,
		Session:  DefaultSessionConfig(),
		FPS:      1000,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.app = a

	return f
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Config{Detector: detector.NewMockDetector(), Session: DefaultSessionConfig()}); err == nil {
		t.Error("expected error without camera")
	}
	if _, err := New(Config{Camera: capture.NewMockCamera(nil, false), Session: DefaultSessionConfig()}); err == nil {
		t.Error("expected error without detector")
	}

	cfg := DefaultSessionConfig()
	cfg.CommandSmoothing = 0
	if _, err := New(Config{Camera: capture.NewMockCamera(nil, false), Detector: detector.NewMockDetector(), Session: cfg}); err == nil {
		t.Error("expected error for invalid session config")
	}
}

func TestApp_Run_DispatchesOnce(t *testing.T) {
	f := newFixture(t, true, 1, 5)
	f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.8, 0.5, 0.02, -0.3)})

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	actions := f.ctrl.Actions()
	if len(actions) != 1 || actions[0] != playback.VolumeUp {
		t.Errorf("actions = %v, want [volume-up]", actions)
	}

	if len(f.scenes.got) != 5 {
		t.Fatalf("rendered %d scenes, want 5", len(f.scenes.got))
	}
	for i, scene := range f.scenes.got {
		if scene.Tick != uint64(i+1) {
			t.Errorf("scene %d tick = %d", i, scene.Tick)
		}
		want := gesture.None
		if i == 0 {
			want = gesture.Up
		}
		if scene.Active != want {
			t.Errorf("scene %d active = %v, want %v", i, scene.Active, want)
		}
		if scene.SessionID != f.app.Session().ID() {
			t.Errorf("scene %d session id = %q", i, scene.SessionID)
		}
	}

	if last := f.scenes.got[4]; last.Playback.TrackName != "Song" || !last.CommandHand {
		t.Errorf("last scene = %+v, want playback state and command hand", last)
	}

	if f.camera.Closes() != 1 || f.detector.Closed() != 1 {
		t.Errorf("closes = camera %d, detector %d, want 1 each", f.camera.Closes(), f.detector.Closed())
	}
}

func TestApp_Run_CameraFailure(t *testing.T) {
	f := newFixture(t, false, 2, 0)

	err := f.app.Run(context.Background())
	if !errors.Is(err, capture.ErrCameraRead) {
		t.Fatalf("Run() error = %v, want ErrCameraRead", err)
	}
	if len(f.scenes.got) != 2 {
		t.Errorf("rendered %d scenes before failure, want 2", len(f.scenes.got))
	}

	f.app.Close()
	if f.camera.Closes() != 1 || f.detector.Closed() != 1 {
		t.Errorf("closes = camera %d, detector %d, want 1 each", f.camera.Closes(), f.detector.Closed())
	}
}

func TestApp_Run_ContextCancelled(t *testing.T) {
	f := newFixture(t, true, 1, 0)

	ctx, cancel := context.WithCancel(context.Background())
	f.app.renderer = render.Func(func(img *gocv.Mat, scene render.Scene) error {
		if scene.Tick == 3 {
			cancel()
		}
		return nil
	})

	if err := f.app.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reads := f.camera.Reads(); reads != 3 {
		t.Errorf("camera reads = %d, want 3", reads)
	}
}

func TestApp_Quit(t *testing.T) {
	f := newFixture(t, true, 1, 0)

	f.app.renderer = render.Func(func(img *gocv.Mat, scene render.Scene) error {
		f.app.Quit()
		f.app.Quit()
		return nil
	})

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reads := f.camera.Reads(); reads != 1 {
		t.Errorf("camera reads = %d, want 1", reads)
	}
}

func TestApp_DetectorErrorMeansNoHands(t *testing.T) {
	f := newFixture(t, true, 1, 3)
	f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.8, 0.5, 0.02, -0.3)})
	f.detector.SetError(errors.New("model crashed"))

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, scene := range f.scenes.got {
		if scene.CommandHand || scene.VisualizerHand {
			t.Errorf("scene %d reports hands after detector error", i)
		}
	}
	if actions := f.ctrl.Actions(); len(actions) != 0 {
		t.Errorf("actions = %v, want none", actions)
	}
}

func TestApp_CommandsDisabled(t *testing.T) {
	f := newFixture(t, true, 1, 3)
	f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.8, 0.5, 0.02, -0.3)})
	f.app.SetCommandsEnabled(false)

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if actions := f.ctrl.Actions(); len(actions) != 0 {
		t.Errorf("actions = %v, want none", actions)
	}
	if f.scenes.got[0].CommandsEnabled {
		t.Error("scene reports commands enabled")
	}
}

func TestApp_PlaybackErrorKeepsRunning(t *testing.T) {
	f := newFixture(t, true, 1, 3)
	f.ctrl.err = errors.New("player offline")
	f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.8, 0.5, 0.3, 0.02)})

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(f.scenes.got) != 3 {
		t.Errorf("rendered %d scenes, want 3", len(f.scenes.got))
	}
	if actions := f.ctrl.Actions(); len(actions) != 1 || actions[0] != playback.Next {
		t.Errorf("actions = %v, want [next]", actions)
	}
}

func TestApp_FramesScaledToSession(t *testing.T) {
	f := newFixture(t, true, 1, 2)
	f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.8, 0.5, 0.02, -0.3)})

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cfg := f.app.Session().Config()
	want := image.Pt(cfg.Width, cfg.Height)
	for i, size := range f.scenes.sizes {
		if size != want {
			t.Errorf("frame %d reached renderer at %v, want %v", i, size, want)
		}
	}

	// The command puck follows the palm inside the frame.
	last := f.scenes.got[len(f.scenes.got)-1]
	if last.Command.X < 0 || last.Command.X >= float64(want.X) || last.Command.Y < 0 || last.Command.Y >= float64(want.Y) {
		t.Errorf("command puck %v outside %v frame", last.Command, want)
	}
}
