package render

import (
	"errors"
	"math"
	"testing"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/playback"
)

func TestMulti(t *testing.T) {
	var calls []string
	record := func(name string, err error) Renderer {
		return Func(func(*gocv.Mat, Scene) error {
			calls = append(calls, name)
			return err
		})
	}

	t.Run("all succeed", func(t *testing.T) {
		calls = nil
		m := Multi{record("a", nil), record("b", nil)}
		if err := m.Render(nil, Scene{}); err != nil {
			t.Errorf("Render() error = %v", err)
		}
		if len(calls) != 2 {
			t.Errorf("calls = %v", calls)
		}
	})

	t.Run("quit after all ran", func(t *testing.T) {
		calls = nil
		m := Multi{record("a", ErrQuit), record("b", errors.New("broken pipe")), record("c", nil)}
		if err := m.Render(nil, Scene{}); !errors.Is(err, ErrQuit) {
			t.Errorf("Render() error = %v, want ErrQuit", err)
		}
		if len(calls) != 3 {
			t.Errorf("calls = %v, want all three renderers", calls)
		}
	})

	t.Run("other errors swallowed", func(t *testing.T) {
		m := Multi{record("a", errors.New("closed"))}
		if err := m.Render(nil, Scene{}); err != nil {
			t.Errorf("Render() error = %v, want nil", err)
		}
	})
}

func TestStrands(t *testing.T) {
	s := NewStrands(8, 42)
	if s.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", s.Len())
	}

	for i := 0; i < 500; i++ {
		s.Step()
		for _, seg := range s.Segments() {
			for _, p := range seg {
				if math.Abs(p.X) > 1 || math.Abs(p.Y) > 1 || math.Abs(p.Z) > 1 {
					t.Fatalf("strand point %v left the cube", p)
				}
			}
		}
	}

	for _, st := range s.strands {
		if st.Progress < 0 || st.Progress >= 1 {
			t.Errorf("progress %f out of [0,1)", st.Progress)
		}
		if st.Speed < 0.01 || st.Speed > 0.03 {
			t.Errorf("speed %f out of [0.01,0.03]", st.Speed)
		}
	}
}

func TestStrands_Deterministic(t *testing.T) {
	a, b := NewStrands(3, 7), NewStrands(3, 7)
	a.Step()
	b.Step()
	if a.Segments()[0] != b.Segments()[0] {
		t.Error("same seed produced different strands")
	}
}

func TestDraw(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV drawing test in short mode")
	}

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 720, 1280, gocv.MatTypeCV8UC3)
	defer img.Close()

	Draw(&img, Scene{
		Width:           1280,
		Height:          720,
		Midline:         0.5,
		Rotation:        gesture.Orientation{Yaw: 0.4},
		Visualizer:      r2.Vec{X: 200, Y: 200},
		Command:         r2.Vec{X: 1080, Y: 360},
		Active:          gesture.Up,
		CommandsEnabled: true,
		Playback:        playback.State{Available: true, TrackName: "So What", Artist: "Miles Davis", IsPlaying: true},
	}, NewStrands(8, 1))

	if img.Cols() != 1280 || img.Rows() != 720 {
		t.Fatalf("canvas resized to %dx%d", img.Cols(), img.Rows())
	}
	// Divider at the midline.
	if px := img.GetVecbAt(400, 640); px[0] == 0 && px[1] == 0 && px[2] == 0 {
		t.Error("divider not drawn at the midline")
	}
	// Puck body at the command position.
	if px := img.GetVecbAt(360, 1080); px[0] == 0 && px[1] == 0 && px[2] == 0 {
		t.Error("puck not drawn at the command position")
	}
}
