// Package testdata holds scripted gesture scenarios for end-to-end tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/playback"
)

//go:embed scenarios/*.json
var scenariosFS embed.FS

// Hand describes one synthetic hand. Palm is the palm center, Point the
// index fingertip offset from the wrist and Turn, when set, the
// wrist-to-knuckle vector that gives the hand a rotation.
type Hand struct {
	Palm  [2]float64  `json:"palm"`
	Point [2]float64  `json:"point"`
	Turn  *[3]float64 `json:"turn,omitempty"`
}

// Landmarks builds the full landmark set for h.
func (h Hand) Landmarks() detector.HandLandmarks {
	hand := detector.PointingLandmarks(h.Palm[0], h.Palm[1], h.Point[0], h.Point[1])
	if h.Turn != nil {
		palm := hand.Palm()
		hand.Points[detector.Wrist] = detector.Point3D{
			X: palm.X - h.Turn[0],
			Y: palm.Y - h.Turn[1],
			Z: palm.Z - h.Turn[2],
		}
	}
	return hand
}

// Frame is the set of hands visible in one tick.
type Frame struct {
	Hands []Hand `json:"hands"`
}

// Landmarks returns the landmark sets of every hand in detector order.
func (f Frame) Landmarks() []detector.HandLandmarks {
	out := make([]detector.HandLandmarks, len(f.Hands))
	for i, h := range f.Hands {
		out[i] = h.Landmarks()
	}
	return out
}

// Scenario is a scripted sequence of frames and the playback actions it
// should produce.
type Scenario struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IntervalMs  int               `json:"interval_ms"`
	Frames      []Frame           `json:"frames"`
	Actions     []playback.Action `json:"actions"`
}

// Interval returns the time between frames.
func (s Scenario) Interval() time.Duration {
	return time.Duration(s.IntervalMs) * time.Millisecond
}

// LoadScenario loads a scenario by name.
func LoadScenario(name string) (Scenario, error) {
	data, err := scenariosFS.ReadFile("scenarios/" + name + ".json")
	if err != nil {
		return Scenario{}, fmt.Errorf("load scenario %s: %w", name, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario %s: %w", name, err)
	}
	if len(s.Frames) == 0 {
		return Scenario{}, fmt.Errorf("scenario %s has no frames", name)
	}
	return s, nil
}

// ScenarioNames lists the embedded scenarios.
func ScenarioNames() ([]string, error) {
	entries, err := scenariosFS.ReadDir("scenarios")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// ScriptDetector replays a scenario, one frame per Detect call. Once the
// script is exhausted it reports no hands.
type ScriptDetector struct {
	mu     sync.Mutex
	frames []Frame
	next   int
	closed int
}

// Detector returns a detector that replays s.
func (s Scenario) Detector() *ScriptDetector {
	return &ScriptDetector{frames: s.Frames}
}

func (d *ScriptDetector) Detect(*gocv.Mat) ([]detector.HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.next >= len(d.frames) {
		return nil, nil
	}
	f := d.frames[d.next]
	d.next++
	return f.Landmarks(), nil
}

func (d *ScriptDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

// Done reports whether every frame has been replayed.
func (d *ScriptDetector) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next >= len(d.frames)
}
