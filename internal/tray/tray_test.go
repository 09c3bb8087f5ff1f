package tray

import (
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/render"
)

func TestNew(t *testing.T) {
	tr := New()

	if !tr.IsEnabled() {
		t.Error("expected commands enabled by default")
	}

	last, playing := tr.Titles()
	if last != "Last: none" {
		t.Errorf("last = %q", last)
	}
	if playing != "♪ No Track · No Artist" {
		t.Errorf("playing = %q", playing)
	}
}

func TestTray_Render(t *testing.T) {
	tr := New()

	scene := render.Scene{
		Active:   gesture.Left,
		Playback: playback.State{Available: true, TrackName: "Song", Artist: "Band"},
	}
	if err := tr.Render(nil, scene); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	last, playing := tr.Titles()
	if last != "Last: LEFT (previous)" {
		t.Errorf("last = %q", last)
	}
	if playing != "♪ Song · Band" {
		t.Errorf("playing = %q", playing)
	}

	// A tick without a command keeps the last one.
	scene.Active = gesture.None
	tr.Render(nil, scene)
	if last, _ := tr.Titles(); last != "Last: LEFT (previous)" {
		t.Errorf("last after idle tick = %q", last)
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New()

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}

	tr.SetEnabled(false)
	if tr.IsEnabled() {
		t.Error("SetEnabled(false) ignored")
	}
	if len(got) != 2 {
		t.Error("SetEnabled fired the toggle callback")
	}
}

func TestTray_RenderFollowsCommandState(t *testing.T) {
	tr := New()

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	// Commands switched off elsewhere, e.g. from the dashboard.
	if err := tr.Render(nil, render.Scene{CommandsEnabled: false}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if tr.IsEnabled() {
		t.Fatal("IsEnabled() = true after scene with commands disabled")
	}
	if len(got) != 0 {
		t.Errorf("Render fired the toggle callback: %v", got)
	}

	// One click turns them back on.
	tr.handleToggle()
	if len(got) != 1 || !got[0] {
		t.Errorf("toggle callbacks = %v, want [true]", got)
	}

	tr.Render(nil, render.Scene{CommandsEnabled: true})
	if !tr.IsEnabled() {
		t.Error("IsEnabled() = false after scene with commands enabled")
	}
}

func TestTray_Open(t *testing.T) {
	tr := New()
	opened := false
	tr.OnOpen(func() { opened = true })

	tr.handleOpen()

	if !opened {
		t.Error("open callback not called")
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		dir  gesture.Direction
		want string
	}{
		{gesture.Up, "Last: UP (volume-up)"},
		{gesture.Down, "Last: DOWN (volume-down)"},
		{gesture.Right, "Last: RIGHT (next)"},
		{gesture.None, "Last: none"},
	}
	for _, tt := range tests {
		if got := lastTitle(tt.dir); got != tt.want {
			t.Errorf("lastTitle(%v) = %q, want %q", tt.dir, got, tt.want)
		}
	}

	long := playback.State{TrackName: "An Extremely Long Track Name That Goes On", Artist: "Someone"}
	if got := playingTitle(long); len([]rune(got)) > 2+30+3+20 {
		t.Errorf("playingTitle not truncated: %q", got)
	}
	if toggleTitle(true) == toggleTitle(false) {
		t.Error("toggle titles must differ")
	}
}
