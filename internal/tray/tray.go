// Package tray provides a system tray menu for Mudra: a command toggle,
// the last accepted command, the current track and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/command"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/render"
)

// Tray represents the system tray application. It also implements
// render.Renderer so the tick loop can keep the menu current.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	last     string
	playing  string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuLast    *systray.MenuItem
	menuPlaying *systray.MenuItem
}

// New creates a new Tray with commands enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
		last:    lastTitle(gesture.None),
		playing: playingTitle(playback.State{}),
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback for the dashboard menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra gesture music control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture commands")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(t.last, "Last accepted command")
	t.menuLast.Disable()
	t.menuPlaying = systray.AddMenuItem(t.playing, "Current track")
	t.menuPlaying.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the live scene in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEnabled sets the toggle without firing the callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Render updates the menu from scene. The toggle follows the app's command
// state, which the dashboard can also change. Menu titles are only rewritten
// when their text changes.
func (t *Tray) Render(_ *gocv.Mat, scene render.Scene) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if scene.CommandsEnabled != t.enabled {
		t.enabled = scene.CommandsEnabled
		if t.menuToggle != nil {
			t.menuToggle.SetTitle(toggleTitle(t.enabled))
		}
	}

	if scene.Active != gesture.None {
		if title := lastTitle(scene.Active); title != t.last {
			t.last = title
			if t.menuLast != nil {
				t.menuLast.SetTitle(title)
			}
		}
	}

	if title := playingTitle(scene.Playback); title != t.playing {
		t.playing = title
		if t.menuPlaying != nil {
			t.menuPlaying.SetTitle(title)
		}
	}
	return nil
}

// Titles returns the current last-command and now-playing menu text.
func (t *Tray) Titles() (last, playing string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.playing
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Commands enabled"
	}
	return "○ Commands disabled"
}

func lastTitle(dir gesture.Direction) string {
	action, ok := command.ActionFor(dir)
	if !ok {
		return "Last: none"
	}
	return "Last: " + dir.String() + " (" + string(action) + ")"
}

func playingTitle(s playback.State) string {
	return "♪ " + render.Truncate(s.Title(), 30) + " · " + render.Truncate(s.ArtistName(), 20)
}
