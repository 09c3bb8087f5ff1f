package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/plugin"
)

// Plugin action names understood by media-control plugins.
const (
	PluginNext     = "media-next"
	PluginPrevious = "media-prev"
	PluginVolUp    = "volume-up"
	PluginVolDown  = "volume-down"
	PluginState    = "playback-state"
)

// PluginController drives playback through an external plugin executable.
type PluginController struct {
	plugin *plugin.Plugin
	exec   *plugin.Executor
	step   int
}

// NewPluginController returns a controller backed by the named plugin.
func NewPluginController(m *plugin.Manager, name string, exec *plugin.Executor, volumeStep int) (*PluginController, error) {
	p, err := m.Get(name)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", name, err)
	}
	if volumeStep <= 0 {
		volumeStep = DefaultVolumeStep
	}
	return &PluginController{plugin: p, exec: exec, step: volumeStep}, nil
}

// pluginState is the data payload of a playback-state response.
type pluginState struct {
	Track      string `json:"track"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMs int64  `json:"duration_ms"`
	PositionMs int64  `json:"position_ms"`
	Playing    bool   `json:"playing"`
	Volume     int    `json:"volume"`
	Player     string `json:"player"`
}

func (c *PluginController) Next(ctx context.Context) error {
	_, err := c.run(ctx, PluginNext, nil)
	return err
}

func (c *PluginController) Previous(ctx context.Context) error {
	_, err := c.run(ctx, PluginPrevious, nil)
	return err
}

func (c *PluginController) VolumeUp(ctx context.Context) error {
	_, err := c.run(ctx, PluginVolUp, c.stepParams())
	return err
}

func (c *PluginController) VolumeDown(ctx context.Context) error {
	_, err := c.run(ctx, PluginVolDown, c.stepParams())
	return err
}

// State asks the plugin for the current track. A plugin that lacks the
// playback-state action reports an available backend with no track.
func (c *PluginController) State(ctx context.Context) (State, error) {
	if !c.plugin.Supports(PluginState) {
		return State{Available: true, TrackName: NoTrack, Artist: NoArtist}, nil
	}

	data, err := c.run(ctx, PluginState, nil)
	if err != nil {
		return State{}, err
	}

	var ps pluginState
	if err := json.Unmarshal(data, &ps); err != nil {
		return State{}, fmt.Errorf("decode %s state: %w", c.plugin.Manifest.Name, err)
	}
	if ps.Track == "" {
		return State{}, ErrNoActiveDevice
	}

	return State{
		Available: true,
		TrackName: ps.Track,
		Artist:    ps.Artist,
		Album:     ps.Album,
		Duration:  time.Duration(ps.DurationMs) * time.Millisecond,
		Progress:  time.Duration(ps.PositionMs) * time.Millisecond,
		IsPlaying: ps.Playing,
		Volume:    ps.Volume,
		Device:    ps.Player,
	}, nil
}

func (c *PluginController) stepParams() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"step":%d}`, c.step))
}

func (c *PluginController) run(ctx context.Context, action string, params json.RawMessage) (json.RawMessage, error) {
	resp, err := c.exec.Execute(ctx, c.plugin, &plugin.Request{Action: action, Params: params})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s %s: %s", c.plugin.Manifest.Name, action, resp.Error)
	}
	return resp.Data, nil
}
