// Command system-control is a Mudra media plugin for macOS. It drives the
// Spotify desktop app (or another scriptable player) through AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Request is the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response is the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type config struct {
	App string `json:"app"`
}

type params struct {
	Step int `json:"step"`
}

// playerState mirrors the playback-state payload read by Mudra.
type playerState struct {
	Track      string `json:"track"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMs int64  `json:"duration_ms"`
	PositionMs int64  `json:"position_ms"`
	Playing    bool   `json:"playing"`
	Volume     int    `json:"volume"`
	Player     string `json:"player"`
}

// fieldSep separates the fields printed by the state script.
const fieldSep = "\x1f"

type handler func(app string, p params) (any, error)

var handlers = map[string]handler{
	"media-next":     func(app string, _ params) (any, error) { return nil, tell(app, "next track") },
	"media-prev":     func(app string, _ params) (any, error) { return nil, tell(app, "previous track") },
	"volume-up":      func(app string, p params) (any, error) { return nil, changeVolume(app, p.Step) },
	"volume-down":    func(app string, p params) (any, error) { return nil, changeVolume(app, -p.Step) },
	"playback-state": playbackState,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		write(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	h, ok := handlers[req.Action]
	if !ok {
		write(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	cfg := config{App: "Spotify"}
	if len(req.Config) > 0 {
		json.Unmarshal(req.Config, &cfg)
	}
	p := params{Step: 10}
	if len(req.Params) > 0 {
		json.Unmarshal(req.Params, &p)
	}

	data, err := h(cfg.App, p)
	if err != nil {
		write(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	write(Response{Success: true, Data: data})
}

func write(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) (string, error) {
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func tell(app, command string) error {
	_, err := runAppleScript(fmt.Sprintf(`tell application %q to %s`, app, command))
	return err
}

func changeVolume(app string, delta int) error {
	script := fmt.Sprintf(`tell application %q
	set v to (sound volume) + (%d)
	if v > 100 then set v to 100
	if v < 0 then set v to 0
	set sound volume to v
end tell`, app, delta)
	_, err := runAppleScript(script)
	return err
}

func playbackState(app string, _ params) (any, error) {
	script := fmt.Sprintf(`if application %[1]q is not running then return ""
tell application %[1]q
	set sep to ASCII character 31
	set t to current track
	return (name of t) & sep & (artist of t) & sep & (album of t) & sep & (duration of t) & sep & (player position) & sep & (player state as string) & sep & (sound volume)
end tell`, app)

	out, err := runAppleScript(script)
	if err != nil {
		return nil, err
	}

	state, err := parseState(out)
	if err != nil {
		return nil, err
	}
	state.Player = app
	return state, nil
}

// parseState decodes the state script output. Empty output means the player
// is not running and yields a state with no track.
func parseState(out string) (playerState, error) {
	if out == "" {
		return playerState{}, nil
	}

	fields := strings.Split(out, fieldSep)
	if len(fields) != 7 {
		return playerState{}, fmt.Errorf("unexpected state output %q", out)
	}

	duration, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return playerState{}, fmt.Errorf("parse duration: %w", err)
	}
	position, err := strconv.ParseFloat(strings.ReplaceAll(fields[4], ",", "."), 64)
	if err != nil {
		return playerState{}, fmt.Errorf("parse position: %w", err)
	}
	volume, err := strconv.Atoi(fields[6])
	if err != nil {
		return playerState{}, fmt.Errorf("parse volume: %w", err)
	}

	return playerState{
		Track:      fields[0],
		Artist:     fields[1],
		Album:      fields[2],
		DurationMs: duration,
		PositionMs: int64(position * 1000),
		Playing:    fields[5] == "playing",
		Volume:     volume,
	}, nil
}
