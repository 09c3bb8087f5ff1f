// Package config loads Mudra settings from MUDRA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/smooth"
)

// Prefix is prepended to every environment variable name.
const Prefix = "MUDRA_"

// Playback backend names.
const (
	BackendSpotify = "spotify"
	BackendPlugin  = "plugin"
	BackendNone    = "none"
)

// Config is the full application configuration.
type Config struct {
	CameraID int  `env:"CAMERA_ID" envDefault:"0"`
	Width    int  `env:"WIDTH" envDefault:"1280"`
	Height   int  `env:"HEIGHT" envDefault:"720"`
	FPS      int  `env:"FPS" envDefault:"30"`
	Mirror   bool `env:"MIRROR" envDefault:"true"`

	Midline             float64 `env:"MIDLINE" envDefault:"0.5"`
	YawGain             float64 `env:"YAW_GAIN" envDefault:"1.8"`
	PitchGain           float64 `env:"PITCH_GAIN" envDefault:"0.3"`
	RotationSensitivity float64 `env:"ROTATION_SENSITIVITY" envDefault:"1.2"`
	RotationSmoothing   float64 `env:"ROTATION_SMOOTHING" envDefault:"0.08"`
	VisualizerSmoothing float64 `env:"VISUALIZER_SMOOTHING" envDefault:"0.15"`
	CommandSmoothing    float64 `env:"COMMAND_SMOOTHING" envDefault:"0.15"`
	GestureThreshold    float64 `env:"GESTURE_THRESHOLD" envDefault:"0.12"`
	MovementThreshold   float64 `env:"MOVEMENT_THRESHOLD" envDefault:"0.05"`
	DominanceRatio      float64 `env:"DOMINANCE_RATIO" envDefault:"1.5"`

	Cooldown        time.Duration `env:"COOLDOWN" envDefault:"500ms"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"1s"`
	SettleDelay     time.Duration `env:"SETTLE_DELAY" envDefault:"300ms"`
	VolumeStep      int           `env:"VOLUME_STEP" envDefault:"10"`

	Backend             string `env:"BACKEND" envDefault:"none"`
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRedirectURL  string `env:"SPOTIFY_REDIRECT_URL" envDefault:"http://localhost:8888/callback"`

	PluginDir     string        `env:"PLUGIN_DIR" envDefault:"~/.mudra/plugins"`
	Plugin        string        `env:"PLUGIN" envDefault:"system-control"`
	PluginTimeout time.Duration `env:"PLUGIN_TIMEOUT" envDefault:"5s"`

	DataDir   string `env:"DATA_DIR" envDefault:"~/.mudra"`
	Addr      string `env:"ADDR" envDefault:"localhost:8888"`
	StaticDir string `env:"STATIC_DIR"`
	Window    bool   `env:"WINDOW" envDefault:"true"`
	Tray      bool   `env:"TRAY" envDefault:"false"`

	MaxHands       int     `env:"MAX_HANDS" envDefault:"2"`
	MinConfidence  float64 `env:"MIN_CONFIDENCE" envDefault:"0.7"`
	DetectorScript string  `env:"DETECTOR_SCRIPT"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads the configuration from vars, keyed by full variable name.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.PluginDir = expandHome(cfg.PluginDir)
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.DetectorScript = expandHome(cfg.DetectorScript)
	cfg.StaticDir = expandHome(cfg.StaticDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks ranges and cross-field requirements.
func (c Config) Validate() error {
	var errs []error

	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("frame size %dx%d must be positive", c.Width, c.Height))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps %d must be positive", c.FPS))
	}
	if c.Midline <= 0 || c.Midline >= 1 {
		errs = append(errs, fmt.Errorf("midline %g must be in (0, 1)", c.Midline))
	}

	for name, f := range map[string]float64{
		"rotation smoothing":   c.RotationSmoothing,
		"visualizer smoothing": c.VisualizerSmoothing,
		"command smoothing":    c.CommandSmoothing,
	} {
		if err := smooth.CheckFactor(f); err != nil {
			errs = append(errs, fmt.Errorf("%s %g: %w", name, f, err))
		}
	}

	if c.GestureThreshold <= 0 {
		errs = append(errs, fmt.Errorf("gesture threshold %g must be positive", c.GestureThreshold))
	}
	if c.MovementThreshold < 0 {
		errs = append(errs, fmt.Errorf("movement threshold %g must not be negative", c.MovementThreshold))
	}
	if c.DominanceRatio < 1 {
		errs = append(errs, fmt.Errorf("dominance ratio %g must be at least 1", c.DominanceRatio))
	}
	if c.Cooldown <= 0 {
		errs = append(errs, fmt.Errorf("cooldown %s must be positive", c.Cooldown))
	}
	if c.VolumeStep <= 0 || c.VolumeStep > 100 {
		errs = append(errs, fmt.Errorf("volume step %d must be in [1, 100]", c.VolumeStep))
	}
	if c.MaxHands < 1 {
		errs = append(errs, fmt.Errorf("max hands %d must be at least 1", c.MaxHands))
	}

	switch c.Backend {
	case BackendNone, BackendPlugin:
	case BackendSpotify:
		if c.SpotifyClientID == "" || c.SpotifyClientSecret == "" {
			errs = append(errs, errors.New("spotify backend needs MUDRA_SPOTIFY_CLIENT_ID and MUDRA_SPOTIFY_CLIENT_SECRET"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}

	return errors.Join(errs...)
}

// Camera returns the capture settings.
func (c Config) Camera() capture.Config {
	return capture.Config{
		DeviceID: c.CameraID,
		Width:    c.Width,
		Height:   c.Height,
		FPS:      c.FPS,
		Mirror:   c.Mirror,
	}
}

// Detector returns the landmark detector settings.
func (c Config) Detector() detector.Config {
	cfg := detector.DefaultConfig()
	cfg.MaxHands = c.MaxHands
	cfg.MinConfidence = c.MinConfidence
	cfg.Script = c.DetectorScript
	return cfg
}

// Session returns the per-frame interpretation settings.
func (c Config) Session() app.SessionConfig {
	return app.SessionConfig{
		Router:    gesture.Router{Midline: c.Midline},
		Estimator: gesture.Estimator{YawGain: c.YawGain, PitchGain: c.PitchGain},
		Classifier: gesture.Classifier{
			MovementThreshold: c.MovementThreshold,
			GestureThreshold:  c.GestureThreshold,
			DominanceRatio:    c.DominanceRatio,
		},
		RotationSensitivity: c.RotationSensitivity,
		RotationSmoothing:   c.RotationSmoothing,
		VisualizerSmoothing: c.VisualizerSmoothing,
		CommandSmoothing:    c.CommandSmoothing,
		Cooldown:            c.Cooldown,
		Width:               c.Width,
		Height:              c.Height,
	}
}

// Spotify returns the Spotify controller settings.
func (c Config) Spotify() playback.SpotifyConfig {
	return playback.SpotifyConfig{
		ClientID:     c.SpotifyClientID,
		ClientSecret: c.SpotifyClientSecret,
		RedirectURL:  c.SpotifyRedirectURL,
		VolumeStep:   c.VolumeStep,
	}
}
