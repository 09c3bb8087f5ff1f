package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func init() {
	// OpenCV windows and the tray both need the main thread.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	fmt.Println("Mudra - Hand Gesture Music Control")

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		return 1
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Printf("Failed to initialize store: %v", err)
		return 1
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	ctrl, spotify := newController(cfg, st, plugins)
	cache := playback.NewCache(ctrl, cfg.RefreshInterval, cfg.SettleDelay)

	var hands detector.Detector
	if mp, err := detector.NewMediaPipeDetector(cfg.Detector()); err == nil {
		hands = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), no hands will be detected", err)
		hands = detector.NewMockDetector()
	}

	hub := server.NewHub()
	renderers := render.Multi{hub}

	if cfg.Window && !cfg.Tray {
		window := render.NewWindow("Mudra")
		defer window.Close()
		renderers = append(renderers, window)
	}

	var menu *tray.Tray
	if cfg.Tray {
		menu = tray.New()
		renderers = append(renderers, menu)
	}

	a, err := app.New(app.Config{
		Camera:   capture.NewCamera(cfg.Camera()),
		Detector: hands,
		Playback: cache,
		Renderer: renderers,
		Session:  cfg.Session(),
		FPS:      cfg.FPS,
	})
	if err != nil {
		log.Printf("Failed to create app: %v", err)
		return 1
	}

	if enabled, ok := storedCommandsEnabled(st.Settings()); ok {
		a.SetCommandsEnabled(enabled)
		if menu != nil {
			menu.SetEnabled(enabled)
		}
	}

	srvCfg := server.Config{
		StaticDir: cfg.StaticDir,
		Hub:       hub,
		Settings:  st.Settings(),
		Plugins:   plugins,
		Commands:  a,
	}
	if srvCfg.StaticDir == "" {
		srvCfg.StaticDir = findWebDir()
	}
	if srvCfg.StaticDir != "" {
		fmt.Printf("Serving static files from: %s\n", srvCfg.StaticDir)
	}
	if spotify != nil {
		srvCfg.Auth = spotify
	}

	srv := server.New(srvCfg)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Printf("Server failed: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	if spotify != nil && !spotify.Authenticated() {
		log.Printf("Spotify not connected. Open http://%s/login to authorize", cfg.Addr)
	}

	if menu == nil {
		if err := a.Run(ctx); err != nil {
			log.Printf("Stopped: %v", err)
			return 1
		}
		return 0
	}

	return runWithTray(ctx, a, menu, st, "http://"+cfg.Addr+"/")
}

// runWithTray gives the main thread to the tray and runs the tick loop on a
// separate goroutine.
func runWithTray(ctx context.Context, a *app.App, menu *tray.Tray, st *store.Store, url string) int {
	menu.OnToggle(func(enabled bool) {
		a.SetCommandsEnabled(enabled)
		if err := st.Settings().Set(store.CommandsEnabledKey, strconv.FormatBool(enabled)); err != nil {
			log.Printf("Failed to save command toggle: %v", err)
		}
		log.Printf("Gesture commands enabled: %v", enabled)
	})
	menu.OnOpen(func() { openBrowser(url) })
	menu.OnQuit(a.Quit)

	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
		menu.Quit()
	}()

	menu.Run()
	a.Quit()

	if err := <-done; err != nil {
		log.Printf("Stopped: %v", err)
		return 1
	}
	return 0
}

// newController picks the playback backend. Setup failures fall back to the
// offline controller so the visualizer still runs.
func newController(cfg config.Config, st *store.Store, plugins *plugin.Manager) (playback.Controller, *playback.Spotify) {
	switch cfg.Backend {
	case config.BackendSpotify:
		sp, err := playback.NewSpotify(cfg.Spotify(), st.Tokens(store.SpotifyTokenKey))
		if err != nil {
			log.Printf("Spotify unavailable: %v", err)
			return playback.Unavailable{}, nil
		}
		log.Println("Using Spotify playback")
		return sp, sp

	case config.BackendPlugin:
		pc, err := playback.NewPluginController(plugins, cfg.Plugin, plugin.NewExecutor(cfg.PluginTimeout), cfg.VolumeStep)
		if err != nil {
			log.Printf("Playback plugin unavailable: %v", err)
			return playback.Unavailable{}, nil
		}
		log.Printf("Using playback plugin %s", cfg.Plugin)
		return pc, nil
	}

	log.Println("No playback backend configured")
	return playback.Unavailable{}, nil
}

// storedCommandsEnabled reads the saved command toggle. A missing or
// unreadable value reports false for ok and the default stays in effect.
func storedCommandsEnabled(settings settingsGetter) (enabled, ok bool) {
	v, err := settings.Get(store.CommandsEnabledKey)
	if err != nil {
		return false, false
	}
	enabled, err = strconv.ParseBool(v)
	if err != nil {
		log.Printf("Ignoring stored %s %q: %v", store.CommandsEnabledKey, v, err)
		return false, false
	}
	return enabled, true
}

type settingsGetter interface {
	Get(key string) (string, error)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		log.Printf("Dashboard: %s", url)
		return
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open %s: %v", url, err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
