// Package server provides the local HTTP server for Mudra: health and state
// endpoints, the live scene WebSocket and the Spotify OAuth callback.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Authenticator runs an OAuth authorization-code flow.
type Authenticator interface {
	AuthURL() string
	HandleCallback(ctx context.Context, state, code string) error
}

// Config holds the server configuration. Every field is optional; routes
// whose collaborator is missing are not registered.
type Config struct {
	StaticDir string
	Hub       *Hub
	Auth      Authenticator
	Settings  *store.Settings
	Plugins   *plugin.Manager
	Commands  api.Toggle
}

// Server represents the HTTP server for the Mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time

	mu   sync.Mutex
	http *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Hub != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.Handle("/api/scene", s.config.Hub)
	}

	if s.config.Auth != nil {
		s.mux.HandleFunc("/login", s.handleLogin)
		s.mux.HandleFunc("/callback", s.handleCallback)
	}

	if s.config.Settings != nil {
		settings := api.NewSettingsHandler(s.config.Settings)
		s.mux.Handle("/api/settings", settings)
		s.mux.Handle("/api/settings/", settings)
	}

	if s.config.Commands != nil {
		s.mux.Handle("/api/commands", api.NewCommandsHandler(s.config.Commands, s.config.Settings))
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginsHandler(s.config.Plugins))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Hub != nil {
		response["clients"] = s.config.Hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleState returns the most recently rendered scene.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	scene, ok := s.config.Hub.Last()
	if !ok {
		http.Error(w, "No scene rendered yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(scene)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.config.Auth.AuthURL(), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		log.Printf("Spotify authorization denied: %s", reason)
		http.Error(w, "Authorization denied: "+reason, http.StatusBadRequest)
		return
	}

	err := s.config.Auth.HandleCallback(r.Context(), q.Get("state"), q.Get("code"))
	switch {
	case errors.Is(err, playback.ErrStateMismatch):
		http.Error(w, "Invalid authorization state", http.StatusBadRequest)
		return
	case err != nil:
		log.Printf("Spotify authorization failed: %v", err)
		http.Error(w, "Authorization failed", http.StatusInternalServerError)
		return
	}

	log.Println("Spotify authorization complete")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Spotify connected. You can close this tab.\n"))
}

// ListenAndServe starts the HTTP server on the given address. It returns nil
// once Shutdown has been called.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drops WebSocket clients and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.config.Hub != nil {
		s.config.Hub.Close()
	}

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
