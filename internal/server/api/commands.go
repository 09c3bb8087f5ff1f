package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// Toggle switches gesture commands on and off.
type Toggle interface {
	CommandsEnabled() bool
	SetCommandsEnabled(enabled bool)
}

// CommandsHandler exposes the command toggle at /api/commands. When a
// settings store is given the choice is remembered across runs.
type CommandsHandler struct {
	toggle   Toggle
	settings *store.Settings
}

// NewCommandsHandler creates a CommandsHandler. settings may be nil.
func NewCommandsHandler(toggle Toggle, settings *store.Settings) *CommandsHandler {
	return &CommandsHandler{toggle: toggle, settings: settings}
}

type commandsBody struct {
	Enabled *bool `json:"enabled"`
}

func (h *CommandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req commandsBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}

		h.toggle.SetCommandsEnabled(*req.Enabled)
		if h.settings != nil {
			if err := h.settings.Set(store.CommandsEnabledKey, strconv.FormatBool(*req.Enabled)); err != nil {
				log.Printf("Failed to save command toggle: %v", err)
			}
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	enabled := h.toggle.CommandsEnabled()
	writeJSON(w, http.StatusOK, commandsBody{Enabled: &enabled})
}

// PluginsHandler lists the discovered playback plugins at /api/plugins.
type PluginsHandler struct {
	manager *plugin.Manager
}

// NewPluginsHandler creates a PluginsHandler for manager.
func NewPluginsHandler(manager *plugin.Manager) *PluginsHandler {
	return &PluginsHandler{manager: manager}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type listPluginsResponse struct {
	Plugins []pluginResponse `json:"plugins"`
}

func (h *PluginsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plugins := h.manager.List()
	response := listPluginsResponse{Plugins: make([]pluginResponse, 0, len(plugins))}
	for _, p := range plugins {
		actions := p.Manifest.Actions
		if actions == nil {
			actions = []string{}
		}
		response.Plugins = append(response.Plugins, pluginResponse{
			Name:        p.Manifest.Name,
			Version:     p.Manifest.Version,
			Description: p.Manifest.Description,
			Actions:     actions,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
