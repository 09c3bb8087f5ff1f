// Package api provides the JSON endpoints of the Mudra control server.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

// privatePrefixes are settings that never leave the process, such as OAuth
// tokens.
var privatePrefixes = []string{"spotify."}

func isPrivate(key string) bool {
	for _, p := range privatePrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// SettingsHandler handles HTTP requests for settings resources.
type SettingsHandler struct {
	settings *store.Settings
}

// NewSettingsHandler creates a new SettingsHandler backed by settings.
func NewSettingsHandler(settings *store.Settings) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

type errorResponse struct {
	Error string `json:"error"`
}

type settingRequest struct {
	Value *string `json:"value"`
}

type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type listSettingsResponse struct {
	Keys []string `json:"keys"`
}

// ServeHTTP routes /api/settings and /api/settings/{key}.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings")
	key = strings.TrimPrefix(key, "/")

	if key == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w)
		return
	}

	if isPrivate(key) {
		writeError(w, http.StatusForbidden, "Setting is private")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, key)
	case http.MethodPut:
		h.put(w, r, key)
	case http.MethodDelete:
		h.delete(w, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) list(w http.ResponseWriter) {
	keys, err := h.settings.Keys()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}

	response := listSettingsResponse{Keys: make([]string, 0, len(keys))}
	for _, k := range keys {
		if !isPrivate(k) {
			response.Keys = append(response.Keys, k)
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *SettingsHandler) get(w http.ResponseWriter, key string) {
	value, err := h.settings.Get(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get setting")
		return
	}

	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: value})
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request, key string) {
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	if err := h.settings.Set(key, *req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}

	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: *req.Value})
}

func (h *SettingsHandler) delete(w http.ResponseWriter, key string) {
	if err := h.settings.Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
