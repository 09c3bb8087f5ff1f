// Package plugin runs external media-control executables for Mudra.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// Each call starts the executable, writes one JSON Request to its stdin and
// reads one JSON Response from its stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// ManifestFile is the manifest file name inside a plugin directory.
const ManifestFile = "plugin.json"

// Manifest describes a plugin's metadata and the actions it accepts.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Actions     []string        `json:"actions"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Request is sent to a plugin on stdin.
type Request struct {
	Action string          `json:"action"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the manifest lists action.
func (p *Plugin) Supports(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}
