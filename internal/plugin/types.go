// Package plugin discovers external hook programs and runs them when a
// session event fires.
package plugin

import (
	"encoding/json"
	"slices"

	"github.com/ayusman/flinch/internal/engine"
	"github.com/ayusman/flinch/internal/progression"
)

// Hook events.
const (
	EventRunComplete = "run_complete"
	EventAchievement = "achievement_unlocked"
)

// Manifest describes a plugin and the events it subscribes to.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
	// Config is passed through to the plugin untouched.
	Config json.RawMessage `json:"config,omitempty"`
}

// Subscribes reports whether the manifest lists event.
func (m Manifest) Subscribes(event string) bool {
	return slices.Contains(m.Events, event)
}

// Request is written to the plugin's stdin as JSON.
type Request struct {
	Event    string                    `json:"event"`
	Run      *engine.Summary           `json:"run,omitempty"`
	Progress *progression.Progress     `json:"progress,omitempty"`
	Unlocked []progression.Achievement `json:"unlocked,omitempty"`
	Config   json.RawMessage           `json:"config,omitempty"`
}

// Response is read from the plugin's stdout.
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
