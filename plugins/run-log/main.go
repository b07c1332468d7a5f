// Package main provides a hook plugin that appends every finished run and
// unlocked achievement to a JSON lines file.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Request is the input from the plugin executor.
type Request struct {
	Event    string          `json:"event"`
	Run      json.RawMessage `json:"run"`
	Unlocked json.RawMessage `json:"unlocked"`
	Config   json.RawMessage `json:"config"`
}

// Response is the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config selects the log file. Relative paths resolve against the plugin
// directory, which is the working directory the executor sets.
type Config struct {
	Path string `json:"path"`
}

type entry struct {
	Event    string          `json:"event"`
	LoggedAt time.Time       `json:"logged_at"`
	Run      json.RawMessage `json:"run,omitempty"`
	Unlocked json.RawMessage `json:"unlocked,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	cfg := Config{Path: "runs.jsonl"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}

	e := entry{Event: req.Event, LoggedAt: time.Now().UTC()}
	switch req.Event {
	case "run_complete":
		if len(req.Run) == 0 {
			writeErrorResponse("run_complete without a run")
			return
		}
		e.Run = req.Run
	case "achievement_unlocked":
		e.Unlocked = req.Unlocked
	default:
		writeErrorResponse(fmt.Sprintf("unknown event: %s", req.Event))
		return
	}

	if err := appendEntry(cfg.Path, e); err != nil {
		writeErrorResponse(err.Error())
		return
	}

	data, _ := json.Marshal(map[string]string{"path": cfg.Path})
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

func appendEntry(path string, e entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(e)
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}
