package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/engine"
	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/store"
	"github.com/ayusman/flinch/internal/target"
)

// RunHandler serves recorded runs and their replays.
type RunHandler struct {
	store *store.Store
}

// NewRunHandler creates a new RunHandler with the given store.
func NewRunHandler(s *store.Store) *RunHandler {
	return &RunHandler{store: s}
}

// ServeHTTP routes:
//
//	GET    /api/runs?limit=N&challenge=ID
//	GET    /api/runs/{id}
//	DELETE /api/runs/{id}
//	GET    /api/runs/{id}/replay
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/runs")

	switch len(parts) {
	case 0:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodDelete:
			h.delete(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case 2:
		if parts[1] != "replay" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.replay(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

type runResponse struct {
	ID          string            `json:"id"`
	ChallengeID string            `json:"challenge_id"`
	Difficulty  choreo.Difficulty `json:"difficulty"`
	Score       int               `json:"score"`
	MaxCombo    int               `json:"max_combo"`
	Stats       engine.Stats      `json:"stats"`
	Health      float64           `json:"health"`
	GameOver    bool              `json:"game_over"`
	Rank        engine.Rank       `json:"rank"`
	ElapsedMs   int64             `json:"elapsed_ms"`
	FinishedAt  string            `json:"finished_at"`
}

type listRunsResponse struct {
	Runs []runResponse `json:"runs"`
}

type keyframeResponse struct {
	TMs          int64         `json:"t_ms"`
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	Pose         pose.Pose     `json:"pose"`
	RequiredPose pose.Pose     `json:"required_pose,omitempty"`
	Target       target.Target `json:"target"`
	Hit          bool          `json:"hit"`
	Health       float64       `json:"health"`
}

type replayResponse struct {
	RunID  string             `json:"run_id"`
	Frames []keyframeResponse `json:"frames"`
}

func toRunResponse(s *engine.Summary) runResponse {
	return runResponse{
		ID:          s.ID,
		ChallengeID: s.ChallengeID,
		Difficulty:  s.Difficulty,
		Score:       s.Score,
		MaxCombo:    s.MaxCombo,
		Stats:       s.Stats,
		Health:      s.Health,
		GameOver:    s.GameOver,
		Rank:        s.Rank,
		ElapsedMs:   s.Elapsed.Milliseconds(),
		FinishedAt:  formatTime(s.FinishedAt),
	}
}

func (h *RunHandler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		runs []*engine.Summary
		err  error
	)
	if challengeID := query.Get("challenge"); challengeID != "" {
		runs, err = h.store.Runs().ListByChallenge(challengeID)
	} else {
		limit := 0
		if raw := query.Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
		}
		runs, err = h.store.Runs().List(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	response := listRunsResponse{Runs: make([]runResponse, 0, len(runs))}
	for _, s := range runs {
		response.Runs = append(response.Runs, toRunResponse(s))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *RunHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	run, err := h.store.Runs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(run))
}

func (h *RunHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Runs().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete run")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RunHandler) replay(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Runs().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}

	frames, err := h.store.Replays().Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get replay")
		return
	}

	response := replayResponse{RunID: id, Frames: make([]keyframeResponse, 0, len(frames))}
	for _, f := range frames {
		response.Frames = append(response.Frames, keyframeResponse{
			TMs:          f.T.Milliseconds(),
			X:            f.X,
			Y:            f.Y,
			Pose:         f.Pose,
			RequiredPose: f.RequiredPose,
			Target:       f.Target,
			Hit:          f.Hit,
			Health:       f.Health,
		})
	}
	writeJSON(w, http.StatusOK, response)
}
