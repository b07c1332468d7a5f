package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/flinch/internal/app"
	"github.com/ayusman/flinch/internal/choreo"
)

// SessionController runs judging sessions. *app.App implements it.
type SessionController interface {
	StartSession(challengeID string, d choreo.Difficulty) (app.Snapshot, error)
	PauseSession() (app.Snapshot, error)
	ResumeSession() (app.Snapshot, error)
	StopSession() (app.Snapshot, error)
	Snapshot() (app.Snapshot, error)
}

// SessionHandler controls the active session.
type SessionHandler struct {
	sessions SessionController
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionController) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type startSessionRequest struct {
	ChallengeID string `json:"challenge_id"`
	Difficulty  string `json:"difficulty"`
}

// ServeHTTP routes GET and POST /api/session and POST /api/session/{pause,resume,stop}.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/session")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			h.respond(w, http.StatusOK)(h.sessions.Snapshot())
		case http.MethodPost:
			h.start(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}

	var control func() (app.Snapshot, error)
	switch parts[0] {
	case "pause":
		control = h.sessions.PauseSession
	case "resume":
		control = h.sessions.ResumeSession
	case "stop":
		control = h.sessions.StopSession
	default:
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.respond(w, http.StatusOK)(control())
}

func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ChallengeID == "" {
		writeError(w, http.StatusBadRequest, "challenge_id is required")
		return
	}

	d, err := choreo.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid difficulty")
		return
	}

	h.respond(w, http.StatusCreated)(h.sessions.StartSession(req.ChallengeID, d))
}

// respond maps session errors onto status codes.
func (h *SessionHandler) respond(w http.ResponseWriter, status int) func(app.Snapshot, error) {
	return func(snap app.Snapshot, err error) {
		switch {
		case err == nil:
			writeJSON(w, status, snap)
		case errors.Is(err, app.ErrNoSession):
			writeError(w, http.StatusNotFound, "No session")
		case errors.Is(err, app.ErrSessionActive):
			writeError(w, http.StatusConflict, "A session is already active")
		case errors.Is(err, choreo.ErrUnknownChallenge):
			writeError(w, http.StatusNotFound, "Challenge not found")
		case errors.Is(err, choreo.ErrUnknownDifficulty):
			writeError(w, http.StatusBadRequest, "Invalid difficulty")
		default:
			writeError(w, http.StatusInternalServerError, "Session error")
		}
	}
}
