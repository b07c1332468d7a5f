package api

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"

	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/log"
)

// ChallengeHandler serves the challenge catalog.
type ChallengeHandler struct {
	registry *choreo.Registry
}

// NewChallengeHandler creates a new ChallengeHandler over registry.
func NewChallengeHandler(registry *choreo.Registry) *ChallengeHandler {
	return &ChallengeHandler{registry: registry}
}

// ServeHTTP routes:
//
//	GET  /api/challenges
//	POST /api/challenges           authored challenge JSON
//	POST /api/challenges/generate  procedural challenge
//	GET  /api/challenges/{id}?difficulty=HARD
func (h *ChallengeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/challenges")

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.list(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.create(w, r)
	case len(parts) == 1 && parts[0] == "generate" && r.Method == http.MethodPost:
		h.generate(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, r, parts[0])
	case len(parts) <= 1:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

type challengeSummary struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Category        choreo.Category `json:"category,omitempty"`
	BPM             int             `json:"bpm,omitempty"`
	Steps           int             `json:"steps"`
	TotalDurationMs int64           `json:"total_duration_ms"`
}

type listChallengesResponse struct {
	Challenges   []challengeSummary  `json:"challenges"`
	Difficulties []choreo.Difficulty `json:"difficulties"`
}

type challengeResponse struct {
	Difficulty choreo.Difficulty `json:"difficulty"`
	Modifier   choreo.Modifier   `json:"modifier"`
	Challenge  choreo.Challenge  `json:"challenge"`
}

type generateRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	BPM        int    `json:"bpm"`
	Bars       int    `json:"bars"`
	Complexity int    `json:"complexity"`
	Seed       uint64 `json:"seed"`
}

func toSummary(c choreo.Challenge) challengeSummary {
	return challengeSummary{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		Category:        c.Category,
		BPM:             c.BPM,
		Steps:           len(c.Steps),
		TotalDurationMs: c.TotalDuration.Milliseconds(),
	}
}

func (h *ChallengeHandler) list(w http.ResponseWriter, r *http.Request) {
	challenges := h.registry.List()
	response := listChallengesResponse{
		Challenges:   make([]challengeSummary, 0, len(challenges)),
		Difficulties: choreo.Difficulties,
	}
	for _, c := range challenges {
		response.Challenges = append(response.Challenges, toSummary(c))
	}
	writeJSON(w, http.StatusOK, response)
}

// get returns the challenge as it plays at the requested difficulty.
func (h *ChallengeHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	d, err := choreo.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid difficulty")
		return
	}

	c, err := h.registry.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Challenge not found")
		return
	}

	writeJSON(w, http.StatusOK, challengeResponse{
		Difficulty: d,
		Modifier:   d.Modifier(),
		Challenge:  c.Scaled(d),
	})
}

func (h *ChallengeHandler) create(w http.ResponseWriter, r *http.Request) {
	c, err := choreo.LoadJSON(r.Body)
	if err != nil {
		if errors.Is(err, choreo.ErrInvalidChallenge) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.register(w, c)
}

func (h *ChallengeHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := choreo.Generate(choreo.GenerateOptions{
		ID:         req.ID,
		Name:       req.Name,
		BPM:        req.BPM,
		Bars:       req.Bars,
		Complexity: req.Complexity,
		Rand:       rand.New(rand.NewPCG(req.Seed, req.Seed)),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.register(w, c)
}

func (h *ChallengeHandler) register(w http.ResponseWriter, c choreo.Challenge) {
	if err := h.registry.Register(c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Info("challenge registered", "id", c.ID, "steps", len(c.Steps))
	writeJSON(w, http.StatusCreated, challengeResponse{
		Difficulty: choreo.Normal,
		Modifier:   choreo.Normal.Modifier(),
		Challenge:  c,
	})
}
