package api

import (
	"net/http"

	"github.com/ayusman/flinch/internal/progression"
	"github.com/ayusman/flinch/internal/store"
)

// ProgressHandler serves the player's level, mastery and achievements.
type ProgressHandler struct {
	store *store.Store
}

// NewProgressHandler creates a new ProgressHandler with the given store.
func NewProgressHandler(s *store.Store) *ProgressHandler {
	return &ProgressHandler{store: s}
}

type masteryResponse struct {
	Runs        int   `json:"runs"`
	PerfectRuns int   `json:"perfect_runs"`
	BestTimeMs  int64 `json:"best_time_ms,omitempty"`
}

type achievementResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Tier        progression.Tier `json:"tier"`
	Unlocked    bool             `json:"unlocked"`
	UnlockedAt  string           `json:"unlocked_at,omitempty"`
}

type statsResponse struct {
	MaxCombo         int   `json:"max_combo"`
	MaxPerfectsInRun int   `json:"max_perfects_in_run"`
	TotalHits        int   `json:"total_hits"`
	PerfectHits      int   `json:"perfect_hits"`
	TotalGoods       int   `json:"total_goods"`
	TotalMisses      int   `json:"total_misses"`
	TotalPlayTimeMs  int64 `json:"total_play_time_ms"`
}

type progressResponse struct {
	Level         int                        `json:"level"`
	XP            int                        `json:"xp"`
	NextLevelXP   int                        `json:"next_level_xp"`
	RunsCompleted int                        `json:"runs_completed"`
	DailyStreak   int                        `json:"daily_streak"`
	LastPlayed    string                     `json:"last_played,omitempty"`
	Stats         statsResponse              `json:"stats"`
	Mastery       map[string]masteryResponse `json:"mastery"`
	Achievements  []achievementResponse      `json:"achievements"`
}

// ServeHTTP handles GET /api/progress. Achievements list the whole catalog,
// unlocked or not.
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p, err := h.store.Progress().Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}

	response := progressResponse{
		Level:         p.Level,
		XP:            p.XP,
		NextLevelXP:   p.Level * progression.XPPerLevel,
		RunsCompleted: p.RunsCompleted,
		DailyStreak:   p.DailyStreak,
		LastPlayed:    formatTime(p.LastPlayed),
		Stats: statsResponse{
			MaxCombo:         p.Stats.MaxCombo,
			MaxPerfectsInRun: p.Stats.MaxPerfectsInRun,
			TotalHits:        p.Stats.TotalHits,
			PerfectHits:      p.Stats.PerfectHits,
			TotalGoods:       p.Stats.TotalGoods,
			TotalMisses:      p.Stats.TotalMisses,
			TotalPlayTimeMs:  p.Stats.TotalPlayTime.Milliseconds(),
		},
		Mastery: make(map[string]masteryResponse, len(p.Mastery)),
	}
	for id, m := range p.Mastery {
		response.Mastery[id] = masteryResponse{
			Runs:        m.Runs,
			PerfectRuns: m.PerfectRuns,
			BestTimeMs:  m.BestTime.Milliseconds(),
		}
	}

	unlocked := make(map[string]progression.Achievement, len(p.Achievements))
	for _, a := range p.Achievements {
		unlocked[a.ID] = a
	}
	for _, a := range progression.Catalog() {
		item := achievementResponse{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Tier:        a.Tier,
		}
		if got, ok := unlocked[a.ID]; ok {
			item.Unlocked = true
			item.UnlockedAt = formatTime(got.UnlockedAt)
		}
		response.Achievements = append(response.Achievements, item)
	}

	writeJSON(w, http.StatusOK, response)
}
