package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/flinch/internal/choreo"
)

// Rank grades a finished run.
type Rank string

const (
	RankS Rank = "S"
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankF Rank = "F"
)

// RankFor grades g by its share of perfect judgments. Lost runs and runs
// with no judged steps rank F.
func RankFor(g GameState) Rank {
	if g.GameOver {
		return RankF
	}
	total := g.Stats.Perfects + g.Stats.Goods + g.Stats.Misses
	if total == 0 {
		return RankF
	}

	ratio := float64(g.Stats.Perfects) / float64(total)
	switch {
	case ratio > 0.95:
		return RankS
	case ratio > 0.8:
		return RankA
	case ratio > 0.6:
		return RankB
	default:
		return RankC
	}
}

// Summary is the post-run record handed to progression and persistence.
type Summary struct {
	ID          string            `json:"id"`
	ChallengeID string            `json:"challenge_id"`
	Difficulty  choreo.Difficulty `json:"difficulty"`
	Score       int               `json:"score"`
	MaxCombo    int               `json:"max_combo"`
	Stats       Stats             `json:"stats"`
	Health      float64           `json:"health"`
	GameOver    bool              `json:"game_over"`
	Rank        Rank              `json:"rank"`
	Elapsed     time.Duration     `json:"elapsed"`
	FinishedAt  time.Time         `json:"finished_at"`
}

// Summary builds the run record with a fresh id.
func (j *Judge) Summary() Summary {
	g := j.state.Game
	return Summary{
		ID:          uuid.NewString(),
		ChallengeID: j.challenge.ID,
		Difficulty:  j.difficulty,
		Score:       g.Score,
		MaxCombo:    g.MaxCombo,
		Stats:       g.Stats,
		Health:      g.Health,
		GameOver:    g.GameOver,
		Rank:        RankFor(g),
		Elapsed:     j.clock.Elapsed(),
		FinishedAt:  j.clock.Now(),
	}
}
