// Package progression turns finished runs into player experience, levels,
// per-challenge mastery and achievements.
package progression

import (
	"maps"
	"math"
	"slices"
	"time"

	"github.com/ayusman/flinch/internal/engine"
)

const (
	// XPPerLevel is the experience needed for each level.
	XPPerLevel = 1500
	// ScorePerXP converts run score into experience.
	ScorePerXP = 5
)

// Stats are lifetime totals and high-water marks.
type Stats struct {
	MaxCombo         int           `json:"max_combo"`
	MaxPerfectsInRun int           `json:"max_perfects_in_run"`
	TotalHits        int           `json:"total_hits"`
	PerfectHits      int           `json:"perfect_hits"`
	TotalGoods       int           `json:"total_goods"`
	TotalMisses      int           `json:"total_misses"`
	TotalPlayTime    time.Duration `json:"total_play_time"`
}

// Mastery tracks one challenge.
type Mastery struct {
	Runs        int `json:"runs"`
	PerfectRuns int `json:"perfect_runs"`
	// BestTime is the fastest cleared run; zero until one is cleared.
	BestTime time.Duration `json:"best_time"`
}

// Progress is the persistent state of one player.
type Progress struct {
	Level         int                `json:"level"`
	XP            int                `json:"xp"`
	RunsCompleted int                `json:"runs_completed"`
	DailyStreak   int                `json:"daily_streak"`
	LastPlayed    time.Time          `json:"last_played"`
	Stats         Stats              `json:"stats"`
	Mastery       map[string]Mastery `json:"mastery"`
	Achievements  []Achievement      `json:"achievements"`
}

// NewProgress returns the progress of a new player.
func NewProgress() Progress {
	return Progress{
		Level:   1,
		Mastery: make(map[string]Mastery),
	}
}

// Clone returns a deep copy of p.
func (p Progress) Clone() Progress {
	p.Mastery = maps.Clone(p.Mastery)
	if p.Mastery == nil {
		p.Mastery = make(map[string]Mastery)
	}
	p.Achievements = slices.Clone(p.Achievements)
	return p
}

// HasAchievement reports whether id is unlocked.
func (p Progress) HasAchievement(id string) bool {
	return slices.ContainsFunc(p.Achievements, func(a Achievement) bool { return a.ID == id })
}

// LevelFor returns the level reached with xp experience.
func LevelFor(xp int) int {
	return xp/XPPerLevel + 1
}

// Apply folds run s into p and returns the new progress along with the
// achievements the run unlocked. p is not modified. Experience is the run
// score divided by ScorePerXP, scaled by the run's difficulty.
func Apply(p Progress, s engine.Summary) (Progress, []Achievement) {
	next := p.Clone()

	next.RunsCompleted++
	xp := float64(s.Score) / ScorePerXP * s.Difficulty.Modifier().XP
	next.XP += int(math.Round(xp))
	next.Level = LevelFor(next.XP)

	next.Stats.MaxCombo = max(next.Stats.MaxCombo, s.MaxCombo)
	next.Stats.MaxPerfectsInRun = max(next.Stats.MaxPerfectsInRun, s.Stats.Perfects)
	next.Stats.PerfectHits += s.Stats.Perfects
	next.Stats.TotalGoods += s.Stats.Goods
	next.Stats.TotalMisses += s.Stats.Misses
	next.Stats.TotalHits += s.Stats.Perfects + s.Stats.Goods + s.Stats.Misses
	next.Stats.TotalPlayTime += s.Elapsed

	m := next.Mastery[s.ChallengeID]
	m.Runs++
	if !s.GameOver {
		if s.Health >= 100 {
			m.PerfectRuns++
		}
		if m.BestTime == 0 || s.Elapsed < m.BestTime {
			m.BestTime = s.Elapsed
		}
	}
	next.Mastery[s.ChallengeID] = m

	next.DailyStreak = streak(p.LastPlayed, s.FinishedAt, p.DailyStreak)
	next.LastPlayed = s.FinishedAt

	unlocked := Evaluate(next, s.FinishedAt)
	next.Achievements = append(next.Achievements, unlocked...)

	return next, unlocked
}

// streak extends the daily streak when now falls on the calendar day after
// last, keeps it on the same day, and restarts it otherwise.
func streak(last, now time.Time, current int) int {
	if last.IsZero() {
		return 1
	}
	ly, lm, ld := last.Date()
	lastDay := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := now.In(last.Location()).Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)

	switch today.Sub(lastDay) {
	case 0:
		return max(current, 1)
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}
