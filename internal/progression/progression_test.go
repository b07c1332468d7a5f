package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/engine"
)

var day = time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC)

func summary(score int, opts ...func(*engine.Summary)) engine.Summary {
	s := engine.Summary{
		ID:          "run",
		ChallengeID: "LASER",
		Difficulty:  choreo.Normal,
		Score:       score,
		MaxCombo:    3,
		Stats:       engine.Stats{Perfects: 3, Goods: 1, Misses: 1},
		Health:      80,
		Rank:        engine.RankB,
		Elapsed:     12 * time.Second,
		FinishedAt:  day,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

func unlockedIDs(as []Achievement) []string {
	ids := make([]string, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestApply_ExperienceAndLevel(t *testing.T) {
	tests := []struct {
		name       string
		difficulty choreo.Difficulty
		score      int
		wantXP     int
	}{
		{"normal", choreo.Normal, 1000, 200},
		{"easy earns less", choreo.Easy, 1000, 140},
		{"extreme earns more", choreo.Extreme, 1000, 500},
		{"rounds", choreo.Normal, 12, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := Apply(NewProgress(), summary(tt.score, func(s *engine.Summary) { s.Difficulty = tt.difficulty }))
			assert.Equal(t, tt.wantXP, p.XP)
			assert.Equal(t, 1, p.Level)
			assert.Equal(t, 1, p.RunsCompleted)
		})
	}

	p := NewProgress()
	p.XP = 1400
	next, _ := Apply(p, summary(500))
	assert.Equal(t, 1500, next.XP)
	assert.Equal(t, 2, next.Level)
}

func TestApply_Stats(t *testing.T) {
	p, _ := Apply(NewProgress(), summary(300))
	p, _ = Apply(p, summary(300, func(s *engine.Summary) {
		s.MaxCombo = 7
		s.Stats = engine.Stats{Perfects: 7}
	}))

	assert.Equal(t, Stats{
		MaxCombo:         7,
		MaxPerfectsInRun: 7,
		TotalHits:        12,
		PerfectHits:      10,
		TotalGoods:       1,
		TotalMisses:      1,
		TotalPlayTime:    24 * time.Second,
	}, p.Stats)
}

func TestApply_Mastery(t *testing.T) {
	p, _ := Apply(NewProgress(), summary(100))
	p, _ = Apply(p, summary(100, func(s *engine.Summary) {
		s.Health = 100
		s.Elapsed = 9 * time.Second
	}))
	p, _ = Apply(p, summary(100, func(s *engine.Summary) {
		s.Health = 100
		s.GameOver = true
		s.Elapsed = 2 * time.Second
	}))

	m := p.Mastery["LASER"]
	assert.Equal(t, 3, m.Runs)
	assert.Equal(t, 1, m.PerfectRuns)
	assert.Equal(t, 9*time.Second, m.BestTime, "lost runs do not set a best time")
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	p := NewProgress()
	p.Mastery["LASER"] = Mastery{Runs: 4}

	Apply(p, summary(100))

	assert.Equal(t, 4, p.Mastery["LASER"].Runs)
	assert.Zero(t, p.RunsCompleted)
	assert.Empty(t, p.Achievements)
}

func TestApply_DailyStreak(t *testing.T) {
	at := func(t time.Time) func(*engine.Summary) {
		return func(s *engine.Summary) { s.FinishedAt = t }
	}

	p, _ := Apply(NewProgress(), summary(10, at(day)))
	assert.Equal(t, 1, p.DailyStreak)

	p, _ = Apply(p, summary(10, at(day.Add(time.Hour))))
	assert.Equal(t, 1, p.DailyStreak, "same day keeps the streak")

	p, _ = Apply(p, summary(10, at(day.Add(26*time.Hour))))
	assert.Equal(t, 2, p.DailyStreak)

	p, _ = Apply(p, summary(10, at(day.Add(4*24*time.Hour))))
	assert.Equal(t, 1, p.DailyStreak, "a missed day restarts the streak")
}

func TestAchievements(t *testing.T) {
	t.Run("first run", func(t *testing.T) {
		p, unlocked := Apply(NewProgress(), summary(100))
		assert.Equal(t, []string{"first_blood"}, unlockedIDs(unlocked))
		assert.True(t, p.HasAchievement("first_blood"))
		assert.Equal(t, day, unlocked[0].UnlockedAt)

		_, again := Apply(p, summary(100))
		assert.Empty(t, again, "achievements unlock once")
	})

	t.Run("great run", func(t *testing.T) {
		_, unlocked := Apply(NewProgress(), summary(5000, func(s *engine.Summary) {
			s.Health = 100
			s.MaxCombo = 25
			s.Stats = engine.Stats{Perfects: 12}
			s.Elapsed = 8 * time.Second
		}))
		assert.ElementsMatch(t,
			[]string{"first_blood", "perfectionist", "flawless", "combo_king", "speed_demon"},
			unlockedIDs(unlocked))
	})

	t.Run("milestones", func(t *testing.T) {
		p := NewProgress()
		p.RunsCompleted = 99
		p.XP = 9*XPPerLevel - 10

		_, unlocked := Apply(p, summary(100))
		assert.Contains(t, unlockedIDs(unlocked), "century")
		assert.Contains(t, unlockedIDs(unlocked), "master")
	})

	t.Run("catalog", func(t *testing.T) {
		all := Catalog()
		require.Len(t, all, 7)
		for _, a := range all {
			assert.True(t, a.UnlockedAt.IsZero())
		}
	})
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, 1, LevelFor(0))
	assert.Equal(t, 1, LevelFor(1499))
	assert.Equal(t, 2, LevelFor(1500))
	assert.Equal(t, 10, LevelFor(13500))
}
