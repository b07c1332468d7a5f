package progression

import "time"

// Tier ranks an achievement.
type Tier string

const (
	Bronze   Tier = "BRONZE"
	Silver   Tier = "SILVER"
	Gold     Tier = "GOLD"
	Platinum Tier = "PLATINUM"
)

// Achievement is an unlocked (or unlockable) milestone.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tier        Tier      `json:"tier"`
	UnlockedAt  time.Time `json:"unlocked_at,omitzero"`
}

type definition struct {
	Achievement
	earned func(p Progress) bool
}

var catalog = []definition{
	{
		Achievement{ID: "first_blood", Name: "First Blood", Description: "Complete your first run.", Tier: Bronze},
		func(p Progress) bool { return p.RunsCompleted >= 1 },
	},
	{
		Achievement{ID: "perfectionist", Name: "Perfectionist", Description: "Land 10 PERFECT judgments in a single run.", Tier: Gold},
		func(p Progress) bool { return p.Stats.MaxPerfectsInRun >= 10 },
	},
	{
		Achievement{ID: "century", Name: "Century", Description: "Complete 100 runs.", Tier: Gold},
		func(p Progress) bool { return p.RunsCompleted >= 100 },
	},
	{
		Achievement{ID: "flawless", Name: "Flawless", Description: "Finish a run without losing health.", Tier: Silver},
		func(p Progress) bool {
			for _, m := range p.Mastery {
				if m.PerfectRuns > 0 {
					return true
				}
			}
			return false
		},
	},
	{
		Achievement{ID: "master", Name: "Master", Description: "Reach level 10.", Tier: Platinum},
		func(p Progress) bool { return p.Level >= 10 },
	},
	{
		Achievement{ID: "combo_king", Name: "Combo King", Description: "Hold a streak of 20 or more.", Tier: Gold},
		func(p Progress) bool { return p.Stats.MaxCombo >= 20 },
	},
	{
		Achievement{ID: "speed_demon", Name: "Speed Demon", Description: "Clear a challenge in under 10 seconds.", Tier: Gold},
		func(p Progress) bool {
			for _, m := range p.Mastery {
				if m.BestTime > 0 && m.BestTime < 10*time.Second {
					return true
				}
			}
			return false
		},
	},
}

// Catalog returns every achievement definition, locked.
func Catalog() []Achievement {
	result := make([]Achievement, len(catalog))
	for i, d := range catalog {
		result[i] = d.Achievement
	}
	return result
}

// Evaluate returns the achievements p has earned but not yet unlocked,
// stamped with at.
func Evaluate(p Progress, at time.Time) []Achievement {
	var unlocked []Achievement
	for _, d := range catalog {
		if p.HasAchievement(d.ID) || !d.earned(p) {
			continue
		}
		a := d.Achievement
		a.UnlockedAt = at
		unlocked = append(unlocked, a)
	}
	return unlocked
}
