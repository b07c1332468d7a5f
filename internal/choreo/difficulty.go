package choreo

import (
	"fmt"
	"strings"
)

// Difficulty is a named tier that scales a choreography.
type Difficulty string

const (
	Easy    Difficulty = "EASY"
	Normal  Difficulty = "NORMAL"
	Hard    Difficulty = "HARD"
	Extreme Difficulty = "EXTREME"
)

// Difficulties lists every tier from easiest to hardest.
var Difficulties = []Difficulty{Easy, Normal, Hard, Extreme}

// Modifier is the per-tier scaling applied when a run is constructed.
type Modifier struct {
	// Window multiplies HIT acceptance windows.
	Window float64 `json:"window"`
	// XP multiplies experience awarded after the run.
	XP float64 `json:"xp"`
	// Lethal marks every step lethal.
	Lethal bool `json:"lethal"`
}

var modifiers = map[Difficulty]Modifier{
	Easy:    {Window: 1.5, XP: 0.7},
	Normal:  {Window: 1.0, XP: 1.0},
	Hard:    {Window: 0.7, XP: 1.5},
	Extreme: {Window: 0.5, XP: 2.5, Lethal: true},
}

// catalog tier names used by the challenge list
var aliases = map[string]Difficulty{
	"MID":   Normal,
	"PRO":   Hard,
	"ELITE": Extreme,
}

// ParseDifficulty resolves a tier name, case-insensitively. Catalog aliases
// MID, PRO and ELITE map to NORMAL, HARD and EXTREME.
func ParseDifficulty(s string) (Difficulty, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return Normal, nil
	}
	if d, ok := aliases[name]; ok {
		return d, nil
	}
	d := Difficulty(name)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

// Valid reports whether d is a known tier.
func (d Difficulty) Valid() bool {
	_, ok := modifiers[d]
	return ok
}

// Modifier returns the scaling for d. Unknown tiers scale like NORMAL.
func (d Difficulty) Modifier() Modifier {
	if m, ok := modifiers[d]; ok {
		return m
	}
	return modifiers[Normal]
}
