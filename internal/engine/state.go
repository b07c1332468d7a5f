// Package engine judges live pose and zone input against a choreography.
//
// All rules live in Machine.Transition, a function from a State and one frame
// of Input to the next State and an optional Event. Judge wraps it with a run
// clock and the run lifecycle.
package engine

import (
	"maps"
	"time"

	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/target"
)

// EventKind discriminates judgment events.
type EventKind string

const (
	Perfect           EventKind = "PERFECT"
	Good              EventKind = "GOOD"
	Miss              EventKind = "MISS"
	Drift             EventKind = "DRIFT"
	Early             EventKind = "EARLY"
	Ignore            EventKind = "IGNORE"
	ChallengeComplete EventKind = "CHALLENGE_COMPLETE"
)

// Event labels.
const (
	LabelHoldComplete = "HOLD_COMPLETE"
	LabelGuardBroken  = "GUARD_BROKEN"
	LabelGrace        = "GRACE"
	LabelTimeUp       = "TIME_UP"
)

// Event is the outcome of one judged frame.
type Event struct {
	Kind      EventKind `json:"kind"`
	StepID    string    `json:"step_id,omitempty"`
	StepIndex int       `json:"step_index"`
	// TimingError is elapsed minus the step start at the moment of judgment.
	TimingError time.Duration `json:"timing_error"`
	ScoreDelta  int           `json:"score_delta"`
	Damage      float64       `json:"damage"`
	Combo       int           `json:"combo"`
	Label       string        `json:"label"`
	GameOver    bool          `json:"game_over"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Stats counts terminal judgments by category.
type Stats struct {
	Perfects int `json:"perfects"`
	Goods    int `json:"goods"`
	Misses   int `json:"misses"`
	Earlies  int `json:"earlies"`
}

// GameState is the scored state of one run. Values of this type are
// snapshots; the Judge never hands out its own copy.
type GameState struct {
	StepIndex int     `json:"step_index"`
	Health    float64 `json:"health"`
	Score     int     `json:"score"`
	Combo     int     `json:"combo"`
	MaxCombo  int     `json:"max_combo"`
	Stats     Stats   `json:"stats"`
	Paused    bool    `json:"paused"`
	GameOver  bool    `json:"game_over"`
	// Finished is set once the challenge duration has elapsed.
	Finished bool `json:"finished"`
}

// HoldProgress tracks the active HOLD step.
type HoldProgress struct {
	Start      time.Duration
	LastValid  time.Duration
	DriftCount int
	// Grace is the number of flicker allowances left.
	Grace int
}

// State is everything Transition reads and writes.
type State struct {
	Game  GameState
	Holds map[string]HoldProgress
	// LastHitStep and LastHitAt record the last accepted timed hit for debouncing.
	LastHitStep string
	LastHitAt   time.Duration
}

// NewState returns the initial state of a run with the given health.
func NewState(health float64) State {
	return State{
		Game:  GameState{Health: health},
		Holds: make(map[string]HoldProgress),
	}
}

func (s State) clone() State {
	s.Holds = maps.Clone(s.Holds)
	if s.Holds == nil {
		s.Holds = make(map[string]HoldProgress)
	}
	return s
}

// Input is one frame presented to the judge.
type Input struct {
	Pose    pose.Pose
	Target  target.Target
	Elapsed time.Duration
}
