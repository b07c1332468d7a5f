package engine

import (
	"fmt"
	"time"

	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/clock"
	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/target"
)

// Judge runs one challenge at one difficulty. It is driven by exactly one
// goroutine, one Update per frame, and is not reusable after Dispose.
type Judge struct {
	machine    Machine
	challenge  choreo.Challenge
	difficulty choreo.Difficulty
	clock      *clock.Clock
	state      State
	started    bool
	disposed   bool
}

// New validates c and builds a Judge for the copy of c scaled to d. Penalties
// in rules are the same at every tier. A nil clk uses the wall clock.
func New(c choreo.Challenge, d choreo.Difficulty, rules Rules, clk *clock.Clock) (*Judge, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q", choreo.ErrUnknownDifficulty, d)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New(nil)
	}

	scaled := c.Scaled(d)
	return &Judge{
		machine: Machine{
			Steps:         scaled.Steps,
			TotalDuration: scaled.TotalDuration,
			Rules:         rules,
		},
		challenge:  scaled,
		difficulty: d,
		clock:      clk,
		state:      NewState(float64(scaled.StartingHealth)),
	}, nil
}

// Start arms the run clock. Only the first call has an effect.
func (j *Judge) Start() {
	if j.started || j.disposed {
		return
	}
	j.clock.Reset()
	j.clock.Start()
	j.started = true
}

// Update judges the current frame. It returns ok=false when the frame
// produced no judgment, including every call before Start, after Dispose,
// while paused and once the run is over.
func (j *Judge) Update(p pose.Pose, t target.Target) (Event, bool) {
	if !j.started || j.disposed {
		return Event{}, false
	}

	next, ev, ok := j.machine.Transition(j.state, Input{
		Pose:    p,
		Target:  t,
		Elapsed: j.clock.Elapsed(),
	})
	j.state = next
	return ev, ok
}

// Pause freezes the run clock and stops judging.
func (j *Judge) Pause() {
	if !j.started || j.disposed || j.IsComplete() || j.state.Game.Paused {
		return
	}
	j.clock.Pause()
	j.state.Game.Paused = true
}

// Resume continues a paused run.
func (j *Judge) Resume() {
	if j.disposed || !j.state.Game.Paused {
		return
	}
	j.clock.Resume()
	j.state.Game.Paused = false
}

// State returns a snapshot of the game state.
func (j *Judge) State() GameState {
	return j.state.Game
}

// Hold returns the progress of the HOLD step with the given id, if active.
func (j *Judge) Hold(stepID string) (HoldProgress, bool) {
	p, ok := j.state.Holds[stepID]
	return p, ok
}

// CurrentStep returns the step under the cursor.
func (j *Judge) CurrentStep() (choreo.Step, bool) {
	i := j.state.Game.StepIndex
	if i >= len(j.machine.Steps) {
		return choreo.Step{}, false
	}
	return j.machine.Steps[i].Clone(), true
}

// Elapsed returns run time excluding pauses.
func (j *Judge) Elapsed() time.Duration {
	return j.clock.Elapsed()
}

// Challenge returns a copy of the scaled challenge being judged.
func (j *Judge) Challenge() choreo.Challenge {
	return j.challenge.Clone()
}

// Difficulty returns the tier the run was built with.
func (j *Judge) Difficulty() choreo.Difficulty {
	return j.difficulty
}

// Started reports whether Start has been called.
func (j *Judge) Started() bool {
	return j.started
}

// IsComplete reports whether every step has been judged, the run was lost,
// or the challenge duration has elapsed.
func (j *Judge) IsComplete() bool {
	return j.machine.Complete(j.state)
}

// Dispose releases the clock and hold bookkeeping. Further calls to Update
// are no-ops.
func (j *Judge) Dispose() {
	if j.disposed {
		return
	}
	j.clock.Reset()
	j.state.Holds = nil
	j.disposed = true
}
