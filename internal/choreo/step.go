// Package choreo defines choreographies: ordered, timed steps a player must
// perform, the difficulty tiers that scale them, and the built-in catalog.
package choreo

import (
	"slices"
	"time"

	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/target"
)

// Kind identifies a step type.
type Kind string

const (
	KindHit  Kind = "HIT"
	KindHold Kind = "HOLD"
	KindSnap Kind = "SNAP"
	KindWait Kind = "WAIT"
)

// Action is the kind-specific payload of a Step. It is implemented only by
// Hit, Hold, Snap and Wait.
type Action interface {
	Kind() Kind
	clone() Action
}

// Hit is an instant action accepted within Window on either side of the
// step start.
type Hit struct {
	Window time.Duration
}

// Hold requires the pose and target to persist until the step ends.
type Hold struct {
	// MinimumHold is how long the hold must have been tracked when it completes.
	MinimumHold time.Duration
	// TolerancePx is the drawn tolerance ring radius.
	TolerancePx int
}

// Snap requires the trigger pose before Start+MaxActionTime.
type Snap struct {
	MaxActionTime time.Duration
}

// Wait is a stillness interval. When ForbiddenPoses is empty anything other
// than the neutral pose at the center breaks it.
type Wait struct {
	ForbiddenPoses []pose.Pose
}

func (Hit) Kind() Kind  { return KindHit }
func (Hold) Kind() Kind { return KindHold }
func (Snap) Kind() Kind { return KindSnap }
func (Wait) Kind() Kind { return KindWait }

func (a Hit) clone() Action  { return a }
func (a Hold) clone() Action { return a }
func (a Snap) clone() Action { return a }
func (a Wait) clone() Action {
	return Wait{ForbiddenPoses: slices.Clone(a.ForbiddenPoses)}
}

// Breaks reports whether presenting p at t violates the wait.
func (a Wait) Breaks(p pose.Pose, t target.Target) bool {
	if len(a.ForbiddenPoses) > 0 {
		return slices.Contains(a.ForbiddenPoses, p)
	}
	return p != pose.Open || t != target.Center
}

// Step is one scripted action in a choreography.
type Step struct {
	ID       string
	Start    time.Duration
	Duration time.Duration
	Pose     pose.Pose
	Target   target.Target
	// Lethal steps end the run when failed, regardless of health.
	Lethal bool
	Action Action
}

// Kind returns the step type, or "" when the step has no action.
func (s Step) Kind() Kind {
	if s.Action == nil {
		return ""
	}
	return s.Action.Kind()
}

// End returns Start+Duration.
func (s Step) End() time.Duration {
	return s.Start + s.Duration
}

// Clone returns a deep copy of s.
func (s Step) Clone() Step {
	if s.Action != nil {
		s.Action = s.Action.clone()
	}
	return s
}
