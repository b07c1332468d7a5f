package engine

import (
	"time"

	"github.com/ayusman/flinch/internal/choreo"
)

// Machine holds the immutable inputs of a run's transition function.
type Machine struct {
	Steps         []choreo.Step
	TotalDuration time.Duration
	Rules         Rules
}

// Transition judges one frame. It returns the next state and, when the frame
// produced a judgment, the event with ok set. s is never modified. A paused,
// finished or lost run returns s unchanged.
func (m Machine) Transition(s State, in Input) (next State, ev Event, ok bool) {
	if s.Game.Paused || s.Game.GameOver || s.Game.Finished {
		return s, Event{}, false
	}

	next = s.clone()

	if in.Elapsed >= m.TotalDuration {
		next.Game.Finished = true
		clear(next.Holds)
		return next, Event{
			Kind:      ChallengeComplete,
			StepIndex: next.Game.StepIndex,
			Combo:     next.Game.Combo,
			Label:     LabelTimeUp,
			Elapsed:   in.Elapsed,
		}, true
	}

	if next.Game.StepIndex >= len(m.Steps) {
		return next, Event{}, false
	}
	step := m.Steps[next.Game.StepIndex]

	switch a := step.Action.(type) {
	case choreo.Hit:
		ev, ok = m.hit(&next, step, a, in)
	case choreo.Hold:
		ev, ok = m.hold(&next, step, a, in)
	case choreo.Snap:
		ev, ok = m.snap(&next, step, a, in)
	case choreo.Wait:
		ev, ok = m.wait(&next, step, a, in)
	}
	return next, ev, ok
}

// Complete reports whether s is terminal for this machine.
func (m Machine) Complete(s State) bool {
	return s.Game.StepIndex >= len(m.Steps) || s.Game.GameOver || s.Game.Finished
}

func (m Machine) hit(s *State, step choreo.Step, a choreo.Hit, in Input) (Event, bool) {
	timeToHit := in.Elapsed - step.Start
	if timeToHit > a.Window {
		return m.miss(s, step, in), true
	}

	if m.coolingDown(s, step, in) {
		return Event{}, false
	}

	if in.Pose != step.Pose || in.Target != step.Target {
		return Event{}, false
	}

	perfection := 1 - float64(abs(timeToHit))/float64(a.Window)
	switch {
	case perfection > m.Rules.PerfectThreshold:
		s.recordHit(step, in)
		return m.perfect(s, step, in, string(Perfect)), true
	case perfection > 0:
		s.recordHit(step, in)
		return m.good(s, step, in), true
	}
	return Event{}, false
}

func (m Machine) snap(s *State, step choreo.Step, a choreo.Snap, in Input) (Event, bool) {
	deadline := step.Start + a.MaxActionTime

	if in.Pose == m.Rules.SnapTrigger && in.Elapsed < deadline && !m.coolingDown(s, step, in) {
		s.recordHit(step, in)
		return m.perfect(s, step, in, string(Perfect)), true
	}
	if in.Elapsed >= deadline {
		return m.miss(s, step, in), true
	}
	return Event{}, false
}

func (m Machine) hold(s *State, step choreo.Step, a choreo.Hold, in Input) (Event, bool) {
	if in.Elapsed < step.Start {
		return Event{}, false
	}

	progress, ok := s.Holds[step.ID]
	if !ok {
		progress = HoldProgress{
			Start:     in.Elapsed,
			LastValid: in.Elapsed,
			Grace:     m.Rules.GraceAllowance,
		}
	}

	end := step.End()
	matched := in.Pose == step.Pose && in.Target == step.Target

	if matched && in.Elapsed >= end && in.Elapsed-progress.Start >= a.MinimumHold {
		return m.perfect(s, step, in, LabelHoldComplete), true
	}
	if in.Elapsed >= end+m.Rules.GraceWindow {
		return m.miss(s, step, in), true
	}

	if matched {
		progress.LastValid = in.Elapsed
		if progress.DriftCount > 0 {
			progress.DriftCount--
		}
		s.Holds[step.ID] = progress
		return Event{}, false
	}

	if in.Elapsed-progress.LastValid < m.Rules.GraceWindow && progress.Grace > 0 {
		s.Holds[step.ID] = progress
		return Event{
			Kind:        Ignore,
			StepID:      step.ID,
			StepIndex:   s.Game.StepIndex,
			TimingError: in.Elapsed - step.Start,
			Combo:       s.Game.Combo,
			Label:       LabelGrace,
			Elapsed:     in.Elapsed,
		}, true
	}

	progress.DriftCount++
	progress.Grace = max(progress.Grace-1, 0)
	s.Holds[step.ID] = progress

	damage := min(m.Rules.DriftDamageStep*float64(progress.DriftCount), m.Rules.DriftDamageCap)
	s.damage(damage)
	s.Game.Combo = 0
	if step.Lethal || s.Game.Health <= 0 {
		s.Game.GameOver = true
	}

	return Event{
		Kind:        Drift,
		StepID:      step.ID,
		StepIndex:   s.Game.StepIndex,
		TimingError: in.Elapsed - step.Start,
		Damage:      damage,
		Combo:       0,
		Label:       string(Drift),
		GameOver:    s.Game.GameOver,
		Elapsed:     in.Elapsed,
	}, true
}

func (m Machine) wait(s *State, step choreo.Step, a choreo.Wait, in Input) (Event, bool) {
	if in.Elapsed < step.Start {
		return Event{}, false
	}
	if in.Elapsed >= step.End() {
		s.advance(step)
		return Event{}, false
	}
	if !a.Breaks(in.Pose, in.Target) {
		return Event{}, false
	}

	index := s.Game.StepIndex
	s.Game.Stats.Earlies++
	s.Game.Combo = 0
	s.damage(m.Rules.WaitDamage)
	if step.Lethal || s.Game.Health <= 0 {
		s.Game.GameOver = true
	}
	s.advance(step)

	return Event{
		Kind:        Early,
		StepID:      step.ID,
		StepIndex:   index,
		TimingError: in.Elapsed - step.Start,
		Damage:      m.Rules.WaitDamage,
		Label:       LabelGuardBroken,
		GameOver:    s.Game.GameOver,
		Elapsed:     in.Elapsed,
	}, true
}

func (m Machine) perfect(s *State, step choreo.Step, in Input, label string) Event {
	index := s.Game.StepIndex
	s.Game.Stats.Perfects++
	s.Game.Combo++
	s.Game.MaxCombo = max(s.Game.MaxCombo, s.Game.Combo)

	delta := m.Rules.PerfectScore + m.Rules.ComboBonus*s.Game.Combo
	s.Game.Score += delta
	s.advance(step)

	return Event{
		Kind:        Perfect,
		StepID:      step.ID,
		StepIndex:   index,
		TimingError: in.Elapsed - step.Start,
		ScoreDelta:  delta,
		Combo:       s.Game.Combo,
		Label:       label,
		Elapsed:     in.Elapsed,
	}
}

func (m Machine) good(s *State, step choreo.Step, in Input) Event {
	index := s.Game.StepIndex
	s.Game.Stats.Goods++
	s.Game.Combo++
	s.Game.MaxCombo = max(s.Game.MaxCombo, s.Game.Combo)

	delta := m.Rules.GoodScore
	s.Game.Score += delta
	s.advance(step)

	return Event{
		Kind:        Good,
		StepID:      step.ID,
		StepIndex:   index,
		TimingError: in.Elapsed - step.Start,
		ScoreDelta:  delta,
		Combo:       s.Game.Combo,
		Label:       string(Good),
		Elapsed:     in.Elapsed,
	}
}

func (m Machine) miss(s *State, step choreo.Step, in Input) Event {
	index := s.Game.StepIndex
	s.Game.Stats.Misses++
	s.Game.Combo = 0
	s.damage(m.Rules.MissDamage)
	if step.Lethal || s.Game.Health <= 0 {
		s.Game.GameOver = true
	}
	s.advance(step)

	return Event{
		Kind:        Miss,
		StepID:      step.ID,
		StepIndex:   index,
		TimingError: in.Elapsed - step.Start,
		Damage:      m.Rules.MissDamage,
		Label:       string(Miss),
		GameOver:    s.Game.GameOver,
		Elapsed:     in.Elapsed,
	}
}

// coolingDown reports whether a hit on step was accepted less than Cooldown ago.
func (m Machine) coolingDown(s *State, step choreo.Step, in Input) bool {
	return s.LastHitStep == step.ID && in.Elapsed-s.LastHitAt < m.Rules.Cooldown
}

func (s *State) recordHit(step choreo.Step, in Input) {
	s.LastHitStep = step.ID
	s.LastHitAt = in.Elapsed
}

func (s *State) advance(step choreo.Step) {
	delete(s.Holds, step.ID)
	s.Game.StepIndex++
}

// damage lowers health, clamped at zero.
func (s *State) damage(amount float64) {
	s.Game.Health = max(0, s.Game.Health-amount)
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
