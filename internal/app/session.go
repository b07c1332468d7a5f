package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/clock"
	"github.com/ayusman/flinch/internal/engine"
	"github.com/ayusman/flinch/internal/landmark"
	"github.com/ayusman/flinch/internal/log"
	"github.com/ayusman/flinch/internal/plugin"
	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/progression"
	"github.com/ayusman/flinch/internal/store"
	"github.com/ayusman/flinch/internal/target"
)

var (
	// ErrNoSession is returned when a session operation finds no running session.
	ErrNoSession = errors.New("no active session")
	// ErrSessionActive is returned when starting a session while one is running.
	ErrSessionActive = errors.New("a session is already active")
)

// Update types.
const (
	UpdateJudgment    = "judgment"
	UpdateSession     = "session"
	UpdateRunComplete = "run_complete"
)

// Update is pushed to every EventSink.
type Update struct {
	Type    string           `json:"type"`
	Event   *engine.Event    `json:"event,omitempty"`
	State   engine.GameState `json:"state"`
	Pose    pose.Pose        `json:"pose,omitempty"`
	Target  target.Target    `json:"target,omitempty"`
	Summary *engine.Summary  `json:"summary,omitempty"`
}

// EventSink receives session updates. Publish must not block.
type EventSink interface {
	Publish(u Update)
}

// StepView describes the step under the cursor.
type StepView struct {
	ID     string        `json:"id"`
	Kind   choreo.Kind   `json:"kind"`
	Pose   pose.Pose     `json:"pose"`
	Target target.Target `json:"target"`
	Start  time.Duration `json:"start"`
	End    time.Duration `json:"end"`
	Lethal bool          `json:"lethal"`
}

// Snapshot is a read-only view of the current or last session.
type Snapshot struct {
	Active        bool              `json:"active"`
	ChallengeID   string            `json:"challenge_id"`
	Name          string            `json:"name"`
	Difficulty    choreo.Difficulty `json:"difficulty"`
	State         engine.GameState  `json:"state"`
	Elapsed       time.Duration     `json:"elapsed"`
	TotalDuration time.Duration     `json:"total_duration"`
	Step          *StepView         `json:"step,omitempty"`
	Complete      bool              `json:"complete"`
	Aborted       bool              `json:"aborted,omitempty"`
	RunID         string            `json:"run_id,omitempty"`
}

type session struct {
	judge     *engine.Judge
	challenge choreo.Challenge
	replay    []store.Keyframe
	// final is set once the session has ended and the judge is disposed.
	final *Snapshot
}

func (s *session) snapshot() Snapshot {
	if s.final != nil {
		return *s.final
	}
	snap := Snapshot{
		Active:        true,
		ChallengeID:   s.challenge.ID,
		Name:          s.challenge.Name,
		Difficulty:    s.judge.Difficulty(),
		State:         s.judge.State(),
		Elapsed:       s.judge.Elapsed(),
		TotalDuration: s.challenge.TotalDuration,
		Complete:      s.judge.IsComplete(),
	}
	if step, ok := s.judge.CurrentStep(); ok {
		snap.Step = &StepView{
			ID:     step.ID,
			Kind:   step.Kind(),
			Pose:   step.Pose,
			Target: step.Target,
			Start:  step.Start,
			End:    step.End(),
			Lethal: step.Lethal,
		}
	}
	return snap
}

// end disposes the judge and freezes the snapshot.
func (s *session) end(aborted bool, runID string) Snapshot {
	snap := s.snapshot()
	snap.Active = false
	snap.Step = nil
	snap.Aborted = aborted
	snap.RunID = runID
	s.final = &snap
	s.judge.Dispose()
	return snap
}

// StartSession starts judging challengeID at difficulty d.
func (a *App) StartSession(challengeID string, d choreo.Difficulty) (Snapshot, error) {
	c, err := a.registry.Get(challengeID)
	if err != nil {
		return Snapshot{}, err
	}
	judge, err := engine.New(c, d, a.rules, clock.New(a.source))
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to create judge: %w", err)
	}

	a.mu.Lock()
	if a.session != nil && a.session.final == nil {
		a.mu.Unlock()
		return Snapshot{}, ErrSessionActive
	}
	a.classifier.Reset()
	a.smoother.Reset()
	judge.Start()
	a.session = &session{judge: judge, challenge: judge.Challenge()}
	snap := a.session.snapshot()
	a.mu.Unlock()

	log.Info("session started", "challenge", c.ID, "difficulty", d)
	a.publish(Update{Type: UpdateSession, State: snap.State})
	return snap, nil
}

// PauseSession freezes the run clock.
func (a *App) PauseSession() (Snapshot, error) {
	return a.withActive(func(s *session) { s.judge.Pause() })
}

// ResumeSession continues a paused run.
func (a *App) ResumeSession() (Snapshot, error) {
	return a.withActive(func(s *session) { s.judge.Resume() })
}

func (a *App) withActive(fn func(s *session)) (Snapshot, error) {
	a.mu.Lock()
	s := a.session
	if s == nil || s.final != nil {
		a.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	fn(s)
	snap := s.snapshot()
	a.mu.Unlock()

	a.publish(Update{Type: UpdateSession, State: snap.State})
	return snap, nil
}

// StopSession aborts the running session. Aborted runs are not recorded.
func (a *App) StopSession() (Snapshot, error) {
	a.mu.Lock()
	s := a.session
	if s == nil || s.final != nil {
		a.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	snap := s.end(true, "")
	a.mu.Unlock()

	log.Info("session stopped", "challenge", snap.ChallengeID, "elapsed", snap.Elapsed)
	a.publish(Update{Type: UpdateSession, State: snap.State})
	return snap, nil
}

// Snapshot returns the running session, or the last one after it ended.
func (a *App) Snapshot() (Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return Snapshot{}, ErrNoSession
	}
	return a.session.snapshot(), nil
}

// LastRun returns the summary of the most recent finished run.
func (a *App) LastRun() (engine.Summary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lastRun == nil {
		return engine.Summary{}, false
	}
	return *a.lastRun, true
}

// ProcessHands judges one frame of detector output against the running
// session. Only the first hand is used. No hand is read as the neutral input
// (OPEN at C) and clears the smoother and classifier history; an UNKNOWN
// pose is judged as OPEN.
func (a *App) ProcessHands(hands []landmark.Hand) (engine.Event, bool) {
	a.mu.Lock()
	s := a.session
	if s == nil || s.final != nil {
		a.mu.Unlock()
		return engine.Event{}, false
	}

	elapsed := s.judge.Elapsed()
	p, t, wrist := a.read(hands, elapsed)

	var required pose.Pose
	if step, ok := s.judge.CurrentStep(); ok {
		required = step.Pose
	}

	paused := s.judge.State().Paused
	ev, ok := s.judge.Update(p, t)
	state := s.judge.State()

	if !paused {
		s.replay = append(s.replay, store.Keyframe{
			T:            elapsed,
			X:            wrist.X,
			Y:            wrist.Y,
			Pose:         p,
			RequiredPose: required,
			Target:       t,
			Hit:          ok && (ev.Kind == engine.Perfect || ev.Kind == engine.Good),
			Health:       state.Health,
		})
	}

	var finished *finishedRun
	if s.judge.IsComplete() {
		summary := s.judge.Summary()
		finished = &finishedRun{summary: summary, replay: s.replay}
		s.end(false, summary.ID)
		s.replay = nil
		a.lastRun = &summary
	}
	a.mu.Unlock()

	if ok {
		a.publish(Update{Type: UpdateJudgment, Event: &ev, State: state, Pose: p, Target: t})
	}
	if finished != nil {
		a.finish(*finished)
	}
	return ev, ok
}

// read turns detector output into judge input and the smoothed wrist.
func (a *App) read(hands []landmark.Hand, elapsed time.Duration) (pose.Pose, target.Target, landmark.Point3D) {
	if len(hands) == 0 {
		a.classifier.Reset()
		a.smoother.Reset()
		return pose.Open, target.Center, landmark.Point3D{X: 0.5, Y: 0.5}
	}

	hand := hands[0]
	p := a.classifier.Classify(hand.Frame()).Pose
	if p == pose.Unknown {
		p = pose.Open
	}
	wrist := a.smoother.Smooth(hand.WristPosition(), elapsed)
	return p, a.mapper.Map(wrist), wrist
}

type finishedRun struct {
	summary engine.Summary
	replay  []store.Keyframe
}

// finish records a completed run: summary and replay, then progression, then
// the plugin hooks. It runs once per session.
func (a *App) finish(run finishedRun) {
	s := run.summary
	log.Info("run complete",
		"run", s.ID, "challenge", s.ChallengeID, "difficulty", s.Difficulty,
		"score", s.Score, "rank", s.Rank, "game_over", s.GameOver)

	var progress *progression.Progress
	var unlocked []progression.Achievement

	if st := a.config.Store; st != nil {
		if err := st.Runs().Create(s); err != nil {
			log.Error("failed to store run", "run", s.ID, "error", err)
		} else if err := st.Replays().Save(s.ID, run.replay); err != nil {
			log.Error("failed to store replay", "run", s.ID, "error", err)
		}

		current, err := st.Progress().Get()
		if err != nil {
			log.Error("failed to load progress", "error", err)
		} else {
			next, newly := progression.Apply(current, s)
			if err := st.Progress().Save(next); err != nil {
				log.Error("failed to store progress", "error", err)
			}
			progress, unlocked = &next, newly
			for _, ach := range newly {
				log.Info("achievement unlocked", "id", ach.ID, "tier", ach.Tier)
			}
		}
	}

	a.publish(Update{Type: UpdateRunComplete, Summary: &s})

	ctx := context.Background()
	a.hooks.Fire(ctx, &plugin.Request{Event: plugin.EventRunComplete, Run: &s, Progress: progress})
	if len(unlocked) > 0 {
		a.hooks.Fire(ctx, &plugin.Request{Event: plugin.EventAchievement, Run: &s, Progress: progress, Unlocked: unlocked})
	}
}
