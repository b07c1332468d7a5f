package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/flinch/internal/app"
	"github.com/ayusman/flinch/internal/capture"
	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/clock"
	"github.com/ayusman/flinch/internal/engine"
	"github.com/ayusman/flinch/internal/landmark"
	"github.com/ayusman/flinch/internal/server"
	"github.com/ayusman/flinch/internal/store"
	"github.com/ayusman/flinch/testdata"
)

var epoch = time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC)

// scriptedDetector replays a take. Each Detect call moves the run clock to
// the next frame's time; once the take is exhausted it reports no hand and
// moves the clock forward by idleStep.
type scriptedDetector struct {
	mu     sync.Mutex
	src    *clock.ManualSource
	frames []testdata.Frame
	next   int
	at     time.Duration
}

const idleStep = 100 * time.Millisecond

func (d *scriptedDetector) Detect(frame *gocv.Mat) ([]landmark.Hand, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.next < len(d.frames) {
		f := d.frames[d.next]
		d.next++
		d.at = f.T
		d.src.Set(epoch.Add(f.T))
		return f.Hands, nil
	}

	d.at += idleStep
	d.src.Set(epoch.Add(d.at))
	return nil, nil
}

func (d *scriptedDetector) Close() error {
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	events []engine.Event
}

func (l *eventLog) Publish(u app.Update) {
	if u.Type != app.UpdateJudgment || u.Event == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, *u.Event)
}

func (l *eventLog) kinds() []engine.EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]engine.EventKind, len(l.events))
	for i, ev := range l.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

type played struct {
	app     *app.App
	store   *store.Store
	summary engine.Summary
	events  *eventLog
}

// playTake runs the named take through the full frame pipeline and returns
// once the run has been recorded.
func playTake(t *testing.T, name string) played {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	registry := choreo.DefaultRegistry()
	challenges, err := testdata.Challenges()
	if err != nil {
		t.Fatalf("testdata.Challenges() error = %v", err)
	}
	for _, c := range challenges {
		if err := registry.Register(c); err != nil {
			t.Fatalf("Register(%s) error = %v", c.ID, err)
		}
	}

	take, err := testdata.LoadTake(name)
	if err != nil {
		t.Fatalf("LoadTake() error = %v", err)
	}

	src := clock.NewManualSource(epoch)
	a := app.New(app.Config{Store: st, Registry: registry, Source: src, PluginDir: t.TempDir()})
	a.SetDetector(&scriptedDetector{src: src, frames: take.Frames})

	frames := capture.BlankFrames(1)
	t.Cleanup(func() { frames[0].Close() })
	cam := capture.NewMockCamera(frames, true)
	cam.SetFPS(200)
	a.SetCamera(cam)

	events := &eventLog{}
	a.Subscribe(events)

	if _, err := a.StartSession(take.Challenge, choreo.Normal); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	var summary engine.Summary
	for {
		s, ok := a.LastRun()
		if ok {
			summary = s
			break
		}
		if time.Now().After(deadline) {
			a.Stop()
			t.Fatalf("run did not finish; events so far %v", events.kinds())
		}
		time.Sleep(10 * time.Millisecond)
	}
	a.Stop()

	if a.Running() {
		t.Error("expected pipeline to be stopped")
	}

	return played{app: a, store: st, summary: summary, events: events}
}

func TestE2E_CleanRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	p := playTake(t, "mixed_clean")
	s := p.summary

	wantKinds := []engine.EventKind{engine.Perfect, engine.Perfect, engine.Perfect}
	if got := p.events.kinds(); !slices.Equal(got, wantKinds) {
		t.Fatalf("events = %v, want %v", got, wantKinds)
	}
	if label := p.events.events[1].Label; label != engine.LabelHoldComplete {
		t.Errorf("hold label = %s, want %s", label, engine.LabelHoldComplete)
	}

	if s.Score != 360 {
		t.Errorf("score = %d, want 360", s.Score)
	}
	if s.Rank != engine.RankS {
		t.Errorf("rank = %s, want S", s.Rank)
	}
	if s.Health != 100 || s.GameOver {
		t.Errorf("health = %v game over = %v, want 100 and false", s.Health, s.GameOver)
	}
	if s.MaxCombo != 3 {
		t.Errorf("max combo = %d, want 3", s.MaxCombo)
	}
	if s.Elapsed != 3550*time.Millisecond {
		t.Errorf("elapsed = %v, want 3.55s", s.Elapsed)
	}

	replay, err := p.store.Replays().Get(s.ID)
	if err != nil {
		t.Fatalf("Replays().Get() error = %v", err)
	}
	if len(replay) != 17 {
		t.Errorf("len(replay) = %d, want 17", len(replay))
	}

	progress, err := p.store.Progress().Get()
	if err != nil {
		t.Fatalf("Progress().Get() error = %v", err)
	}
	if progress.XP != 72 {
		t.Errorf("xp = %d, want 72", progress.XP)
	}
	if !progress.HasAchievement("flawless") {
		t.Error("expected flawless to be unlocked")
	}

	t.Run("APIServesRun", func(t *testing.T) {
		srv := server.New(server.Config{Store: p.store, App: p.app})
		ts := httptest.NewServer(srv)
		defer ts.Close()

		resp, err := ts.Client().Get(ts.URL + "/api/runs/" + s.ID)
		if err != nil {
			t.Fatalf("GET run error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var run struct {
			ChallengeID string `json:"challenge_id"`
			Score       int    `json:"score"`
		}
		json.NewDecoder(resp.Body).Decode(&run)
		if run.ChallengeID != "MIXED" || run.Score != 360 {
			t.Errorf("run = %+v, want MIXED with 360", run)
		}
	})
}

func TestE2E_SloppyRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	p := playTake(t, "mixed_sloppy")
	s := p.summary

	wantKinds := []engine.EventKind{
		engine.Early,   // guard broken by a fist
		engine.Miss,    // strike never reached L
		engine.Ignore,  // hold flicker inside the grace window
		engine.Drift,   // flicker outlasted the grace window
		engine.Perfect, // hold still completed
		engine.Miss,    // no pinch before the snap deadline
	}
	if got := p.events.kinds(); !slices.Equal(got, wantKinds) {
		t.Fatalf("events = %v, want %v", got, wantKinds)
	}

	if s.Score != 110 {
		t.Errorf("score = %d, want 110", s.Score)
	}
	if s.Health != 45 {
		t.Errorf("health = %v, want 45", s.Health)
	}
	if s.GameOver {
		t.Error("expected the run to survive")
	}
	if s.Rank != engine.RankC {
		t.Errorf("rank = %s, want C", s.Rank)
	}
	if s.Stats.Earlies != 1 || s.Stats.Misses != 2 || s.Stats.Perfects != 1 {
		t.Errorf("stats = %+v, want 1 early, 2 misses, 1 perfect", s.Stats)
	}

	replay, err := p.store.Replays().Get(s.ID)
	if err != nil {
		t.Fatalf("Replays().Get() error = %v", err)
	}
	// 12 scripted frames, then idle frames until the snap deadline at 3.8s.
	if len(replay) != 20 {
		t.Errorf("len(replay) = %d, want 20", len(replay))
	}
	if last := replay[len(replay)-1]; last.Health != 45 {
		t.Errorf("last keyframe health = %v, want 45", last.Health)
	}
}
