package store

import (
	"testing"
	"time"

	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/target"
)

func TestReplayRepository_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	if err := s.Runs().Create(testSummary("run-1", 0)); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	frames := []Keyframe{
		{T: 0, X: 0.5, Y: 0.5, Pose: pose.Open, RequiredPose: pose.Fist, Target: target.Center, Health: 100},
		{T: 33 * time.Millisecond, X: 0.52, Y: 0.49, Pose: pose.Fist, RequiredPose: pose.Fist, Target: target.Center, Hit: true, Health: 100},
		{T: 66 * time.Millisecond, X: 0.9, Y: 0.5, Pose: pose.Pinch, RequiredPose: pose.Point, Target: target.Right, Health: 80},
	}
	if err := s.Replays().Save("run-1", frames); err != nil {
		t.Fatalf("failed to save replay: %v", err)
	}

	got, err := s.Replays().Get("run-1")
	if err != nil {
		t.Fatalf("failed to get replay: %v", err)
	}
	if len(got) != len(frames) {
		t.Fatalf("expected %d frames, got %d", len(frames), len(got))
	}
	for i := range frames {
		if got[i] != frames[i] {
			t.Errorf("frame %d: expected %+v, got %+v", i, frames[i], got[i])
		}
	}
}

func TestReplayRepository_SaveReplaces(t *testing.T) {
	s := newTestStore(t)
	if err := s.Runs().Create(testSummary("run-1", 0)); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	first := []Keyframe{{Pose: pose.Open, RequiredPose: pose.Open, Target: target.Center}, {Pose: pose.Open, RequiredPose: pose.Open, Target: target.Center}}
	if err := s.Replays().Save("run-1", first); err != nil {
		t.Fatalf("failed to save replay: %v", err)
	}
	second := []Keyframe{{Pose: pose.Fist, RequiredPose: pose.Fist, Target: target.Up}}
	if err := s.Replays().Save("run-1", second); err != nil {
		t.Fatalf("failed to save replay: %v", err)
	}

	got, err := s.Replays().Get("run-1")
	if err != nil {
		t.Fatalf("failed to get replay: %v", err)
	}
	if len(got) != 1 || got[0].Pose != pose.Fist {
		t.Errorf("expected the second replay only, got %+v", got)
	}
}

func TestReplayRepository_UnknownRun(t *testing.T) {
	s := newTestStore(t)

	err := s.Replays().Save("missing", []Keyframe{{Pose: pose.Open, RequiredPose: pose.Open, Target: target.Center}})
	if err == nil {
		t.Error("expected foreign key error for a replay without a run")
	}

	got, err := s.Replays().Get("missing")
	if err != nil {
		t.Fatalf("failed to get replay: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}
