package testdata

import (
	"math"
	"testing"

	"github.com/ayusman/flinch/internal/pose"
)

func TestChallenges(t *testing.T) {
	challenges, err := Challenges()
	if err != nil {
		t.Fatalf("Challenges() error = %v", err)
	}
	if len(challenges) == 0 {
		t.Fatal("expected at least one challenge")
	}

	c, err := LoadChallenge("mixed")
	if err != nil {
		t.Fatalf("LoadChallenge() error = %v", err)
	}
	if len(c.Steps) != 4 {
		t.Errorf("expected 4 steps, got %d", len(c.Steps))
	}

	if _, err := LoadChallenge("missing"); err == nil {
		t.Error("expected error for a missing challenge")
	}
}

func TestLoadTake(t *testing.T) {
	for _, name := range []string{"mixed_clean", "mixed_sloppy"} {
		take, err := LoadTake(name)
		if err != nil {
			t.Fatalf("LoadTake(%s) error = %v", name, err)
		}
		if take.Challenge != "MIXED" {
			t.Errorf("%s: expected challenge MIXED, got %q", name, take.Challenge)
		}
		for i := 1; i < len(take.Frames); i++ {
			if take.Frames[i].T <= take.Frames[i-1].T {
				t.Errorf("%s: frame %d is not after frame %d", name, i, i-1)
			}
		}
	}
}

func TestHand(t *testing.T) {
	h, err := Hand(pose.Fist, 0.2, 0.3)
	if err != nil {
		t.Fatalf("Hand() error = %v", err)
	}
	wrist := h.WristPosition()
	if math.Abs(wrist.X-0.2) > 1e-9 || math.Abs(wrist.Y-0.3) > 1e-9 {
		t.Errorf("expected wrist at (0.2, 0.3), got (%v, %v)", wrist.X, wrist.Y)
	}

	if _, err := Hand(pose.Wave, 0.5, 0.5); err == nil {
		t.Error("expected error for a pose without a preset")
	}
}
