package pose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/flinch/internal/landmark"
)

func frameOf(h landmark.Hand) []landmark.Landmark {
	return h.Frame()
}

func TestClassifier_GeometricPoses(t *testing.T) {
	tests := []struct {
		name string
		hand landmark.Hand
		want Pose
	}{
		{"open palm", landmark.OpenPalm(), Open},
		{"fist", landmark.Fist(), Fist},
		{"pinch", landmark.Pinch(), Pinch},
		{"point", landmark.Pointing(), Point},
		{"centered fist", landmark.MoveWristTo(landmark.Fist(), 0.5, 0.5), Fist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(DefaultConfig())
			got := c.Classify(frameOf(tt.hand))

			assert.Equal(t, tt.want, got.Pose)
			assert.Equal(t, 1.0, got.Confidence)
		})
	}
}

func TestClassifier_Unknown(t *testing.T) {
	t.Run("short frame", func(t *testing.T) {
		c := NewClassifier(DefaultConfig())
		got := c.Classify(frameOf(landmark.OpenPalm())[:10])

		assert.Equal(t, Unknown, got.Pose)
		assert.Zero(t, got.Confidence)
	})

	t.Run("nil frame", func(t *testing.T) {
		c := NewClassifier(DefaultConfig())
		got := c.Classify(nil)

		assert.Equal(t, Unknown, got.Pose)
	})

	t.Run("mixed fingers", func(t *testing.T) {
		h := landmark.OpenPalm()
		// Only the ring finger is curled.
		h.Points[landmark.RingTip].Y = h.Points[landmark.RingMCP].Y + 0.05

		c := NewClassifier(DefaultConfig())
		assert.Equal(t, Unknown, c.Classify(frameOf(h)).Pose)
	})
}

func TestClassifier_PinchTakesPriority(t *testing.T) {
	// A pinch with every other finger curled is still a pinch, not a fist.
	h := landmark.Fist()
	h.Points[landmark.ThumbTip] = h.Points[landmark.IndexTip]

	c := NewClassifier(DefaultConfig())
	assert.Equal(t, Pinch, c.Classify(frameOf(h)).Pose)
}

func TestClassifier_LowVisibilityHysteresis(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	first := c.Classify(frameOf(landmark.Fist()))
	require.Equal(t, Fist, first.Pose)
	require.Equal(t, Fist, c.LastValid())

	for _, hand := range []landmark.Hand{
		landmark.OpenPalm(),
		landmark.Pinch(),
		landmark.Pointing(),
	} {
		got := c.Classify(frameOf(landmark.WithVisibility(hand, 0.3)))
		assert.Equal(t, Fist, got.Pose, "low visibility should hold the last accepted pose")
		assert.InDelta(t, 0.3, got.Confidence, 1e-9)
	}
}

func TestClassifier_ZeroVisibilityHoldsPose(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	require.Equal(t, Open, c.Classify(frameOf(landmark.OpenPalm())).Pose)

	got := c.Classify(frameOf(landmark.WithVisibility(landmark.Fist(), 0)))
	assert.Equal(t, Open, got.Pose, "an unseen hand must not be classified")
	assert.Zero(t, got.Confidence)
	assert.Equal(t, Open, c.LastValid())
}

func TestClassifier_LowVisibilityBeforeAnyPose(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	got := c.Classify(frameOf(landmark.WithVisibility(landmark.OpenPalm(), 0.2)))

	assert.Equal(t, Unknown, got.Pose)
}

func TestClassifier_AcceptanceThreshold(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	c.Classify(frameOf(landmark.Fist()))

	// 0.55 * 1.2 = 0.66 is below the 0.7 acceptance threshold
	weak := c.Classify(frameOf(landmark.WithVisibility(landmark.OpenPalm(), 0.55)))
	assert.Equal(t, Open, weak.Pose, "geometry is still reported")
	assert.InDelta(t, 0.66, weak.Confidence, 1e-9)
	assert.Equal(t, Fist, c.LastValid(), "weak classification is not held")

	// 0.6 * 1.2 = 0.72 is accepted
	c.Classify(frameOf(landmark.WithVisibility(landmark.OpenPalm(), 0.6)))
	assert.Equal(t, Open, c.LastValid())
}

func TestClassifier_Wave(t *testing.T) {
	waveFrames := func(c *Classifier, n int, amplitude float64) []Pose {
		var poses []Pose
		for i := 0; i < n; i++ {
			x := 0.5 - amplitude/2
			if i%2 == 1 {
				x = 0.5 + amplitude/2
			}
			h := landmark.MoveWristTo(landmark.OpenPalm(), x, 0.5)
			poses = append(poses, c.Classify(frameOf(h)).Pose)
		}
		return poses
	}

	t.Run("wave after history fills", func(t *testing.T) {
		c := NewClassifier(DefaultConfig())
		poses := waveFrames(c, 14, 0.2)

		for i := 0; i < 11; i++ {
			assert.Equal(t, Open, poses[i], "frame %d should be OPEN while history fills", i)
		}
		for i := 11; i < 14; i++ {
			assert.Equal(t, Wave, poses[i], "frame %d should be WAVE", i)
		}
	})

	t.Run("small motion stays open", func(t *testing.T) {
		c := NewClassifier(DefaultConfig())
		for i, p := range waveFrames(c, 30, 0.05) {
			assert.Equal(t, Open, p, "frame %d", i)
		}
	})

	t.Run("lost hand clears history", func(t *testing.T) {
		c := NewClassifier(DefaultConfig())
		waveFrames(c, 11, 0.2)
		c.Classify(nil)

		poses := waveFrames(c, 11, 0.2)
		for i, p := range poses {
			assert.Equal(t, Open, p, "frame %d", i)
		}
	})

	t.Run("fist motion is never a wave", func(t *testing.T) {
		c := NewClassifier(DefaultConfig())
		for i := 0; i < 20; i++ {
			x := 0.3
			if i%2 == 1 {
				x = 0.7
			}
			got := c.Classify(frameOf(landmark.MoveWristTo(landmark.Fist(), x, 0.5)))
			assert.Equal(t, Fist, got.Pose)
		}
	})
}

func TestClassifier_Reset(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	c.Classify(frameOf(landmark.Fist()))
	c.Reset()

	assert.Equal(t, Unknown, c.LastValid())
}

func TestClassifier_Timestamp(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewClassifier(DefaultConfig())
	c.SetNow(func() time.Time { return at })

	assert.Equal(t, at, c.Classify(frameOf(landmark.OpenPalm())).Timestamp)
	assert.Equal(t, at, c.Classify(nil).Timestamp)
}

func TestClassifier_IndependentInstances(t *testing.T) {
	a := NewClassifier(DefaultConfig())
	b := NewClassifier(DefaultConfig())

	a.Classify(frameOf(landmark.Fist()))

	assert.Equal(t, Fist, a.LastValid())
	assert.Equal(t, Unknown, b.LastValid())
}

func TestPose_Valid(t *testing.T) {
	assert.True(t, Wave.Valid())
	assert.True(t, Unknown.Valid())
	assert.False(t, Pose("THUMBS_UP").Valid())
}
