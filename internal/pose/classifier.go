// Package pose turns one frame of hand landmarks into a discrete semantic pose.
package pose

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/flinch/internal/landmark"
)

// Pose is a discrete hand-shape classification.
type Pose string

const (
	Open    Pose = "OPEN"
	Fist    Pose = "FIST"
	Pinch   Pose = "PINCH"
	Point   Pose = "POINT"
	Wave    Pose = "WAVE"
	Unknown Pose = "UNKNOWN"
)

// Valid reports whether p is one of the known poses.
func (p Pose) Valid() bool {
	switch p {
	case Open, Fist, Pinch, Point, Wave, Unknown:
		return true
	}
	return false
}

// Classification is the result of classifying one frame.
type Classification struct {
	Pose       Pose      `json:"pose"`
	Confidence float64   `json:"confidence"` // in [0,1]
	Timestamp  time.Time `json:"timestamp"`
}

// Config holds classifier thresholds. Distances are in normalized units.
type Config struct {
	// PinchDistance is the thumb-index tip distance below which the hand pinches.
	PinchDistance float64
	// WaveHistory is the number of wrist x samples kept for wave detection.
	WaveHistory int
	// WaveThreshold is the wrist x range that turns OPEN into WAVE.
	WaveThreshold float64
	// MinVisibility is the mean visibility below which the last valid pose is held.
	MinVisibility float64
	// ConfidenceGain scales mean visibility into confidence.
	ConfidenceGain float64
	// AcceptConfidence is the confidence a pose needs to become the held pose.
	AcceptConfidence float64
}

// DefaultConfig returns the standard classifier thresholds.
func DefaultConfig() Config {
	return Config{
		PinchDistance:    0.04,
		WaveHistory:      12,
		WaveThreshold:    0.08,
		MinVisibility:    0.5,
		ConfidenceGain:   1.2,
		AcceptConfidence: 0.7,
	}
}

// Classifier classifies hand landmark frames. It keeps a short wrist history
// for wave detection and the last confident pose for occlusion hysteresis, so
// one instance serves exactly one tracked hand.
type Classifier struct {
	config       Config
	lastValid    Pose
	wristHistory []float64
	now          func() time.Time
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(config Config) *Classifier {
	if config.WaveHistory <= 0 {
		config.WaveHistory = DefaultConfig().WaveHistory
	}
	return &Classifier{
		config:       config,
		lastValid:    Unknown,
		wristHistory: make([]float64, 0, config.WaveHistory),
		now:          time.Now,
	}
}

// SetNow replaces the timestamp source.
func (c *Classifier) SetNow(now func() time.Time) {
	c.now = now
}

// LastValid returns the pose held for low-visibility frames.
func (c *Classifier) LastValid() Pose {
	return c.lastValid
}

// Reset clears wrist history and the held pose.
func (c *Classifier) Reset() {
	c.wristHistory = c.wristHistory[:0]
	c.lastValid = Unknown
}

// Classify evaluates one frame. Rules are priority ordered: PINCH, FIST,
// POINT, then OPEN (refined to WAVE on sustained lateral wrist motion).
func (c *Classifier) Classify(frame []landmark.Landmark) Classification {
	ts := c.now()

	if len(frame) < landmark.Count {
		c.wristHistory = c.wristHistory[:0]
		return Classification{Pose: Unknown, Confidence: 0, Timestamp: ts}
	}

	c.pushWrist(frame[landmark.Wrist].X)

	visibility := make([]float64, landmark.Count)
	for i := 0; i < landmark.Count; i++ {
		visibility[i] = frame[i].Visibility
	}
	meanVisibility := floats.Sum(visibility) / landmark.Count

	if meanVisibility < c.config.MinVisibility {
		return Classification{Pose: c.lastValid, Confidence: meanVisibility, Timestamp: ts}
	}

	p := c.detect(frame)
	confidence := math.Min(meanVisibility*c.config.ConfidenceGain, 1.0)

	if confidence >= c.config.AcceptConfidence {
		c.lastValid = p
	}

	return Classification{Pose: p, Confidence: confidence, Timestamp: ts}
}

func (c *Classifier) pushWrist(x float64) {
	if len(c.wristHistory) >= c.config.WaveHistory {
		copy(c.wristHistory, c.wristHistory[1:])
		c.wristHistory = c.wristHistory[:c.config.WaveHistory-1]
	}
	c.wristHistory = append(c.wristHistory, x)
}

func (c *Classifier) detect(l []landmark.Landmark) Pose {
	if distance(l[landmark.ThumbTip], l[landmark.IndexTip]) < c.config.PinchDistance {
		return Pinch
	}

	index := extended(l, landmark.IndexTip, landmark.IndexMCP)
	middle := extended(l, landmark.MiddleTip, landmark.MiddleMCP)
	ring := extended(l, landmark.RingTip, landmark.RingMCP)
	pinky := extended(l, landmark.PinkyTip, landmark.PinkyMCP)

	if curled(l, landmark.IndexTip, landmark.IndexMCP) && curled(l, landmark.MiddleTip, landmark.MiddleMCP) &&
		curled(l, landmark.RingTip, landmark.RingMCP) && curled(l, landmark.PinkyTip, landmark.PinkyMCP) {
		return Fist
	}

	if index && curled(l, landmark.MiddleTip, landmark.MiddleMCP) &&
		curled(l, landmark.RingTip, landmark.RingMCP) && curled(l, landmark.PinkyTip, landmark.PinkyMCP) {
		return Point
	}

	if index && middle && ring && pinky {
		if c.waving() {
			return Wave
		}
		return Open
	}

	return Unknown
}

// waving reports whether a full wrist history spans more than the wave threshold.
func (c *Classifier) waving() bool {
	if len(c.wristHistory) < c.config.WaveHistory {
		return false
	}
	return floats.Max(c.wristHistory)-floats.Min(c.wristHistory) > c.config.WaveThreshold
}

// Y grows downward, so an extended finger has its tip above (smaller Y than) its base.
func extended(l []landmark.Landmark, tip, base int) bool {
	return l[tip].Y < l[base].Y
}

func curled(l []landmark.Landmark, tip, base int) bool {
	return l[tip].Y > l[base].Y
}

func distance(a, b landmark.Landmark) float64 {
	return floats.Distance(
		[]float64{a.X, a.Y, a.Z},
		[]float64{b.X, b.Y, b.Z},
		2,
	)
}
