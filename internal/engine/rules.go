package engine

import (
	"time"

	"github.com/ayusman/flinch/internal/pose"
)

// Rules holds the judging constants.
type Rules struct {
	// Cooldown debounces one physical gesture across consecutive frames.
	Cooldown time.Duration
	// GraceWindow is how long a HOLD may flicker off target without penalty.
	GraceWindow time.Duration
	// GraceAllowance is the number of grace windows granted per HOLD.
	GraceAllowance int

	MissDamage      float64
	WaitDamage      float64
	DriftDamageStep float64
	DriftDamageCap  float64

	// PerfectThreshold is the perfection above which a hit is PERFECT.
	PerfectThreshold float64
	PerfectScore     int
	ComboBonus       int
	GoodScore        int

	// SnapTrigger is the pose that completes a SNAP step.
	SnapTrigger pose.Pose
}

// DefaultRules returns the standard judging constants.
func DefaultRules() Rules {
	return Rules{
		Cooldown:         100 * time.Millisecond,
		GraceWindow:      150 * time.Millisecond,
		GraceAllowance:   3,
		MissDamage:       20,
		WaitDamage:       10,
		DriftDamageStep:  5,
		DriftDamageCap:   20,
		PerfectThreshold: 0.9,
		PerfectScore:     100,
		ComboBonus:       10,
		GoodScore:        50,
		SnapTrigger:      pose.Pinch,
	}
}

