package choreo

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/target"
)

// Registry is a catalog of challenges keyed by upper-case id.
type Registry struct {
	mu         sync.RWMutex
	challenges map[string]Challenge
	order      []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{challenges: make(map[string]Challenge)}
}

// DefaultRegistry returns a Registry holding the built-in challenges.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range Builtin() {
		if err := r.Register(c); err != nil {
			panic(fmt.Sprintf("builtin challenge: %v", err))
		}
	}
	return r
}

// Register validates c and adds it, replacing any challenge with the same id.
func (r *Registry) Register(c Challenge) error {
	if err := c.Validate(); err != nil {
		return err
	}

	key := strings.ToUpper(c.ID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.challenges[key]; !exists {
		r.order = append(r.order, key)
	}
	r.challenges[key] = c.Clone()
	return nil
}

// Get returns a copy of the challenge with the given id.
func (r *Registry) Get(id string) (Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.challenges[strings.ToUpper(id)]
	if !ok {
		return Challenge{}, fmt.Errorf("%w: %q", ErrUnknownChallenge, id)
	}
	return c.Clone(), nil
}

// List returns copies of all challenges in registration order.
func (r *Registry) List() []Challenge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Challenge, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.challenges[key].Clone())
	}
	return result
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Builtin returns the official challenges.
func Builtin() []Challenge {
	return []Challenge{
		{
			ID:             "BLINK",
			Name:           "Neural Link: Blink",
			Description:    "Pure reflex. Wait for the signal, then pinch.",
			Category:       Precision,
			BPM:            60,
			StartingHealth: 100,
			TotalDuration:  ms(5000),
			Steps: []Step{
				{ID: "blink_wait", Start: 0, Duration: ms(2000), Pose: pose.Open, Target: target.Center, Action: Wait{}},
				{ID: "blink_hit", Start: ms(2000), Duration: ms(800), Pose: pose.Pinch, Target: target.Center, Lethal: true, Action: Hit{Window: ms(800)}},
			},
		},
		{
			ID:             "HOLD",
			Name:           "Kinetic Lock: Hold",
			Description:    "Stability under pressure. Hold each pose as it changes.",
			Category:       Stability,
			BPM:            100,
			StartingHealth: 100,
			TotalDuration:  ms(8000),
			Steps: []Step{
				{ID: "hold_1", Start: 0, Duration: ms(2000), Pose: pose.Fist, Target: target.Center, Action: Hold{MinimumHold: ms(1800), TolerancePx: 20}},
				{ID: "hold_2", Start: ms(2000), Duration: ms(2000), Pose: pose.Open, Target: target.Left, Action: Hold{MinimumHold: ms(1800), TolerancePx: 20}},
				{ID: "hold_3", Start: ms(4000), Duration: ms(2000), Pose: pose.Point, Target: target.Right, Action: Hold{MinimumHold: ms(1800), TolerancePx: 20}},
			},
		},
		{
			ID:             "SNAP",
			Name:           "Burst: Snap",
			Description:    "Rhythmic precision. Three fast strikes in sequence.",
			Category:       Velocity,
			BPM:            120,
			StartingHealth: 100,
			TotalDuration:  ms(6000),
			Steps: []Step{
				{ID: "snap_1", Start: 0, Duration: ms(200), Pose: pose.Pinch, Target: target.Center, Action: Snap{MaxActionTime: ms(200)}},
				{ID: "snap_wait_1", Start: ms(200), Duration: ms(1000), Pose: pose.Open, Target: target.Center, Action: Wait{}},
				{ID: "snap_2", Start: ms(1200), Duration: ms(200), Pose: pose.Pinch, Target: target.Center, Action: Snap{MaxActionTime: ms(200)}},
				{ID: "snap_wait_2", Start: ms(1400), Duration: ms(1000), Pose: pose.Open, Target: target.Center, Action: Wait{}},
				{ID: "snap_3", Start: ms(2400), Duration: ms(200), Pose: pose.Pinch, Target: target.Center, Action: Snap{MaxActionTime: ms(200)}},
			},
		},
		{
			ID:             "LASER",
			Name:           "Vector: Laser",
			Description:    "Spatial movement. Hit targets in a cross pattern.",
			Category:       Velocity,
			BPM:            110,
			StartingHealth: 100,
			TotalDuration:  ms(10000),
			Steps: []Step{
				{ID: "laser_l", Start: 0, Duration: ms(1000), Pose: pose.Point, Target: target.Left, Action: Hit{Window: ms(1000)}},
				{ID: "laser_r", Start: ms(1500), Duration: ms(1000), Pose: pose.Point, Target: target.Right, Action: Hit{Window: ms(1000)}},
				{ID: "laser_u", Start: ms(3000), Duration: ms(1000), Pose: pose.Point, Target: target.Up, Action: Hit{Window: ms(1000)}},
				{ID: "laser_d", Start: ms(4500), Duration: ms(1000), Pose: pose.Point, Target: target.Down, Action: Hit{Window: ms(1000)}},
				{ID: "laser_c", Start: ms(6000), Duration: ms(1000), Pose: pose.Point, Target: target.Center, Lethal: true, Action: Hit{Window: ms(1000)}},
			},
		},
		{
			ID:             "SWITCH",
			Name:           "Context: Switch",
			Description:    "Fast simultaneous pose and target changes.",
			Category:       Rhythm,
			BPM:            130,
			StartingHealth: 100,
			TotalDuration:  ms(9000),
			Steps: []Step{
				{ID: "switch_1", Start: 0, Duration: ms(800), Pose: pose.Fist, Target: target.Left, Action: Hit{Window: ms(800)}},
				{ID: "switch_2", Start: ms(1500), Duration: ms(800), Pose: pose.Open, Target: target.Right, Action: Hit{Window: ms(800)}},
				{ID: "switch_3", Start: ms(3000), Duration: ms(800), Pose: pose.Point, Target: target.Up, Action: Hit{Window: ms(800)}},
				{ID: "switch_4", Start: ms(4500), Duration: ms(800), Pose: pose.Pinch, Target: target.Down, Action: Hit{Window: ms(800)}},
				{ID: "switch_5", Start: ms(6000), Duration: ms(800), Pose: pose.Fist, Target: target.Center, Lethal: true, Action: Hit{Window: ms(800)}},
			},
		},
		{
			ID:             "DRIFT",
			Name:           "Static: Drift",
			Description:    "Centripetal endurance. Stay centered through the fatigue.",
			Category:       Stability,
			BPM:            60,
			StartingHealth: 100,
			TotalDuration:  ms(10000),
			Steps: []Step{
				{ID: "drift_main", Start: 0, Duration: ms(10000), Pose: pose.Open, Target: target.Center, Action: Hold{MinimumHold: ms(9500), TolerancePx: 30}},
			},
		},
	}
}
