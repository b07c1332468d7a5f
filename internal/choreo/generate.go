package choreo

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/target"
)

var (
	generatorPoses   = []pose.Pose{pose.Open, pose.Fist, pose.Pinch, pose.Point}
	generatorTargets = []target.Target{target.Center, target.Left, target.Right, target.Up, target.Down}
)

// GenerateOptions parameterizes Generate.
type GenerateOptions struct {
	ID         string
	Name       string
	BPM        int
	Bars       int
	Complexity int // 0 to 4; higher adds denser beats and more poses
	// StartingHealth defaults to MaxHealth.
	StartingHealth int
	// Rand must be supplied; a seeded source makes output reproducible.
	Rand *rand.Rand
}

// Generate builds a HIT-only choreography with one candidate step per beat.
// Each beat is kept with probability 0.3+0.1*complexity and draws its pose from
// the first complexity+1 basic poses. The window shrinks with tempo down to
// 120ms. If every beat is skipped the first beat is kept so the result is
// always playable.
func Generate(opts GenerateOptions) (Challenge, error) {
	if opts.Rand == nil {
		return Challenge{}, errors.New("generate: nil rand")
	}
	if opts.BPM <= 0 || opts.Bars <= 0 {
		return Challenge{}, fmt.Errorf("%w: bpm and bars must be positive", ErrInvalidChallenge)
	}
	if opts.ID == "" {
		opts.ID = fmt.Sprintf("GEN_%d_%d_%d", opts.BPM, opts.Bars, opts.Complexity)
	}
	if opts.StartingHealth == 0 {
		opts.StartingHealth = MaxHealth
	}

	complexity := min(max(opts.Complexity, 0), len(generatorPoses))
	poolSize := min(len(generatorPoses), complexity+1)
	keep := 0.3 + float64(complexity)*0.1

	beat := time.Duration(float64(time.Minute) / float64(opts.BPM))
	window := ms(max(120, int(300-float64(opts.BPM)*0.5)))
	beats := opts.Bars * 4

	var steps []Step
	for i := 1; i <= beats; i++ {
		if opts.Rand.Float64() > keep {
			continue
		}
		steps = append(steps, generatedStep(len(steps), time.Duration(i)*beat, window,
			generatorPoses[opts.Rand.IntN(poolSize)],
			generatorTargets[opts.Rand.IntN(len(generatorTargets))]))
	}
	if len(steps) == 0 {
		steps = append(steps, generatedStep(0, beat, window,
			generatorPoses[opts.Rand.IntN(poolSize)],
			generatorTargets[opts.Rand.IntN(len(generatorTargets))]))
	}

	c := Challenge{
		ID:             opts.ID,
		Name:           opts.Name,
		Category:       Rhythm,
		BPM:            opts.BPM,
		StartingHealth: opts.StartingHealth,
		TotalDuration:  time.Duration(beats+1)*beat + window,
		Steps:          steps,
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	if err := c.Validate(); err != nil {
		return Challenge{}, err
	}
	return c, nil
}

func generatedStep(n int, at, window time.Duration, p pose.Pose, t target.Target) Step {
	return Step{
		ID:       fmt.Sprintf("beat_%02d", n+1),
		Start:    at,
		Duration: window,
		Pose:     p,
		Target:   t,
		Action:   Hit{Window: window},
	}
}
