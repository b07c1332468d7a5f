// Package smoothing stabilizes a noisy per-frame point stream.
package smoothing

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/flinch/internal/landmark"
)

// Config holds the smoothing factors. Velocities are in normalized units per
// millisecond.
type Config struct {
	SlowAlpha   float64
	FastAlpha   float64
	VelocityMin float64
	VelocityMax float64
}

// DefaultConfig returns the standard smoothing parameters.
func DefaultConfig() Config {
	return Config{
		SlowAlpha:   0.25,
		FastAlpha:   0.85,
		VelocityMin: 0.001,
		VelocityMax: 0.005,
	}
}

// Smoother is a velocity-adaptive exponential moving average. Near-stationary
// input is smoothed heavily; fast motion passes through with little lag.
// A Smoother tracks a single point stream and is not safe for concurrent use.
type Smoother struct {
	config Config
	seeded bool
	last   landmark.Point3D
	lastTS time.Duration
}

// New creates a Smoother.
func New(config Config) *Smoother {
	return &Smoother{config: config}
}

// Smooth filters p observed at ts. The first call after construction or Reset
// returns p unchanged. A non-increasing timestamp returns the previous output.
func (s *Smoother) Smooth(p landmark.Point3D, ts time.Duration) landmark.Point3D {
	if !s.seeded {
		s.seeded = true
		s.last = p
		s.lastTS = ts
		return p
	}

	dt := ts - s.lastTS
	if dt <= 0 {
		return s.last
	}

	dist := floats.Distance([]float64{p.X, p.Y}, []float64{s.last.X, s.last.Y}, 2)
	ms := float64(dt) / float64(time.Millisecond)
	alpha := s.alpha(dist / ms)

	s.last = landmark.Point3D{
		X: alpha*p.X + (1-alpha)*s.last.X,
		Y: alpha*p.Y + (1-alpha)*s.last.Y,
		Z: alpha*p.Z + (1-alpha)*s.last.Z,
	}
	s.lastTS = ts

	return s.last
}

// Reset clears the seed so the next call re-seeds.
func (s *Smoother) Reset() {
	s.seeded = false
	s.last = landmark.Point3D{}
	s.lastTS = 0
}

func (s *Smoother) alpha(velocity float64) float64 {
	span := s.config.VelocityMax - s.config.VelocityMin
	factor := 1.0
	if span > 0 {
		factor = (velocity - s.config.VelocityMin) / span
	}
	factor = min(max(factor, 0), 1)
	return s.config.SlowAlpha + (s.config.FastAlpha-s.config.SlowAlpha)*factor
}
