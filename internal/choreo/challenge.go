package choreo

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/target"
)

var (
	// ErrInvalidChallenge is wrapped by every validation failure.
	ErrInvalidChallenge = errors.New("invalid challenge")
	// ErrUnknownChallenge is returned for ids missing from a Registry.
	ErrUnknownChallenge = errors.New("unknown challenge")
	// ErrUnknownDifficulty is returned by ParseDifficulty.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// MaxHealth is the health ceiling of every run.
const MaxHealth = 100

// Category groups challenges in the catalog.
type Category string

const (
	Velocity  Category = "VELOCITY"
	Stability Category = "STABILITY"
	Precision Category = "PRECISION"
	Rhythm    Category = "RHYTHM"
)

// Challenge is an ordered, time-sorted choreography plus run metadata.
type Challenge struct {
	ID             string
	Name           string
	Description    string
	Category       Category
	BPM            int
	StartingHealth int
	TotalDuration  time.Duration
	Steps          []Step
}

// Clone returns a deep copy of c.
func (c Challenge) Clone() Challenge {
	steps := make([]Step, len(c.Steps))
	for i, s := range c.Steps {
		steps[i] = s.Clone()
	}
	c.Steps = steps
	return c
}

// Scaled derives the copy of c played at difficulty d: HIT windows are
// multiplied by the tier's window factor and, at the lethal tier, every step
// is marked lethal. c itself is never modified.
func (c Challenge) Scaled(d Difficulty) Challenge {
	mod := d.Modifier()
	scaled := c.Clone()
	for i := range scaled.Steps {
		step := &scaled.Steps[i]
		if hit, ok := step.Action.(Hit); ok {
			hit.Window = scaleDuration(hit.Window, mod.Window)
			step.Action = hit
		}
		if mod.Lethal {
			step.Lethal = true
		}
	}
	return scaled
}

func scaleDuration(d time.Duration, factor float64) time.Duration {
	return time.Duration(math.Round(float64(d) * factor))
}

// Validate checks the structural rules a Judge relies on.
func (c Challenge) Validate() error {
	if c.ID == "" {
		return invalid("missing id")
	}
	if len(c.Steps) == 0 {
		return invalid("%s: no steps", c.ID)
	}
	if c.TotalDuration <= 0 {
		return invalid("%s: total duration must be positive", c.ID)
	}
	if c.StartingHealth <= 0 || c.StartingHealth > MaxHealth {
		return invalid("%s: starting health %d outside (0, %d]", c.ID, c.StartingHealth, MaxHealth)
	}

	seen := make(map[string]bool, len(c.Steps))
	for i, s := range c.Steps {
		if s.ID == "" {
			return invalid("%s: step %d: missing id", c.ID, i)
		}
		if seen[s.ID] {
			return invalid("%s: duplicate step id %q", c.ID, s.ID)
		}
		seen[s.ID] = true

		if err := s.validate(); err != nil {
			return invalid("%s: step %q: %v", c.ID, s.ID, err)
		}
		if i > 0 && s.Start < c.Steps[i-1].Start {
			return invalid("%s: step %q starts before the previous step", c.ID, s.ID)
		}
	}
	return nil
}

func (s Step) validate() error {
	if s.Start < 0 {
		return errors.New("negative start")
	}
	if s.Duration < 0 {
		return errors.New("negative duration")
	}
	if !s.Pose.Valid() || s.Pose == pose.Unknown {
		return fmt.Errorf("invalid pose %q", s.Pose)
	}
	if !s.Target.Valid() || s.Target == target.None {
		return fmt.Errorf("invalid target %q", s.Target)
	}

	switch a := s.Action.(type) {
	case Hit:
		if a.Window <= 0 {
			return errors.New("hit window must be positive")
		}
	case Hold:
		if a.MinimumHold < 0 {
			return errors.New("negative minimum hold")
		}
		if a.MinimumHold > s.Duration {
			return errors.New("minimum hold exceeds duration")
		}
	case Snap:
		if a.MaxActionTime <= 0 {
			return errors.New("max action time must be positive")
		}
	case Wait:
		for _, p := range a.ForbiddenPoses {
			if !p.Valid() {
				return fmt.Errorf("invalid forbidden pose %q", p)
			}
		}
	case nil:
		return errors.New("missing action")
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidChallenge, fmt.Sprintf(format, args...))
}
