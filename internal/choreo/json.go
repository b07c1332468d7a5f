package choreo

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/target"
)

// maxChallengeSize bounds authored challenge files.
const maxChallengeSize = 1 << 20

// jsonChallenge is the wire form. Times are integer milliseconds.
type jsonChallenge struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Category        Category   `json:"category,omitempty"`
	BPM             int        `json:"bpm,omitempty"`
	StartingHealth  int        `json:"starting_health"`
	TotalDurationMs int64      `json:"total_duration_ms"`
	Steps           []jsonStep `json:"steps"`
}

type jsonStep struct {
	ID              string        `json:"id"`
	Type            Kind          `json:"type"`
	StartMs         int64         `json:"start_ms"`
	DurationMs      int64         `json:"duration_ms"`
	Pose            pose.Pose     `json:"pose"`
	Target          target.Target `json:"target"`
	Lethal          bool          `json:"lethal,omitempty"`
	WindowMs        int64         `json:"window_ms,omitempty"`
	MinimumHoldMs   int64         `json:"minimum_hold_ms,omitempty"`
	TolerancePx     int           `json:"tolerance_px,omitempty"`
	MaxActionTimeMs int64         `json:"max_action_time_ms,omitempty"`
	ForbiddenPoses  []pose.Pose   `json:"forbidden_poses,omitempty"`
}

// MarshalJSON encodes c in the wire form.
func (c Challenge) MarshalJSON() ([]byte, error) {
	out := jsonChallenge{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		Category:        c.Category,
		BPM:             c.BPM,
		StartingHealth:  c.StartingHealth,
		TotalDurationMs: c.TotalDuration.Milliseconds(),
		Steps:           make([]jsonStep, 0, len(c.Steps)),
	}
	for _, s := range c.Steps {
		js := jsonStep{
			ID:         s.ID,
			Type:       s.Kind(),
			StartMs:    s.Start.Milliseconds(),
			DurationMs: s.Duration.Milliseconds(),
			Pose:       s.Pose,
			Target:     s.Target,
			Lethal:     s.Lethal,
		}
		switch a := s.Action.(type) {
		case Hit:
			js.WindowMs = a.Window.Milliseconds()
		case Hold:
			js.MinimumHoldMs = a.MinimumHold.Milliseconds()
			js.TolerancePx = a.TolerancePx
		case Snap:
			js.MaxActionTimeMs = a.MaxActionTime.Milliseconds()
		case Wait:
			js.ForbiddenPoses = a.ForbiddenPoses
		}
		out.Steps = append(out.Steps, js)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire form. It does not validate; use LoadJSON for
// untrusted input.
func (c *Challenge) UnmarshalJSON(data []byte) error {
	var in jsonChallenge
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	steps := make([]Step, 0, len(in.Steps))
	for _, js := range in.Steps {
		s := Step{
			ID:       js.ID,
			Start:    msDuration(js.StartMs),
			Duration: msDuration(js.DurationMs),
			Pose:     js.Pose,
			Target:   js.Target,
			Lethal:   js.Lethal,
		}
		switch js.Type {
		case KindHit:
			s.Action = Hit{Window: msDuration(js.WindowMs)}
		case KindHold:
			s.Action = Hold{MinimumHold: msDuration(js.MinimumHoldMs), TolerancePx: js.TolerancePx}
		case KindSnap:
			s.Action = Snap{MaxActionTime: msDuration(js.MaxActionTimeMs)}
		case KindWait:
			s.Action = Wait{ForbiddenPoses: js.ForbiddenPoses}
		default:
			return fmt.Errorf("%w: step %q: unsupported type %q", ErrInvalidChallenge, js.ID, js.Type)
		}
		steps = append(steps, s)
	}

	*c = Challenge{
		ID:             in.ID,
		Name:           in.Name,
		Description:    in.Description,
		Category:       in.Category,
		BPM:            in.BPM,
		StartingHealth: in.StartingHealth,
		TotalDuration:  msDuration(in.TotalDurationMs),
		Steps:          steps,
	}
	return nil
}

// LoadJSON reads and validates one challenge.
func LoadJSON(r io.Reader) (Challenge, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxChallengeSize+1))
	if err != nil {
		return Challenge{}, fmt.Errorf("read challenge: %w", err)
	}
	if len(data) > maxChallengeSize {
		return Challenge{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidChallenge, maxChallengeSize)
	}

	var c Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return Challenge{}, fmt.Errorf("parse challenge: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Challenge{}, err
	}
	return c, nil
}

func msDuration(n int64) time.Duration {
	return time.Duration(n) * time.Millisecond
}
