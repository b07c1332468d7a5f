// Package target maps a normalized wrist position to a screen zone.
package target

import (
	"math"

	"github.com/ayusman/flinch/internal/landmark"
)

// Target is one of the five screen zones, or None when no hand is tracked.
type Target string

const (
	Center Target = "C"
	Left   Target = "L"
	Right  Target = "R"
	Up     Target = "U"
	Down   Target = "D"
	None   Target = "NONE"
)

// Valid reports whether t is a known zone or None.
func (t Target) Valid() bool {
	switch t {
	case Center, Left, Right, Up, Down, None:
		return true
	}
	return false
}

// DefaultCenterThreshold is the half-width of the center square.
const DefaultCenterThreshold = 0.15

// Mapper splits the frame into a center square and four directional zones.
type Mapper struct {
	centerThreshold float64
}

// NewMapper creates a Mapper. A non-positive threshold uses the default.
func NewMapper(centerThreshold float64) *Mapper {
	if centerThreshold <= 0 {
		centerThreshold = DefaultCenterThreshold
	}
	return &Mapper{centerThreshold: centerThreshold}
}

// Map returns the zone containing p. The center square wins; outside it the
// dominant axis picks the zone, ties going to the vertical axis.
func (m *Mapper) Map(p landmark.Point3D) Target {
	dx := p.X - 0.5
	dy := p.Y - 0.5

	if math.Abs(dx) < m.centerThreshold && math.Abs(dy) < m.centerThreshold {
		return Center
	}

	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return Right
		}
		return Left
	}
	if dy > 0 {
		return Down
	}
	return Up
}
