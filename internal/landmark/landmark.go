// Package landmark holds the hand landmark model shared by the landmark
// source and the per-frame judgment stages. It has no capture dependencies.
package landmark

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist     = 0
	ThumbCMC  = 1
	ThumbMCP  = 2
	ThumbIP   = 3
	ThumbTip  = 4
	IndexMCP  = 5
	IndexPIP  = 6
	IndexDIP  = 7
	IndexTip  = 8
	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12
	RingMCP   = 13
	RingPIP   = 14
	RingDIP   = 15
	RingTip   = 16
	PinkyMCP  = 17
	PinkyPIP  = 18
	PinkyDIP  = 19
	PinkyTip  = 20

	// Count is the number of landmarks in a full hand frame.
	Count = 21
)

// Point3D is a position in normalized camera space. X and Y are in [0,1]
// with Y growing downward; Z is a relative depth proxy and may be zero.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmark is one tracked hand joint.
type Landmark struct {
	Point3D
	// Visibility is the source's confidence in [0,1]. Sources that do not
	// report one set 1; a reported 0 means the joint was not seen.
	Visibility float64 `json:"visibility"`
}

// Hand is one detected hand.
type Hand struct {
	Points     [Count]Landmark `json:"points"`
	Handedness string          `json:"handedness"` // "Left" or "Right"
	Score      float64         `json:"score"`
}

// Frame returns the landmarks as an ordered slice, the shape the pose
// classifier consumes.
func (h *Hand) Frame() []Landmark {
	if h == nil {
		return nil
	}
	frame := make([]Landmark, Count)
	copy(frame, h.Points[:])
	return frame
}

// WristPosition returns the wrist joint position.
func (h *Hand) WristPosition() Point3D {
	return h.Points[Wrist].Point3D
}

// Distance calculates the Euclidean distance between two 3D points.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
