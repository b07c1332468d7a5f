package landmark

// MoveWristTo returns a copy of h translated so the wrist sits at (x, y).
func MoveWristTo(h Hand, x, y float64) Hand {
	dx := x - h.Points[Wrist].X
	dy := y - h.Points[Wrist].Y
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// WithVisibility returns a copy of h with every landmark's visibility set to v.
func WithVisibility(h Hand, v float64) Hand {
	for i := range h.Points {
		h.Points[i].Visibility = v
	}
	return h
}

func lm(x, y, z float64) Landmark {
	return Landmark{Point3D: Point3D{X: x, Y: y, Z: z}, Visibility: 1}
}

// Fist returns a preset Hand representing a closed fist.
// The thumb rests upward along the knuckles while the four fingers are curled.
func Fist() Hand {
	landmarks := Hand{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = lm(0.5, 0.8, 0.0)

	landmarks.Points[ThumbCMC] = lm(0.55, 0.75, 0.0)
	landmarks.Points[ThumbMCP] = lm(0.58, 0.65, 0.0)
	landmarks.Points[ThumbIP] = lm(0.58, 0.50, 0.0)
	landmarks.Points[ThumbTip] = lm(0.58, 0.35, 0.0)

	// Curled fingers: tips fold back below their knuckles (higher Y)
	landmarks.Points[IndexMCP] = lm(0.55, 0.70, -0.02)
	landmarks.Points[IndexPIP] = lm(0.55, 0.68, -0.05)
	landmarks.Points[IndexDIP] = lm(0.52, 0.70, -0.04)
	landmarks.Points[IndexTip] = lm(0.50, 0.72, -0.02)

	landmarks.Points[MiddleMCP] = lm(0.50, 0.68, -0.02)
	landmarks.Points[MiddlePIP] = lm(0.50, 0.66, -0.05)
	landmarks.Points[MiddleDIP] = lm(0.47, 0.68, -0.04)
	landmarks.Points[MiddleTip] = lm(0.45, 0.70, -0.02)

	landmarks.Points[RingMCP] = lm(0.45, 0.70, -0.02)
	landmarks.Points[RingPIP] = lm(0.45, 0.68, -0.05)
	landmarks.Points[RingDIP] = lm(0.42, 0.70, -0.04)
	landmarks.Points[RingTip] = lm(0.40, 0.72, -0.02)

	landmarks.Points[PinkyMCP] = lm(0.40, 0.72, -0.02)
	landmarks.Points[PinkyPIP] = lm(0.40, 0.70, -0.05)
	landmarks.Points[PinkyDIP] = lm(0.37, 0.72, -0.04)
	landmarks.Points[PinkyTip] = lm(0.35, 0.74, -0.02)

	return landmarks
}

// OpenPalm returns a preset Hand representing an open palm.
// All fingers are extended upward and the thumb points to the side.
func OpenPalm() Hand {
	landmarks := Hand{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = lm(0.5, 0.8, 0.0)

	landmarks.Points[ThumbCMC] = lm(0.55, 0.75, 0.02)
	landmarks.Points[ThumbMCP] = lm(0.62, 0.70, 0.03)
	landmarks.Points[ThumbIP] = lm(0.68, 0.65, 0.03)
	landmarks.Points[ThumbTip] = lm(0.73, 0.60, 0.03)

	landmarks.Points[IndexMCP] = lm(0.55, 0.68, 0.0)
	landmarks.Points[IndexPIP] = lm(0.57, 0.55, 0.0)
	landmarks.Points[IndexDIP] = lm(0.58, 0.45, 0.0)
	landmarks.Points[IndexTip] = lm(0.58, 0.35, 0.0)

	landmarks.Points[MiddleMCP] = lm(0.50, 0.66, 0.0)
	landmarks.Points[MiddlePIP] = lm(0.50, 0.52, 0.0)
	landmarks.Points[MiddleDIP] = lm(0.50, 0.40, 0.0)
	landmarks.Points[MiddleTip] = lm(0.50, 0.28, 0.0)

	landmarks.Points[RingMCP] = lm(0.45, 0.68, 0.0)
	landmarks.Points[RingPIP] = lm(0.43, 0.55, 0.0)
	landmarks.Points[RingDIP] = lm(0.42, 0.45, 0.0)
	landmarks.Points[RingTip] = lm(0.42, 0.35, 0.0)

	landmarks.Points[PinkyMCP] = lm(0.40, 0.70, 0.0)
	landmarks.Points[PinkyPIP] = lm(0.37, 0.60, 0.0)
	landmarks.Points[PinkyDIP] = lm(0.35, 0.50, 0.0)
	landmarks.Points[PinkyTip] = lm(0.34, 0.42, 0.0)

	return landmarks
}

// Pinch returns an open palm whose thumb tip touches the index tip.
func Pinch() Hand {
	landmarks := OpenPalm()

	landmarks.Points[ThumbMCP] = lm(0.60, 0.66, 0.01)
	landmarks.Points[ThumbIP] = lm(0.61, 0.50, 0.01)
	landmarks.Points[ThumbTip] = lm(0.60, 0.36, 0.0)

	return landmarks
}

// Pointing returns a hand with only the index finger extended.
func Pointing() Hand {
	landmarks := Fist()

	// Thumb tucked across the curled fingers
	landmarks.Points[ThumbMCP] = lm(0.56, 0.72, 0.0)
	landmarks.Points[ThumbIP] = lm(0.54, 0.73, -0.01)
	landmarks.Points[ThumbTip] = lm(0.50, 0.74, -0.02)

	landmarks.Points[IndexMCP] = lm(0.55, 0.68, 0.0)
	landmarks.Points[IndexPIP] = lm(0.57, 0.55, 0.0)
	landmarks.Points[IndexDIP] = lm(0.58, 0.45, 0.0)
	landmarks.Points[IndexTip] = lm(0.58, 0.35, 0.0)

	return landmarks
}
