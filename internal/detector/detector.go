package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/flinch/internal/landmark"
)

// Detector is the per-frame landmark source. The pipeline judges only the
// first hand it returns.
type Detector interface {
	// Detect returns every full hand found in frame, or an empty slice when
	// none is visible. Partial hands are never returned.
	Detect(frame *gocv.Mat) ([]landmark.Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config tunes the landmark service.
type Config struct {
	// MaxHands caps the hands the service tracks.
	MaxHands int

	// MinConfidence is the score a new hand needs before it is reported.
	MinConfidence float64

	// MinTrackingConf is the score below which the service drops a tracked
	// hand and searches again.
	MinTrackingConf float64
}

// DefaultConfig returns the single-hand service settings.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
