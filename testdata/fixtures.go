// Package testdata holds authored challenges and scripted hand takes used by
// end-to-end tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/landmark"
	"github.com/ayusman/flinch/internal/pose"
)

//go:embed challenges/*.json takes/*.json
var fixturesFS embed.FS

// LoadChallenge loads challenges/<name>.json.
func LoadChallenge(name string) (choreo.Challenge, error) {
	f, err := fixturesFS.Open("challenges/" + name + ".json")
	if err != nil {
		return choreo.Challenge{}, fmt.Errorf("load challenge %s: %w", name, err)
	}
	defer f.Close()

	c, err := choreo.LoadJSON(f)
	if err != nil {
		return choreo.Challenge{}, fmt.Errorf("load challenge %s: %w", name, err)
	}
	return c, nil
}

// Challenges loads every authored challenge.
func Challenges() ([]choreo.Challenge, error) {
	entries, err := fixturesFS.ReadDir("challenges")
	if err != nil {
		return nil, err
	}

	var challenges []choreo.Challenge
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		c, err := LoadChallenge(strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}
	return challenges, nil
}

// Frame is one scripted detector result at T into the run.
type Frame struct {
	T     time.Duration
	Hands []landmark.Hand
}

// Take is a scripted performance of one challenge.
type Take struct {
	Challenge string
	Frames    []Frame
}

type jsonTake struct {
	Challenge string      `json:"challenge"`
	Frames    []jsonFrame `json:"frames"`
}

// jsonFrame without a pose is a frame with no hand.
type jsonFrame struct {
	TMs  int64     `json:"t_ms"`
	Pose pose.Pose `json:"pose"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// LoadTake loads takes/<name>.json.
func LoadTake(name string) (Take, error) {
	data, err := fixturesFS.ReadFile("takes/" + name + ".json")
	if err != nil {
		return Take{}, fmt.Errorf("load take %s: %w", name, err)
	}

	var in jsonTake
	if err := json.Unmarshal(data, &in); err != nil {
		return Take{}, fmt.Errorf("parse take %s: %w", name, err)
	}

	take := Take{Challenge: in.Challenge, Frames: make([]Frame, 0, len(in.Frames))}
	for i, f := range in.Frames {
		frame := Frame{T: time.Duration(f.TMs) * time.Millisecond}
		if f.Pose != "" {
			hand, err := Hand(f.Pose, f.X, f.Y)
			if err != nil {
				return Take{}, fmt.Errorf("take %s frame %d: %w", name, i, err)
			}
			frame.Hands = []landmark.Hand{hand}
		}
		take.Frames = append(take.Frames, frame)
	}
	return take, nil
}

// Hand returns a hand showing p with its wrist at (x, y).
func Hand(p pose.Pose, x, y float64) (landmark.Hand, error) {
	var h landmark.Hand
	switch p {
	case pose.Open:
		h = landmark.OpenPalm()
	case pose.Fist:
		h = landmark.Fist()
	case pose.Pinch:
		h = landmark.Pinch()
	case pose.Point:
		h = landmark.Pointing()
	default:
		return landmark.Hand{}, fmt.Errorf("no hand preset for pose %q", p)
	}
	return landmark.MoveWristTo(h, x, y), nil
}
