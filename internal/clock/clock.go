// Package clock provides the run clock that drives step timing.
//
// Each run owns its own Clock. Elapsed time excludes every paused interval,
// so a paused and resumed run judges steps exactly as an uninterrupted one.
package clock

import (
	"sync"
	"time"
)

// TimeSource supplies monotonic readings to a Clock.
type TimeSource interface {
	Now() time.Time
}

// RealSource reads the wall clock. time.Now carries a monotonic reading,
// so differences between two calls are immune to wall clock jumps.
type RealSource struct{}

// Now returns the current time.
func (RealSource) Now() time.Time {
	return time.Now()
}

// ManualSource is a manually advanced TimeSource for tests and replays.
type ManualSource struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualSource creates a ManualSource set to t.
func NewManualSource(t time.Time) *ManualSource {
	return &ManualSource{now: t}
}

// Now returns the current manual time.
func (s *ManualSource) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the manual time forward by d.
func (s *ManualSource) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

// Set moves the manual time to t.
func (s *ManualSource) Set(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = t
}

// Clock measures elapsed run time with pause and resume support.
// The zero value is not usable; construct with New.
type Clock struct {
	source      TimeSource
	started     bool
	startTime   time.Time
	pausedTotal time.Duration
	pauseStart  time.Time
	paused      bool
}

// New creates a Clock reading from source. A nil source uses RealSource.
func New(source TimeSource) *Clock {
	if source == nil {
		source = RealSource{}
	}
	return &Clock{source: source}
}

// Start resets the clock and arms a new origin at the current time.
func (c *Clock) Start() {
	c.startTime = c.source.Now()
	c.started = true
	c.pausedTotal = 0
	c.pauseStart = time.Time{}
	c.paused = false
}

// Pause freezes elapsed time. Pausing a paused or unstarted clock is a no-op.
func (c *Clock) Pause() {
	if !c.started || c.paused {
		return
	}
	c.pauseStart = c.source.Now()
	c.paused = true
}

// Resume continues elapsed time, discounting the paused interval.
func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	c.pausedTotal += c.source.Now().Sub(c.pauseStart)
	c.pauseStart = time.Time{}
	c.paused = false
}

// Elapsed returns the time since Start minus all paused time.
// It returns zero before Start and the frozen value while paused.
func (c *Clock) Elapsed() time.Duration {
	if !c.started {
		return 0
	}
	current := c.source.Now()
	if c.paused {
		current = c.pauseStart
	}
	return current.Sub(c.startTime) - c.pausedTotal
}

// Reset clears all state. Elapsed returns zero until the next Start.
func (c *Clock) Reset() {
	c.started = false
	c.startTime = time.Time{}
	c.pausedTotal = 0
	c.pauseStart = time.Time{}
	c.paused = false
}

// IsRunning reports whether the clock is started and not paused.
func (c *Clock) IsRunning() bool {
	return c.started && !c.paused
}

// Now returns the current reading of the clock's time source.
func (c *Clock) Now() time.Time {
	return c.source.Now()
}

// IsPaused reports whether the clock is paused.
func (c *Clock) IsPaused() bool {
	return c.paused
}
