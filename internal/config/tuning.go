// Package config loads the optional tuning file that overrides classifier,
// smoothing, mapping and judging constants.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/flinch/internal/engine"
	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/smoothing"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// TuningConfig holds optional overrides. A nil field keeps the consumer's
// default, so partial files are safe.
type TuningConfig struct {
	// Classifier
	PinchDistance    *float64 `json:"pinch_distance,omitempty"`
	WaveHistory      *int     `json:"wave_history,omitempty"`
	WaveThreshold    *float64 `json:"wave_threshold,omitempty"`
	MinVisibility    *float64 `json:"min_visibility,omitempty"`
	AcceptConfidence *float64 `json:"accept_confidence,omitempty"`

	// Smoother
	SlowAlpha   *float64 `json:"slow_alpha,omitempty"`
	FastAlpha   *float64 `json:"fast_alpha,omitempty"`
	VelocityMin *float64 `json:"velocity_min,omitempty"`
	VelocityMax *float64 `json:"velocity_max,omitempty"`

	// Mapper
	CenterThreshold *float64 `json:"center_threshold,omitempty"`

	// Judge
	Cooldown         *string  `json:"cooldown,omitempty"`     // duration string like "100ms"
	GraceWindow      *string  `json:"grace_window,omitempty"` // duration string like "150ms"
	GraceAllowance   *int     `json:"grace_allowance,omitempty"`
	MissDamage       *float64 `json:"miss_damage,omitempty"`
	WaitDamage       *float64 `json:"wait_damage,omitempty"`
	DriftDamageStep  *float64 `json:"drift_damage_step,omitempty"`
	DriftDamageCap   *float64 `json:"drift_damage_cap,omitempty"`
	PerfectThreshold *float64 `json:"perfect_threshold,omitempty"`
	PerfectScore     *int     `json:"perfect_score,omitempty"`
	ComboBonus       *int     `json:"combo_bonus,omitempty"`
	GoodScore        *int     `json:"good_score,omitempty"`

	// Pipeline
	FPS *int `json:"fps,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with every field unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a .json file of at most 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the set fields.
func (c *TuningConfig) Validate() error {
	unit := map[string]*float64{
		"min_visibility":    c.MinVisibility,
		"accept_confidence": c.AcceptConfidence,
		"slow_alpha":        c.SlowAlpha,
		"fast_alpha":        c.FastAlpha,
		"perfect_threshold": c.PerfectThreshold,
		"center_threshold":  c.CenterThreshold,
	}
	for name, v := range unit {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	nonNegative := map[string]*float64{
		"pinch_distance":    c.PinchDistance,
		"wave_threshold":    c.WaveThreshold,
		"velocity_min":      c.VelocityMin,
		"velocity_max":      c.VelocityMax,
		"miss_damage":       c.MissDamage,
		"wait_damage":       c.WaitDamage,
		"drift_damage_step": c.DriftDamageStep,
		"drift_damage_cap":  c.DriftDamageCap,
	}
	for name, v := range nonNegative {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative, got %f", name, *v)
		}
	}

	if c.VelocityMin != nil && c.VelocityMax != nil && *c.VelocityMax <= *c.VelocityMin {
		return fmt.Errorf("velocity_max (%f) must exceed velocity_min (%f)", *c.VelocityMax, *c.VelocityMin)
	}
	if c.WaveHistory != nil && *c.WaveHistory < 2 {
		return fmt.Errorf("wave_history must be at least 2, got %d", *c.WaveHistory)
	}
	if c.GraceAllowance != nil && *c.GraceAllowance < 0 {
		return fmt.Errorf("grace_allowance must not be negative, got %d", *c.GraceAllowance)
	}
	if c.FPS != nil && (*c.FPS < 1 || *c.FPS > 240) {
		return fmt.Errorf("fps must be between 1 and 240, got %d", *c.FPS)
	}

	for name, v := range map[string]*string{"cooldown": c.Cooldown, "grace_window": c.GraceWindow} {
		if v == nil || *v == "" {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, *v, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, *v)
		}
	}
	return nil
}

// ApplyClassifier overlays the classifier fields onto cfg.
func (c *TuningConfig) ApplyClassifier(cfg pose.Config) pose.Config {
	setFloat(&cfg.PinchDistance, c.PinchDistance)
	setInt(&cfg.WaveHistory, c.WaveHistory)
	setFloat(&cfg.WaveThreshold, c.WaveThreshold)
	setFloat(&cfg.MinVisibility, c.MinVisibility)
	setFloat(&cfg.AcceptConfidence, c.AcceptConfidence)
	return cfg
}

// ApplySmoother overlays the smoothing fields onto cfg.
func (c *TuningConfig) ApplySmoother(cfg smoothing.Config) smoothing.Config {
	setFloat(&cfg.SlowAlpha, c.SlowAlpha)
	setFloat(&cfg.FastAlpha, c.FastAlpha)
	setFloat(&cfg.VelocityMin, c.VelocityMin)
	setFloat(&cfg.VelocityMax, c.VelocityMax)
	return cfg
}

// GetCenterThreshold returns the mapper threshold or def.
func (c *TuningConfig) GetCenterThreshold(def float64) float64 {
	if c.CenterThreshold != nil {
		return *c.CenterThreshold
	}
	return def
}

// ApplyRules overlays the judging fields onto r.
func (c *TuningConfig) ApplyRules(r engine.Rules) engine.Rules {
	setDuration(&r.Cooldown, c.Cooldown)
	setDuration(&r.GraceWindow, c.GraceWindow)
	setInt(&r.GraceAllowance, c.GraceAllowance)
	setFloat(&r.MissDamage, c.MissDamage)
	setFloat(&r.WaitDamage, c.WaitDamage)
	setFloat(&r.DriftDamageStep, c.DriftDamageStep)
	setFloat(&r.DriftDamageCap, c.DriftDamageCap)
	setFloat(&r.PerfectThreshold, c.PerfectThreshold)
	setInt(&r.PerfectScore, c.PerfectScore)
	setInt(&r.ComboBonus, c.ComboBonus)
	setInt(&r.GoodScore, c.GoodScore)
	return r
}

// GetFPS returns the pipeline frame rate or def.
func (c *TuningConfig) GetFPS(def int) int {
	if c.FPS != nil {
		return *c.FPS
	}
	return def
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// setDuration assumes Validate already accepted v.
func setDuration(dst *time.Duration, v *string) {
	if v == nil || *v == "" {
		return
	}
	if d, err := time.ParseDuration(*v); err == nil {
		*dst = d
	}
}
