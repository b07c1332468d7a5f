package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/flinch/internal/engine"
	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/smoothing"
	"github.com/ayusman/flinch/internal/target"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTuningConfig_Partial(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
		"pinch_distance": 0.05,
		"fast_alpha": 0.9,
		"grace_window": "200ms",
		"miss_damage": 25,
		"fps": 60
	}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)

	classifier := cfg.ApplyClassifier(pose.DefaultConfig())
	assert.Equal(t, 0.05, classifier.PinchDistance)
	assert.Equal(t, pose.DefaultConfig().WaveHistory, classifier.WaveHistory, "unset fields keep defaults")

	smoother := cfg.ApplySmoother(smoothing.DefaultConfig())
	assert.Equal(t, 0.9, smoother.FastAlpha)
	assert.Equal(t, 0.25, smoother.SlowAlpha)

	rules := cfg.ApplyRules(engine.DefaultRules())
	assert.Equal(t, 200*time.Millisecond, rules.GraceWindow)
	assert.Equal(t, 25.0, rules.MissDamage)
	assert.Equal(t, 100*time.Millisecond, rules.Cooldown)

	assert.Equal(t, 60, cfg.GetFPS(30))
	assert.Equal(t, target.DefaultCenterThreshold, cfg.GetCenterThreshold(target.DefaultCenterThreshold))
}

func TestEmptyTuningConfig_KeepsDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	assert.Equal(t, pose.DefaultConfig(), cfg.ApplyClassifier(pose.DefaultConfig()))
	assert.Equal(t, smoothing.DefaultConfig(), cfg.ApplySmoother(smoothing.DefaultConfig()))
	assert.Equal(t, engine.DefaultRules(), cfg.ApplyRules(engine.DefaultRules()))
	assert.Equal(t, 30, cfg.GetFPS(30))
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "tuning.yaml", `{}`, ".json extension"},
		{"bad json", "tuning.json", `{`, "parse config JSON"},
		{"alpha out of range", "tuning.json", `{"slow_alpha": 1.5}`, "slow_alpha"},
		{"negative damage", "tuning.json", `{"miss_damage": -1}`, "miss_damage"},
		{"bad duration", "tuning.json", `{"cooldown": "soon"}`, "cooldown"},
		{"inverted velocity window", "tuning.json", `{"velocity_min": 0.01, "velocity_max": 0.001}`, "velocity_max"},
		{"tiny wave history", "tuning.json", `{"wave_history": 1}`, "wave_history"},
		{"fps out of range", "tuning.json", `{"fps": 0}`, "fps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadTuningConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("oversized file", func(t *testing.T) {
		path := writeConfig(t, "big.json", `{"pad":"`+strings.Repeat("x", maxFileSize)+`"}`)
		_, err := LoadTuningConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})
}
