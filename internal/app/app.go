// Package app wires the camera, detector and judging core into a playable
// session and persists what each finished run produced.
package app

import (
	"sync"
	"time"

	"github.com/ayusman/flinch/internal/capture"
	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/clock"
	"github.com/ayusman/flinch/internal/config"
	"github.com/ayusman/flinch/internal/detector"
	"github.com/ayusman/flinch/internal/engine"
	"github.com/ayusman/flinch/internal/log"
	"github.com/ayusman/flinch/internal/plugin"
	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/smoothing"
	"github.com/ayusman/flinch/internal/store"
	"github.com/ayusman/flinch/internal/target"
)

// DefaultPluginTimeout bounds a single hook run.
const DefaultPluginTimeout = 5 * time.Second

// Config holds configuration options for the application.
type Config struct {
	// Store persists runs and progression. Nil disables persistence.
	Store *store.Store
	// Registry resolves challenge ids. Nil uses the built-in challenges.
	Registry  *choreo.Registry
	PluginDir string
	CameraID  int
	// VideoPath replaces the camera with a recorded video when set.
	VideoPath string
	// Tuning overrides the default constants. Nil keeps every default.
	Tuning *config.TuningConfig
	// Source drives run clocks. Nil uses the wall clock.
	Source        clock.TimeSource
	PluginTimeout time.Duration
}

// App owns the frame pipeline and at most one judging session.
type App struct {
	config     Config
	source     clock.TimeSource
	registry   *choreo.Registry
	camera     capture.Camera
	detector   detector.Detector
	classifier *pose.Classifier
	smoother   *smoothing.Smoother
	mapper     *target.Mapper
	rules      engine.Rules
	pluginMgr  *plugin.Manager
	hooks      *plugin.Hooks

	mu      sync.Mutex
	session *session
	lastRun *engine.Summary
	stopCh  chan struct{}
	doneCh  chan struct{}

	sinksMu sync.RWMutex
	sinks   []EventSink
}

// New creates an App. The MediaPipe detector is used when its service can
// start; otherwise a mock detector that never sees a hand.
func New(cfg Config) *App {
	tuning := cfg.Tuning
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}
	source := cfg.Source
	if source == nil {
		source = clock.RealSource{}
	}
	registry := cfg.Registry
	if registry == nil {
		registry = choreo.DefaultRegistry()
	}
	timeout := cfg.PluginTimeout
	if timeout <= 0 {
		timeout = DefaultPluginTimeout
	}

	var camera capture.Camera
	if cfg.VideoPath != "" {
		camera = capture.NewVideoFile(cfg.VideoPath)
	} else {
		camera = capture.NewCamera(cfg.CameraID)
	}
	camera.SetFPS(tuning.GetFPS(capture.DefaultFPS))

	classifier := pose.NewClassifier(tuning.ApplyClassifier(pose.DefaultConfig()))
	classifier.SetNow(source.Now)

	pluginMgr := plugin.NewManager(cfg.PluginDir)

	a := &App{
		config:     cfg,
		source:     source,
		registry:   registry,
		camera:     camera,
		classifier: classifier,
		smoother:   smoothing.New(tuning.ApplySmoother(smoothing.DefaultConfig())),
		mapper:     target.NewMapper(tuning.GetCenterThreshold(target.DefaultCenterThreshold)),
		rules:      tuning.ApplyRules(engine.DefaultRules()),
		pluginMgr:  pluginMgr,
		hooks:      plugin.NewHooks(pluginMgr, plugin.NewExecutor(timeout)),
	}

	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Info("using MediaPipe hand detection")
	} else {
		log.Warn("MediaPipe not available, using mock detector", "error", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetDetector replaces the hand detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detector
}

// Camera returns the frame source.
func (a *App) Camera() capture.Camera {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.camera
}

// Registry returns the challenge registry.
func (a *App) Registry() *choreo.Registry {
	return a.registry
}

// Store returns the configured store, possibly nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Rules returns the unscaled judging rules in effect.
func (a *App) Rules() engine.Rules {
	return a.rules
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// DiscoverPlugins scans the plugin directory.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// WaitHooks blocks until every fired plugin hook has finished.
func (a *App) WaitHooks() {
	a.hooks.Wait()
}

// Subscribe registers a sink for session updates.
func (a *App) Subscribe(s EventSink) {
	a.sinksMu.Lock()
	defer a.sinksMu.Unlock()
	a.sinks = append(a.sinks, s)
}

func (a *App) publish(u Update) {
	a.sinksMu.RLock()
	defer a.sinksMu.RUnlock()
	for _, s := range a.sinks {
		s.Publish(u)
	}
}
