package app

import (
	"errors"
	"time"

	"github.com/ayusman/flinch/internal/capture"
	"github.com/ayusman/flinch/internal/log"
)

// Start opens the camera and begins the frame loop. Calling Start while the
// loop runs is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh, a.camera.FPS())

	log.Info("frame pipeline started", "fps", a.camera.FPS())
	return nil
}

// Stop halts the frame loop, aborts any running session, and releases the
// camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if _, err := a.StopSession(); err != nil && !errors.Is(err, ErrNoSession) {
		log.Warn("error stopping session", "error", err)
	}

	if err := a.Camera().Close(); err != nil {
		log.Warn("error closing camera", "error", err)
	}
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Warn("error closing detector", "error", err)
		}
	}
	a.hooks.Wait()

	log.Info("frame pipeline stopped")
}

// Running reports whether the frame loop is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopCh != nil
}

// runPipeline reads one frame per tick while a session is running, detects
// hands, and hands the result to ProcessHands. Frames are not read while no
// session is active or the session is paused.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}, fps int) {
	defer close(doneCh)

	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.judging() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				if errors.Is(err, capture.ErrNoFrames) {
					log.Debug("frame source exhausted")
				} else {
					log.Warn("error reading frame", "error", err)
				}
				// A run still has to time out without frames.
				a.ProcessHands(nil)
				continue
			}

			hands, err := a.Detector().Detect(frame)
			frame.Close()
			if err != nil {
				log.Warn("error detecting hands", "error", err)
				continue
			}

			a.ProcessHands(hands)
		}
	}
}

// judging reports whether a session is running and not paused.
func (a *App) judging() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.session
	return s != nil && s.final == nil && !s.judge.State().Paused
}
