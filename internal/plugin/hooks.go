package plugin

import (
	"context"
	"sync"

	"github.com/ayusman/flinch/internal/log"
)

// Hooks fans a request out to every plugin subscribed to its event. Each
// plugin runs in its own goroutine; failures are logged, never returned.
type Hooks struct {
	manager  *Manager
	executor *Executor
	wg       sync.WaitGroup
}

// NewHooks creates Hooks over a discovered manager.
func NewHooks(manager *Manager, executor *Executor) *Hooks {
	return &Hooks{manager: manager, executor: executor}
}

// Fire starts every subscriber of req.Event and returns the number started.
func (h *Hooks) Fire(ctx context.Context, req *Request) int {
	subscribers := h.manager.Subscribers(req.Event)
	for _, p := range subscribers {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()

			resp, err := h.executor.Execute(ctx, p, req)
			if err != nil {
				log.Warn("plugin hook failed", "plugin", p.Manifest.Name, "event", req.Event, "error", err)
				return
			}
			if !resp.Success {
				log.Warn("plugin hook reported failure", "plugin", p.Manifest.Name, "event", req.Event, "error", resp.Error)
				return
			}
			log.Debug("plugin hook done", "plugin", p.Manifest.Name, "event", req.Event)
		}()
	}
	return len(subscribers)
}

// Wait blocks until every fired hook has returned.
func (h *Hooks) Wait() {
	h.wg.Wait()
}
