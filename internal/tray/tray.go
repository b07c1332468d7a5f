// Package tray provides a system tray interface for the Flinch rhythm game.
package tray

import (
	"fmt"
	"math"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/flinch/internal/app"
	"github.com/ayusman/flinch/internal/engine"
)

// Tray represents the system tray application. It implements app.EventSink
// so session updates show up in the menu.
type Tray struct {
	onPause func(paused bool) error
	onOpen  func()
	onQuit  func()
	paused  bool
	last    string
	status  string
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuPause  *systray.MenuItem
	menuLast   *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{
		last:   "Last: none",
		status: "No session",
	}
}

// OnPause sets the callback run when the pause item is clicked. The menu
// keeps its state when the callback fails.
func (t *Tray) OnPause(fn func(paused bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPause = fn
}

// OnOpen sets the callback function to be called when the open menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and unblocks Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Flinch")
	systray.SetTooltip("Flinch hand rhythm game")

	t.mu.Lock()
	t.menuPause = systray.AddMenuItem(pauseTitle(t.paused), "Pause or resume the session")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem(t.status, "Current session")
	t.menuStatus.Disable()
	t.menuLast = systray.AddMenuItem(t.last, "Last judgment")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Game...", "Open the game in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Flinch")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuPause.ClickedCh:
				t.handlePause()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handlePause flips the paused state when the callback accepts it.
func (t *Tray) handlePause() {
	t.mu.RLock()
	paused := !t.paused
	callback := t.onPause
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		if err := callback(paused); err != nil {
			return
		}
	}

	t.mu.Lock()
	t.setPaused(paused)
	t.mu.Unlock()
}

// handleOpen handles the open menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Publish implements app.EventSink.
func (t *Tray) Publish(u app.Update) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch u.Type {
	case app.UpdateJudgment:
		if u.Event != nil {
			t.setLast(judgmentTitle(*u.Event))
		}
		t.setStatus(statusTitle(u.State))
	case app.UpdateSession:
		t.setPaused(u.State.Paused)
		t.setStatus(statusTitle(u.State))
	case app.UpdateRunComplete:
		t.setPaused(false)
		if u.Summary != nil {
			t.setStatus(summaryTitle(*u.Summary))
		}
	}
}

// setPaused, setLast and setStatus require t.mu held for writing.
func (t *Tray) setPaused(paused bool) {
	t.paused = paused
	if t.menuPause != nil {
		t.menuPause.SetTitle(pauseTitle(paused))
	}
}

func (t *Tray) setLast(title string) {
	t.last = title
	if t.menuLast != nil {
		t.menuLast.SetTitle(title)
	}
}

func (t *Tray) setStatus(title string) {
	t.status = title
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(title)
	}
}

// IsPaused returns the paused state shown in the menu.
func (t *Tray) IsPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

// Last returns the last judgment line.
func (t *Tray) Last() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Status returns the session status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func pauseTitle(paused bool) string {
	if paused {
		return "❚❚ Paused"
	}
	return "▶ Playing"
}

func judgmentTitle(ev engine.Event) string {
	switch {
	case ev.ScoreDelta > 0:
		return fmt.Sprintf("Last: %s +%d", ev.Kind, ev.ScoreDelta)
	case ev.Damage > 0:
		return fmt.Sprintf("Last: %s -%g", ev.Kind, ev.Damage)
	default:
		return "Last: " + string(ev.Kind)
	}
}

func statusTitle(g engine.GameState) string {
	return fmt.Sprintf("Score %d · Health %d · Combo %d", g.Score, int(math.Ceil(g.Health)), g.Combo)
}

func summaryTitle(s engine.Summary) string {
	if s.GameOver {
		return fmt.Sprintf("Game over · %d", s.Score)
	}
	return fmt.Sprintf("Rank %s · %d", s.Rank, s.Score)
}
