// Package tray provides a system tray menu for headless operation. It shows
// the calibration phase and volume level and feeds Calibrate, Stop and Quit
// clicks into the control loop's event queue.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/gesturevol/internal/volume"
)

// Tray represents the system tray application.
type Tray struct {
	events chan<- volume.Event
	onExit func()
	quit   func()
	mu     sync.RWMutex

	// Menu items stored for later updates
	menuStatus    *systray.MenuItem
	menuCalibrate *systray.MenuItem
	menuStop      *systray.MenuItem
}

// New creates a Tray that sends menu clicks to events.
func New(events chan<- volume.Event) *Tray {
	return &Tray{events: events, quit: systray.Quit}
}

// OnExit sets the callback called after the tray loop ends.
func (t *Tray) OnExit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExit = fn
}

// Run starts the system tray application. It must run on the main OS
// thread and blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.handleExit)
}

// Quit stops the tray loop.
func (t *Tray) Quit() {
	t.quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("gesturevol")
	systray.SetTooltip("Gesture volume control")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(StatusLine(volume.State{PhaseName: volume.Uncalibrated.String()}), "Calibration state")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuCalibrate = systray.AddMenuItem("Calibrate", "Record the current thumb-index span as maximum")
	t.menuStop = systray.AddMenuItem("Stop", "Discard the calibration")
	t.menuStop.Disable()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit gesturevol")
	calibrate, stop := t.menuCalibrate.ClickedCh, t.menuStop.ClickedCh
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-calibrate:
				t.send(volume.EventCalibrate)
			case <-stop:
				t.send(volume.EventStop)
			case <-menuQuit.ClickedCh:
				t.requestQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleExit() {
	t.mu.RLock()
	callback := t.onExit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// send forwards ev without blocking the menu loop.
func (t *Tray) send(ev volume.Event) {
	select {
	case t.events <- ev:
	default:
	}
}

// requestQuit queues a quit event. When the queue is full it ends the tray
// loop instead, which runs the OnExit callback.
func (t *Tray) requestQuit() {
	select {
	case t.events <- volume.EventQuit:
	default:
		t.quit()
	}
}

// Update refreshes the status line and item availability from s.
func (t *Tray) Update(s volume.State) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus == nil {
		return
	}
	t.menuStatus.SetTitle(StatusLine(s))
	if s.Phase == volume.Calibrated {
		t.menuCalibrate.Disable()
		t.menuStop.Enable()
	} else {
		t.menuCalibrate.Enable()
		t.menuStop.Disable()
	}
}

// StatusLine formats the tray status text for s.
func StatusLine(s volume.State) string {
	if s.Phase != volume.Calibrated {
		if s.HandVisible {
			return "Uncalibrated: hand in view"
		}
		return "Uncalibrated: no hand"
	}
	if s.Last == nil {
		return "Calibrated"
	}
	return fmt.Sprintf("Calibrated: %d%%", int(s.Last.Normalized))
}
