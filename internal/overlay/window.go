package overlay

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/gesturevol/internal/volume"
)

// Display shows annotated frames and reports keyboard events.
type Display interface {
	Show(img *gocv.Mat)
	// PollEvent waits up to delayMs for a key and maps it to an event.
	PollEvent(delayMs int) volume.Event
	Close() error
}

// Window is a Display backed by a HighGUI window. It must be created and
// used on the main OS thread.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window titled title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show implements Display.
func (w *Window) Show(img *gocv.Mat) {
	if img == nil || img.Empty() {
		return
	}
	w.win.IMShow(*img)
}

// PollEvent implements Display.
func (w *Window) PollEvent(delayMs int) volume.Event {
	if delayMs < 1 {
		delayMs = 1
	}
	ev, _ := volume.ParseKey(w.win.WaitKey(delayMs))
	return ev
}

// Close implements Display.
func (w *Window) Close() error {
	return w.win.Close()
}

// Headless is a Display that shows nothing and never reports a key.
type Headless struct{}

// Show implements Display.
func (Headless) Show(*gocv.Mat) {}

// PollEvent implements Display.
func (Headless) PollEvent(int) volume.Event { return volume.EventNone }

// Close implements Display.
func (Headless) Close() error { return nil }
