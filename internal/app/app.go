// Package app runs the gesture volume control loop. It wires the camera,
// hand detector, calibration controller, mixer and feedback surfaces.
package app

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/gesturevol/internal/audio"
	"github.com/ayusman/gesturevol/internal/capture"
	"github.com/ayusman/gesturevol/internal/config"
	"github.com/ayusman/gesturevol/internal/detector"
	"github.com/ayusman/gesturevol/internal/metrics"
	"github.com/ayusman/gesturevol/internal/overlay"
	"github.com/ayusman/gesturevol/internal/server"
	"github.com/ayusman/gesturevol/internal/store"
	"github.com/ayusman/gesturevol/internal/volume"
)

// EventQueueSize bounds pending events from the tray and HTTP API.
const EventQueueSize = 16

// noticeDuration is how long a rejected event stays in the status and overlay.
const noticeDuration = 3 * time.Second

var (
	// ErrCameraRead is returned by Run when the camera yields no frame.
	ErrCameraRead = errors.New("camera read failed")
	// ErrMissingComponent is returned by New when a required component is nil.
	ErrMissingComponent = errors.New("app requires config, camera, detector and mixer")
)

// StateListener receives controller state changes. The tray implements it.
type StateListener interface {
	Update(volume.State)
}

// Options holds the components of an App. Config, Camera, Detector and
// Mixer are required; the rest are optional.
type Options struct {
	Config   *config.Config
	Camera   capture.Camera
	Detector detector.Detector
	Mixer    audio.Mixer
	Display  overlay.Display
	Store    *store.Store
	Metrics  *metrics.Metrics
	Frames   *server.FrameBuffer
	Hub      *server.Hub
	Listener StateListener
	// Events is the event queue; New creates one when nil.
	Events chan volume.Event
	Logger   *slog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Status is the document served by the status API and WebSocket feed.
type Status struct {
	volume.State
	// Level is the last written volume in percent, or -1 when uncalibrated.
	Level     int     `json:"level"`
	FPS       float64 `json:"fps"`
	CameraFPS int     `json:"camera_fps"`
	Frames    int64   `json:"frames"`
	SessionID string  `json:"session_id,omitempty"`
	Backend   string  `json:"backend"`
	// LastError describes a recently rejected event, such as a calibrate
	// with no hand in view. It clears after a few seconds.
	LastError string  `json:"last_error,omitempty"`
}

// App owns the control loop. Run must be called from a single goroutine;
// Status and Events are safe for concurrent use.
type App struct {
	cfg        *config.Config
	camera     capture.Camera
	detector   detector.Detector
	mixer      audio.Mixer
	display    overlay.Display
	renderer   *overlay.Renderer
	motion     *capture.MotionDetector
	governor   *capture.Governor
	controller *volume.Controller
	store      *store.Store
	metrics    *metrics.Metrics
	frames     *server.FrameBuffer
	hub        *server.Hub
	listener   StateListener
	logger     *slog.Logger
	now        func() time.Time

	events   chan volume.Event
	fpsMeter overlay.FPSMeter

	mu         sync.RWMutex
	status     Status
	sessionID  string
	frameCount int64
	lastSig    signature
	notice     string
	noticeAt   time.Time
}

// signature identifies a status change worth pushing to listeners.
type signature struct {
	phase   volume.Phase
	visible bool
	level   int
	notice  string
}

// New creates an App from opts.
func New(opts Options) (*App, error) {
	if opts.Config == nil || opts.Camera == nil || opts.Detector == nil || opts.Mixer == nil {
		return nil, ErrMissingComponent
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	display := opts.Display
	if display == nil {
		display = overlay.Headless{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	events := opts.Events
	if events == nil {
		events = make(chan volume.Event, EventQueueSize)
	}

	cfg := opts.Config
	a := &App{
		cfg:      cfg,
		camera:   opts.Camera,
		detector: opts.Detector,
		mixer:    opts.Mixer,
		display:  display,
		renderer: overlay.NewRenderer(overlay.Options{
			ShowFPS:       cfg.Display.ShowFPS,
			DrawLandmarks: cfg.Display.DrawLandmarks,
			BlinkInterval: time.Duration(cfg.Display.BlinkIntervalMs) * time.Millisecond,
		}),
		motion: capture.NewMotionDetector(cfg.Camera.MotionThreshold),
		governor: capture.NewGovernor(
			cfg.Camera.IdleFPS,
			cfg.Camera.ActiveFPS,
			time.Duration(cfg.Camera.IdleTimeoutMs)*time.Millisecond,
		),
		controller: volume.NewController(cfg.Volume.Offset),
		store:      opts.Store,
		metrics:    opts.Metrics,
		frames:     opts.Frames,
		hub:        opts.Hub,
		listener:   opts.Listener,
		logger:     logger.With("component", "app"),
		now:        now,
		events:     events,
		lastSig:    signature{level: -2},
	}
	a.controller.OnTransition = a.onTransition
	a.status = Status{State: a.controller.Snapshot(), Level: -1, Backend: a.mixer.Name()}
	return a, nil
}

// Events returns the queue into which the tray and HTTP API push events.
func (a *App) Events() chan<- volume.Event {
	return a.events
}

// Controller returns the calibration controller.
func (a *App) Controller() *volume.Controller {
	return a.controller
}

// Status returns the latest status.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// SessionID returns the current store session id, empty when not recording.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

// Close releases the detector and display.
func (a *App) Close() error {
	return errors.Join(a.detector.Close(), a.display.Close())
}

// resetter is implemented by mixers that cache the last written level.
type resetter interface {
	Reset()
}

func (a *App) onTransition(from, to volume.Phase, reason string) {
	a.logger.Info("calibration phase changed", "from", from.String(), "to", to.String(), "reason", reason)
	// The OS level may have changed while uncalibrated.
	if r, ok := a.mixer.(resetter); ok {
		r.Reset()
	}
	if a.metrics != nil {
		a.metrics.ObserveTransition(reason, to == volume.Calibrated)
	}
	if to == volume.Calibrated {
		a.recordCalibration()
	}
}
