package volume

import (
	"errors"
	"sync"
)

// MinSpan is the smallest thumb-index distance, in pixels, accepted as a
// calibrated maximum.
const MinSpan = 1.0

var (
	// ErrNoHand is returned when calibrating without both fingertips in view.
	ErrNoHand = errors.New("thumb and index tips not visible")
	// ErrAlreadyCalibrated is returned when calibrating while calibrated.
	ErrAlreadyCalibrated = errors.New("already calibrated")
	// ErrSpanTooSmall is returned when the calibration span is too small to divide by.
	ErrSpanTooSmall = errors.New("calibration span too small")
)

// Transition reasons reported to the OnTransition hook.
const (
	ReasonCalibrated = "calibrated"
	ReasonHandLost   = "hand lost"
	ReasonStopped    = "stopped"
)

// Reading is the result of a calibrated frame.
type Reading struct {
	Raw        float64 `json:"raw"`
	Normalized float64 `json:"normalized"`
	Scalar     float64 `json:"scalar"`
	Thumb      Point   `json:"thumb"`
	Index      Point   `json:"index"`
}

// State is a point-in-time copy of the controller state.
type State struct {
	Phase       Phase    `json:"-"`
	PhaseName   string   `json:"phase"`
	MaxDistance *float64 `json:"max_distance,omitempty"`
	HandVisible bool     `json:"hand_visible"`
	Last        *Reading `json:"last,omitempty"`
}

// Controller holds the calibration state for the control loop. The max
// distance is set if and only if the phase is Calibrated.
//
// Observe, Calibrate and Stop are expected to be called from a single loop;
// the mutex only guards Snapshot readers on other goroutines.
type Controller struct {
	offset float64

	// OnTransition, if set, is called after every phase change.
	OnTransition func(from, to Phase, reason string)

	mu          sync.RWMutex
	phase       Phase
	maxDistance float64
	thumb       Point
	index       Point
	visible     bool
	last        *Reading
}

// NewController creates a Controller in the Uncalibrated phase. A negative
// offset is treated as zero.
func NewController(offset float64) *Controller {
	if offset < 0 {
		offset = 0
	}
	return &Controller{offset: offset}
}

// Offset returns the percentage offset subtracted during normalization.
func (c *Controller) Offset() float64 {
	return c.offset
}

// Observe records the landmarks of the current frame. If either fingertip
// is missing the controller reverts to Uncalibrated and no reading is
// produced. In the Calibrated phase it returns the volume reading.
func (c *Controller) Observe(landmarks []Landmark) (Reading, bool) {
	thumb, index, ok := FindTips(landmarks)

	c.mu.Lock()
	if !ok {
		c.visible = false
		c.last = nil
		from := c.phase
		c.resetLocked()
		c.mu.Unlock()
		if from == Calibrated {
			c.notify(from, Uncalibrated, ReasonHandLost)
		}
		return Reading{}, false
	}

	c.thumb, c.index, c.visible = thumb, index, true
	if c.phase != Calibrated {
		c.last = nil
		c.mu.Unlock()
		return Reading{}, false
	}

	raw := Distance(thumb, index)
	normalized := Normalize(raw, c.maxDistance, c.offset)
	r := Reading{
		Raw:        raw,
		Normalized: normalized,
		Scalar:     normalized / 100,
		Thumb:      thumb,
		Index:      index,
	}
	c.last = &r
	c.mu.Unlock()
	return r, true
}

// Calibrate records the current thumb-index distance as the maximum span
// and moves to the Calibrated phase. It uses the tips from the most recent
// Observe call.
func (c *Controller) Calibrate() (float64, error) {
	c.mu.Lock()
	if c.phase == Calibrated {
		c.mu.Unlock()
		return 0, ErrAlreadyCalibrated
	}
	if !c.visible {
		c.mu.Unlock()
		return 0, ErrNoHand
	}
	span := Distance(c.thumb, c.index)
	if span < MinSpan {
		c.mu.Unlock()
		return 0, ErrSpanTooSmall
	}
	c.maxDistance = span
	c.phase = Calibrated
	c.mu.Unlock()

	c.notify(Uncalibrated, Calibrated, ReasonCalibrated)
	return span, nil
}

// Stop discards the calibration. It is a no-op when not calibrated.
func (c *Controller) Stop() {
	c.mu.Lock()
	from := c.phase
	c.resetLocked()
	c.last = nil
	c.mu.Unlock()

	if from == Calibrated {
		c.notify(from, Uncalibrated, ReasonStopped)
	}
}

// Apply dispatches a user event. Quit and None are ignored here; the loop
// owner handles quitting.
func (c *Controller) Apply(ev Event) error {
	switch ev {
	case EventCalibrate:
		_, err := c.Calibrate()
		return err
	case EventStop:
		c.Stop()
	}
	return nil
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// MaxDistance returns the calibrated span and whether one is set.
func (c *Controller) MaxDistance() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.phase != Calibrated {
		return 0, false
	}
	return c.maxDistance, true
}

// Tips returns the fingertip positions of the last frame and whether they were visible.
func (c *Controller) Tips() (thumb, index Point, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thumb, c.index, c.visible
}

// Snapshot returns a copy of the controller state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := State{
		Phase:       c.phase,
		PhaseName:   c.phase.String(),
		HandVisible: c.visible,
	}
	if c.phase == Calibrated {
		m := c.maxDistance
		s.MaxDistance = &m
	}
	if c.last != nil {
		r := *c.last
		s.Last = &r
	}
	return s
}

func (c *Controller) resetLocked() {
	c.phase = Uncalibrated
	c.maxDistance = 0
}

func (c *Controller) notify(from, to Phase, reason string) {
	if c.OnTransition != nil {
		c.OnTransition(from, to, reason)
	}
}
