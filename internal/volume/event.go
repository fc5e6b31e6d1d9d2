package volume

// Phase is the calibration state of the controller.
type Phase int

const (
	// Uncalibrated waits for a calibrate event while a hand is visible.
	Uncalibrated Phase = iota
	// Calibrated maps the current span to a volume level every frame.
	Calibrated
)

func (p Phase) String() string {
	switch p {
	case Uncalibrated:
		return "uncalibrated"
	case Calibrated:
		return "calibrated"
	default:
		return "unknown"
	}
}

// Event is a discrete user action fed into the control loop.
type Event int

const (
	EventNone Event = iota
	EventCalibrate
	EventStop
	EventQuit
)

func (e Event) String() string {
	switch e {
	case EventCalibrate:
		return "calibrate"
	case EventStop:
		return "stop"
	case EventQuit:
		return "quit"
	default:
		return "none"
	}
}

// ParseEvent maps an event name (as used by the HTTP API and tray) to an Event.
func ParseEvent(name string) (Event, bool) {
	switch name {
	case "calibrate":
		return EventCalibrate, true
	case "stop":
		return EventStop, true
	case "quit":
		return EventQuit, true
	}
	return EventNone, false
}

// ParseKey maps a key code returned by the display window to an Event.
// Space calibrates, s stops and q quits. Negative codes mean no key.
func ParseKey(key int) (Event, bool) {
	if key < 0 {
		return EventNone, false
	}
	switch key & 0xFF {
	case ' ':
		return EventCalibrate, true
	case 's', 'S':
		return EventStop, true
	case 'q', 'Q':
		return EventQuit, true
	}
	return EventNone, false
}
