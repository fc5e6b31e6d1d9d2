package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/gesturevol/internal/volume"
)

// StatusFunc returns the current status document served by /api/status.
type StatusFunc func() any

// ControlHandler serves the status endpoint and forwards calibrate and stop
// requests into the control loop's event queue.
type ControlHandler struct {
	status StatusFunc
	events chan<- volume.Event
}

// NewControlHandler creates a ControlHandler. Events are sent without
// blocking; a full queue answers 503.
func NewControlHandler(status StatusFunc, events chan<- volume.Event) *ControlHandler {
	return &ControlHandler{status: status, events: events}
}

type eventResponse struct {
	Event    string `json:"event"`
	Accepted bool   `json:"accepted"`
}

// ServeHTTP routes /api/status, /api/calibrate and /api/stop.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/")

	if name == "status" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if h.status == nil {
			writeError(w, http.StatusServiceUnavailable, "status unavailable")
			return
		}
		writeJSON(w, http.StatusOK, h.status())
		return
	}

	ev, ok := volume.ParseEvent(name)
	if !ok || ev == volume.EventQuit {
		writeError(w, http.StatusNotFound, "unknown endpoint")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.events == nil {
		writeError(w, http.StatusServiceUnavailable, "control loop not running")
		return
	}

	select {
	case h.events <- ev:
		writeJSON(w, http.StatusAccepted, eventResponse{Event: ev.String(), Accepted: true})
	default:
		writeError(w, http.StatusServiceUnavailable, "event queue full")
	}
}
