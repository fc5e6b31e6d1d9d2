package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/gesturevol/internal/store"
)

// DefaultHistoryLimit is used when the handler is created with a
// non-positive limit.
const DefaultHistoryLimit = 20

// HistoryHandler serves recorded sessions and calibrations.
type HistoryHandler struct {
	store *store.Store
	limit int
}

// NewHistoryHandler creates a HistoryHandler returning up to limit rows.
func NewHistoryHandler(s *store.Store, limit int) *HistoryHandler {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryHandler{store: s, limit: limit}
}

type sessionResponse struct {
	ID           string                `json:"id"`
	CameraID     int                   `json:"camera_id"`
	Backend      string                `json:"backend"`
	StartedAt    string                `json:"started_at"`
	EndedAt      string                `json:"ended_at,omitempty"`
	Frames       int64                 `json:"frames"`
	EndReason    string                `json:"end_reason,omitempty"`
	Calibrations []calibrationResponse `json:"calibrations,omitempty"`
}

type calibrationResponse struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"session_id"`
	MaxDistance float64 `json:"max_distance"`
	Thumb       [2]int  `json:"thumb"`
	Index       [2]int  `json:"index"`
	CreatedAt   string  `json:"created_at"`
}

type historyResponse struct {
	Sessions     []sessionResponse     `json:"sessions"`
	Calibrations []calibrationResponse `json:"calibrations"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		CameraID:  s.CameraID,
		Backend:   s.Backend,
		StartedAt: formatTime(s.StartedAt),
		Frames:    s.Frames,
		EndReason: s.EndReason,
	}
	if s.EndedAt != nil {
		resp.EndedAt = formatTime(*s.EndedAt)
	}
	return resp
}

func toCalibrationResponse(c *store.Calibration) calibrationResponse {
	return calibrationResponse{
		ID:          c.ID,
		SessionID:   c.SessionID,
		MaxDistance: c.MaxDistance,
		Thumb:       [2]int{c.ThumbX, c.ThumbY},
		Index:       [2]int{c.IndexX, c.IndexY},
		CreatedAt:   formatTime(c.CreatedAt),
	}
}

// ServeHTTP routes /api/history and /api/history/{sessionID}.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/history"), "/")
	if id == "" {
		h.list(w)
		return
	}
	h.get(w, id)
}

func (h *HistoryHandler) list(w http.ResponseWriter) {
	sessions, err := h.store.Sessions().Recent(h.limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	calibrations, err := h.store.Calibrations().Recent(h.limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list calibrations")
		return
	}

	resp := historyResponse{
		Sessions:     make([]sessionResponse, 0, len(sessions)),
		Calibrations: make([]calibrationResponse, 0, len(calibrations)),
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(s))
	}
	for _, c := range calibrations {
		resp.Calibrations = append(resp.Calibrations, toCalibrationResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HistoryHandler) get(w http.ResponseWriter, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}

	calibrations, err := h.store.Calibrations().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list calibrations")
		return
	}

	resp := toSessionResponse(sess)
	for _, c := range calibrations {
		resp.Calibrations = append(resp.Calibrations, toCalibrationResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}
