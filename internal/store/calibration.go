package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Calibration is a recorded calibration event. It is history only and is
// never used to restore a calibration on a later run.
type Calibration struct {
	ID          string
	SessionID   string
	MaxDistance float64
	ThumbX      int
	ThumbY      int
	IndexX      int
	IndexY      int
	CreatedAt   time.Time
}

// CalibrationRepository records calibrations.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibrations returns the calibration repository for this store.
func (s *Store) Calibrations() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Create inserts a calibration. ID and CreatedAt are filled in when empty.
func (r *CalibrationRepository) Create(c *Calibration) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO calibrations (id, session_id, max_distance, thumb_x, thumb_y, index_x, index_y, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SessionID, c.MaxDistance, c.ThumbX, c.ThumbY, c.IndexX, c.IndexY, c.CreatedAt,
	)
	return err
}

// Recent returns up to limit calibrations across all sessions, newest first.
func (r *CalibrationRepository) Recent(limit int) ([]*Calibration, error) {
	return r.query(
		`SELECT id, session_id, max_distance, thumb_x, thumb_y, index_x, index_y, created_at
		 FROM calibrations ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
}

// ListBySession returns the calibrations of a session in order.
func (r *CalibrationRepository) ListBySession(sessionID string) ([]*Calibration, error) {
	return r.query(
		`SELECT id, session_id, max_distance, thumb_x, thumb_y, index_x, index_y, created_at
		 FROM calibrations WHERE session_id = ? ORDER BY created_at`,
		sessionID,
	)
}

// Count returns the number of calibrations in a session.
func (r *CalibrationRepository) Count(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM calibrations WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

func (r *CalibrationRepository) query(q string, args ...any) ([]*Calibration, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Calibration
	for rows.Next() {
		c := &Calibration{}
		if err := rows.Scan(&c.ID, &c.SessionID, &c.MaxDistance, &c.ThumbX, &c.ThumbY, &c.IndexX, &c.IndexY, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
