package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session end reasons.
const (
	EndQuit        = "quit"
	EndCameraError = "camera error"
	EndCancelled   = "cancelled"
)

// Session is one run of the control loop.
type Session struct {
	ID        string
	CameraID  int
	Backend   string
	StartedAt time.Time
	EndedAt   *time.Time
	Frames    int64
	EndReason string
}

// SessionRepository records session lifecycle.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start inserts a new open session. ID and StartedAt are filled in when empty.
func (r *SessionRepository) Start(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, camera_id, backend, started_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.CameraID, sess.Backend, sess.StartedAt,
	)
	return err
}

// End closes a session with its frame count and reason.
func (r *SessionRepository) End(id string, frames int64, reason string) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ?, end_reason = ? WHERE id = ?`,
		time.Now(), frames, reason, id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, camera_id, backend, started_at, ended_at, frames, end_reason
		 FROM sessions WHERE id = ?`,
		id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

// Recent returns up to limit sessions, newest first.
func (r *SessionRepository) Recent(limit int) ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, camera_id, backend, started_at, ended_at, frames, end_reason
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime
	if err := row.Scan(&sess.ID, &sess.CameraID, &sess.Backend, &sess.StartedAt, &ended, &sess.Frames, &sess.EndReason); err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}
