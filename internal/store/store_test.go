package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %s", s.Path())
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"sessions", "calibrations"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s should exist: %v", table, err)
		}
	}
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		s, err := New(dbPath)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		s.Close()
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{CameraID: 0, Backend: "recorder"}
	if err := repo.Start(sess); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.EndedAt != nil {
		t.Error("open session should have no end time")
	}
	if got.Backend != "recorder" {
		t.Errorf("backend = %s", got.Backend)
	}

	if err := repo.End(sess.ID, 42, EndQuit); err != nil {
		t.Fatalf("End: %v", err)
	}
	got, err = repo.GetByID(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.EndedAt == nil || got.Frames != 42 || got.EndReason != EndQuit {
		t.Errorf("unexpected ended session %+v", got)
	}
}

func TestSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Sessions().GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID: expected ErrNotFound, got %v", err)
	}
	if err := s.Sessions().End("missing", 1, EndQuit); !errors.Is(err, ErrNotFound) {
		t.Errorf("End: expected ErrNotFound, got %v", err)
	}
}

func TestSessionRecent(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		sess := &Session{ID: string(rune('a' + i)), Backend: "system", StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Sessions().Start(sess); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := s.Sessions().Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != "c" || recent[1].ID != "b" {
		t.Errorf("unexpected recent sessions %v", ids(recent))
	}
}

func TestCalibrations(t *testing.T) {
	s := newTestStore(t)
	sess := &Session{Backend: "system"}
	if err := s.Sessions().Start(sess); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	spans := []float64{160, 210.5, 98}
	for i, span := range spans {
		c := &Calibration{
			SessionID:   sess.ID,
			MaxDistance: span,
			ThumbX:      160,
			ThumbY:      240,
			IndexX:      160 + int(span),
			IndexY:      240,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := s.Calibrations().Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if c.ID == "" {
			t.Fatal("expected generated ID")
		}
	}

	n, err := s.Calibrations().Count(sess.ID)
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	list, err := s.Calibrations().ListBySession(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range list {
		if c.MaxDistance != spans[i] {
			t.Errorf("calibration %d span = %v, want %v", i, c.MaxDistance, spans[i])
		}
	}

	recent, err := s.Calibrations().Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].MaxDistance != 98 {
		t.Errorf("unexpected recent calibrations %+v", recent)
	}
}

func TestCalibrationRequiresSession(t *testing.T) {
	s := newTestStore(t)
	err := s.Calibrations().Create(&Calibration{SessionID: "missing", MaxDistance: 100})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func ids(sessions []*Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}
