package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// newTestStore creates a store on a throwaway database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Each test runs against its own database, so fixed numbers are fine.

func seedDropPoint(t *testing.T, s *Store, number int) domain.DropPoint {
	t.Helper()
	return seedDropPointAt(t, s, number, time.Now().UTC().Truncate(time.Microsecond))
}

func seedDropPointAt(t *testing.T, s *Store, number int, createdAt time.Time) domain.DropPoint {
	t.Helper()

	dp := domain.DropPoint{
		Number:     number,
		CategoryID: 1,
		CreatedAt:  createdAt.UTC().Truncate(time.Microsecond),
		LastState:  domain.StateNew,
	}

	_, err := s.db.Exec(
		`INSERT INTO drop_points (number, category_id, created_at, removed_at, last_state)
		 VALUES (?, ?, ?, NULL, ?)`,
		dp.Number, dp.CategoryID, toMicro(dp.CreatedAt), string(dp.LastState),
	)
	if err != nil {
		t.Fatalf("seedDropPoint: %v", err)
	}

	return dp
}

func seedReport(t *testing.T, s *Store, number int, state domain.State, at time.Time) domain.Report {
	t.Helper()

	rep := domain.Report{
		ID:     uuid.New(),
		Number: number,
		Time:   at.UTC().Truncate(time.Microsecond),
		State:  state,
	}

	_, err := s.db.Exec(
		`INSERT INTO reports (id, drop_point_number, occurred_at, state) VALUES (?, ?, ?, ?)`,
		rep.ID.String(), rep.Number, toMicro(rep.Time), string(rep.State),
	)
	if err != nil {
		t.Fatalf("seedReport: %v", err)
	}

	return rep
}

func seedVisit(t *testing.T, s *Store, number int, action domain.VisitAction, at time.Time) domain.Visit {
	t.Helper()

	v := domain.Visit{
		ID:     uuid.New(),
		Number: number,
		Time:   at.UTC().Truncate(time.Microsecond),
		Action: action,
	}

	_, err := s.db.Exec(
		`INSERT INTO visits (id, drop_point_number, occurred_at, action) VALUES (?, ?, ?, ?)`,
		v.ID.String(), v.Number, toMicro(v.Time), string(v.Action),
	)
	if err != nil {
		t.Fatalf("seedVisit: %v", err)
	}

	return v
}

func seedLocation(t *testing.T, s *Store, number int, at time.Time, description string) domain.Location {
	t.Helper()

	loc := domain.Location{
		ID:          uuid.New(),
		Number:      number,
		Time:        at.UTC().Truncate(time.Microsecond),
		Description: description,
	}

	_, err := s.db.Exec(
		`INSERT INTO locations (id, drop_point_number, occurred_at, description, lat, lng, level)
		 VALUES (?, ?, ?, ?, NULL, NULL, NULL)`,
		loc.ID.String(), loc.Number, toMicro(loc.Time), loc.Description,
	)
	if err != nil {
		t.Fatalf("seedLocation: %v", err)
	}

	return loc
}

func dropPointExists(t *testing.T, s *Store, number int) bool {
	t.Helper()

	var n int
	err := s.db.QueryRowContext(context.Background(),
		`SELECT count(*) FROM drop_points WHERE number = ?`, number).Scan(&n)
	if err != nil {
		t.Fatalf("dropPointExists: %v", err)
	}
	return n > 0
}

func assertIsDomainError(t *testing.T, err error, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected error wrapping %v, got: %v", target, err)
	}
}
