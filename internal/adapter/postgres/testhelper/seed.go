package testhelper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// nextNumber hands out drop point numbers that no other test in this binary
// has used. Each test binary runs against its own container, so uniqueness
// per binary is enough.
var nextNumber atomic.Int64

// NextNumber returns a fresh drop point number.
func NextNumber() int {
	return int(nextNumber.Add(1))
}

// SeedDropPoint creates a drop point in state NEW with a unique number.
// No location event is written; tests that need one call SeedLocation.
func SeedDropPoint(t *testing.T, pool *pgxpool.Pool) domain.DropPoint {
	t.Helper()
	return SeedDropPointAt(t, pool, time.Now().UTC().Truncate(time.Microsecond))
}

// SeedDropPointAt creates a drop point with the given creation time.
func SeedDropPointAt(t *testing.T, pool *pgxpool.Pool, createdAt time.Time) domain.DropPoint {
	t.Helper()
	ctx := context.Background()

	dp := domain.DropPoint{
		Number:     NextNumber(),
		CategoryID: 1,
		CreatedAt:  createdAt,
		LastState:  domain.StateNew,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO drop_points (number, category_id, created_at, removed_at, last_state)
		 VALUES ($1, $2, $3, NULL, $4)`,
		dp.Number, dp.CategoryID, dp.CreatedAt, string(dp.LastState),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDropPointAt insert: %v", err)
	}

	return dp
}

// SeedRemovedDropPoint creates a drop point that was removed at removedAt.
func SeedRemovedDropPoint(t *testing.T, pool *pgxpool.Pool, removedAt time.Time) domain.DropPoint {
	t.Helper()
	ctx := context.Background()

	createdAt := removedAt.Add(-24 * time.Hour)
	dp := domain.DropPoint{
		Number:     NextNumber(),
		CategoryID: 1,
		CreatedAt:  createdAt,
		RemovedAt:  &removedAt,
		LastState:  domain.StateNew,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO drop_points (number, category_id, created_at, removed_at, last_state)
		 VALUES ($1, $2, $3, $4, $5)`,
		dp.Number, dp.CategoryID, dp.CreatedAt, dp.RemovedAt, string(dp.LastState),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRemovedDropPoint insert: %v", err)
	}

	return dp
}

// SeedLocation appends a location event for the given drop point.
func SeedLocation(t *testing.T, pool *pgxpool.Pool, number int, at time.Time, description string) domain.Location {
	t.Helper()
	ctx := context.Background()

	loc := domain.Location{
		ID:          uuid.New(),
		Number:      number,
		Time:        at,
		Description: description,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO locations (id, drop_point_number, occurred_at, description, lat, lng, level)
		 VALUES ($1, $2, $3, $4, NULL, NULL, NULL)`,
		loc.ID, loc.Number, loc.Time, loc.Description,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLocation insert: %v", err)
	}

	return loc
}

// SeedReport appends a report event for the given drop point.
func SeedReport(t *testing.T, pool *pgxpool.Pool, number int, state domain.State, at time.Time) domain.Report {
	t.Helper()
	ctx := context.Background()

	rep := domain.Report{
		ID:     uuid.New(),
		Number: number,
		Time:   at,
		State:  state,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO reports (id, drop_point_number, occurred_at, state)
		 VALUES ($1, $2, $3, $4)`,
		rep.ID, rep.Number, rep.Time, string(rep.State),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReport insert: %v", err)
	}

	return rep
}

// SeedVisit appends a visit event for the given drop point.
func SeedVisit(t *testing.T, pool *pgxpool.Pool, number int, action domain.VisitAction, at time.Time) domain.Visit {
	t.Helper()
	ctx := context.Background()

	v := domain.Visit{
		ID:     uuid.New(),
		Number: number,
		Time:   at,
		Action: action,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO visits (id, drop_point_number, occurred_at, action)
		 VALUES ($1, $2, $3, $4)`,
		v.ID, v.Number, v.Time, string(v.Action),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedVisit insert: %v", err)
	}

	return v
}
