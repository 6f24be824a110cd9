// Package droppoint implements the drop point repository using PostgreSQL.
// Fixed-shape queries use raw SQL; the fleet listing is built dynamically
// with squirrel.
package droppoint

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/bottlecrew/droptracker/internal/adapter/postgres"
	"github.com/bottlecrew/droptracker/internal/domain"
)

// Repo provides drop point persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new drop point repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const createSQL = `
INSERT INTO drop_points (number, category_id, created_at, removed_at, last_state)
VALUES ($1, $2, $3, NULL, $4)
RETURNING number, category_id, created_at, removed_at, last_state`

const getSQL = `
SELECT number, category_id, created_at, removed_at, last_state
FROM drop_points
WHERE number = $1`

const getForUpdateSQL = `
SELECT number, category_id, created_at, removed_at, last_state
FROM drop_points
WHERE number = $1
FOR UPDATE`

const maxNumberSQL = `
SELECT COALESCE(MAX(number), 0) FROM drop_points`

const setRemovedSQL = `
UPDATE drop_points SET removed_at = $2 WHERE number = $1`

const updateLastStateSQL = `
UPDATE drop_points SET last_state = $2 WHERE number = $1`

const countByStateSQL = `
SELECT category_id, last_state, count(*)
FROM drop_points
WHERE removed_at IS NULL
GROUP BY category_id, last_state`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new drop point and returns the persisted row.
// A duplicate number results in domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, dp domain.DropPoint) (domain.DropPoint, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	row := querier.QueryRow(ctx, createSQL,
		dp.Number, dp.CategoryID, dp.CreatedAt, string(dp.LastState))

	created, err := scanDropPoint(row)
	if err != nil {
		return domain.DropPoint{}, postgres.MapError(err, "drop_point", dp.Number)
	}

	return created, nil
}

// SetRemoved stamps the removal time on a drop point.
// Returns domain.ErrNotFound if the number is unknown.
func (r *Repo) SetRemoved(ctx context.Context, number int, removedAt time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := querier.Exec(ctx, setRemovedSQL, number, removedAt)
	if err != nil {
		return postgres.MapError(err, "drop_point", number)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("drop_point %d: %w", number, domain.ErrNotFound)
	}

	return nil
}

// UpdateLastState replaces the cached derived state of a drop point.
// Returns domain.ErrNotFound if the number is unknown.
func (r *Repo) UpdateLastState(ctx context.Context, number int, state domain.State) error {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := querier.Exec(ctx, updateLastStateSQL, number, string(state))
	if err != nil {
		return postgres.MapError(err, "drop_point", number)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("drop_point %d: %w", number, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns a drop point by number.
func (r *Repo) Get(ctx context.Context, number int) (domain.DropPoint, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	dp, err := scanDropPoint(querier.QueryRow(ctx, getSQL, number))
	if err != nil {
		return domain.DropPoint{}, postgres.MapError(err, "drop_point", number)
	}

	return dp, nil
}

// GetForUpdate returns a drop point by number and locks its row for the
// duration of the surrounding transaction.
func (r *Repo) GetForUpdate(ctx context.Context, number int) (domain.DropPoint, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	dp, err := scanDropPoint(querier.QueryRow(ctx, getForUpdateSQL, number))
	if err != nil {
		return domain.DropPoint{}, postgres.MapError(err, "drop_point", number)
	}

	return dp, nil
}

// List returns drop points matching the filter, ordered by number.
func (r *Repo) List(ctx context.Context, filter domain.DropPointFilter) ([]domain.DropPoint, error) {
	qb := squirrel.Select("number", "category_id", "created_at", "removed_at", "last_state").
		From("drop_points").
		PlaceholderFormat(squirrel.Dollar).
		OrderBy("number ASC")

	if filter.CategoryID != nil {
		qb = qb.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if !filter.IncludeRemoved {
		qb = qb.Where(squirrel.Eq{"removed_at": nil})
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build drop point listing: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list drop points: %w", err)
	}
	defer rows.Close()

	points, err := scanDropPoints(rows)
	if err != nil {
		return nil, fmt.Errorf("list drop points: %w", err)
	}

	return points, nil
}

// MaxNumber returns the highest number ever assigned, or 0 for an empty fleet.
// Removed drop points count: their numbers stay reserved.
func (r *Repo) MaxNumber(ctx context.Context) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	var n int
	if err := querier.QueryRow(ctx, maxNumberSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("max drop point number: %w", err)
	}

	return n, nil
}

// CountByState returns the census of drop points still in service, grouped
// by category and cached state. Only non-zero buckets are returned.
func (r *Repo) CountByState(ctx context.Context) ([]domain.StateCount, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, countByStateSQL)
	if err != nil {
		return nil, fmt.Errorf("count drop points by state: %w", err)
	}
	defer rows.Close()

	var counts []domain.StateCount
	for rows.Next() {
		var sc domain.StateCount
		var state string
		if err := rows.Scan(&sc.CategoryID, &state, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		sc.State = domain.State(state)
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state counts: %w", err)
	}

	if counts == nil {
		counts = []domain.StateCount{}
	}

	return counts, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// scanDropPoint scans a single drop point row. Works for both pgx.Row and
// pgx.Rows.
func scanDropPoint(row pgx.Row) (domain.DropPoint, error) {
	var dp domain.DropPoint
	var state string

	if err := row.Scan(&dp.Number, &dp.CategoryID, &dp.CreatedAt, &dp.RemovedAt, &state); err != nil {
		return domain.DropPoint{}, err
	}

	dp.LastState = domain.State(state)
	return dp, nil
}

// scanDropPoints scans multiple rows into a domain.DropPoint slice.
func scanDropPoints(rows pgx.Rows) ([]domain.DropPoint, error) {
	var points []domain.DropPoint
	for rows.Next() {
		dp, err := scanDropPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, dp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if points == nil {
		points = []domain.DropPoint{}
	}

	return points, nil
}
