package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// DropPointRepo provides drop point persistence backed by SQLite. It exposes
// the same operations as the PostgreSQL repository.
type DropPointRepo struct {
	store *Store
}

// NewDropPointRepo creates a new drop point repository on the store.
func NewDropPointRepo(store *Store) *DropPointRepo {
	return &DropPointRepo{store: store}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const createDropPointSQL = `
INSERT INTO drop_points (number, category_id, created_at, removed_at, last_state)
VALUES (?, ?, ?, NULL, ?)`

const getDropPointSQL = `
SELECT number, category_id, created_at, removed_at, last_state
FROM drop_points
WHERE number = ?`

const maxDropPointNumberSQL = `
SELECT COALESCE(MAX(number), 0) FROM drop_points`

const setDropPointRemovedSQL = `
UPDATE drop_points SET removed_at = ? WHERE number = ?`

const updateDropPointStateSQL = `
UPDATE drop_points SET last_state = ? WHERE number = ?`

const countDropPointsByStateSQL = `
SELECT category_id, last_state, count(*)
FROM drop_points
WHERE removed_at IS NULL
GROUP BY category_id, last_state`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new drop point and returns the persisted row.
// A duplicate number results in domain.ErrAlreadyExists.
func (r *DropPointRepo) Create(ctx context.Context, dp domain.DropPoint) (domain.DropPoint, error) {
	q := r.store.querierFromCtx(ctx)

	_, err := q.ExecContext(ctx, createDropPointSQL,
		dp.Number, dp.CategoryID, toMicro(dp.CreatedAt), string(dp.LastState))
	if err != nil {
		return domain.DropPoint{}, mapError(err, "drop_point", dp.Number)
	}

	dp.CreatedAt = dp.CreatedAt.UTC().Truncate(time.Microsecond)
	dp.RemovedAt = nil
	return dp, nil
}

// SetRemoved stamps the removal time on a drop point.
// Returns domain.ErrNotFound if the number is unknown.
func (r *DropPointRepo) SetRemoved(ctx context.Context, number int, removedAt time.Time) error {
	q := r.store.querierFromCtx(ctx)

	res, err := q.ExecContext(ctx, setDropPointRemovedSQL, toMicro(removedAt), number)
	if err != nil {
		return mapError(err, "drop_point", number)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("drop_point %d: rows affected: %w", number, err)
	}
	if affected == 0 {
		return fmt.Errorf("drop_point %d: %w", number, domain.ErrNotFound)
	}

	return nil
}

// UpdateLastState replaces the cached derived state of a drop point.
// Returns domain.ErrNotFound if the number is unknown.
func (r *DropPointRepo) UpdateLastState(ctx context.Context, number int, state domain.State) error {
	q := r.store.querierFromCtx(ctx)

	res, err := q.ExecContext(ctx, updateDropPointStateSQL, string(state), number)
	if err != nil {
		return mapError(err, "drop_point", number)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("drop_point %d: rows affected: %w", number, err)
	}
	if affected == 0 {
		return fmt.Errorf("drop_point %d: %w", number, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns a drop point by number.
func (r *DropPointRepo) Get(ctx context.Context, number int) (domain.DropPoint, error) {
	q := r.store.querierFromCtx(ctx)

	dp, err := scanDropPoint(q.QueryRowContext(ctx, getDropPointSQL, number))
	if err != nil {
		return domain.DropPoint{}, mapError(err, "drop_point", number)
	}

	return dp, nil
}

// GetForUpdate returns a drop point by number. SQLite serializes writers on
// the whole database, so inside a transaction a plain read is already
// exclusive and no row lock is needed.
func (r *DropPointRepo) GetForUpdate(ctx context.Context, number int) (domain.DropPoint, error) {
	return r.Get(ctx, number)
}

// List returns drop points matching the filter, ordered by number.
func (r *DropPointRepo) List(ctx context.Context, filter domain.DropPointFilter) ([]domain.DropPoint, error) {
	qb := squirrel.Select("number", "category_id", "created_at", "removed_at", "last_state").
		From("drop_points").
		PlaceholderFormat(squirrel.Question).
		OrderBy("number ASC")

	if filter.CategoryID != nil {
		qb = qb.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if !filter.IncludeRemoved {
		qb = qb.Where(squirrel.Eq{"removed_at": nil})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build drop point listing: %w", err)
	}

	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drop points: %w", err)
	}
	defer rows.Close()

	points := []domain.DropPoint{}
	for rows.Next() {
		dp, err := scanDropPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("list drop points: %w", err)
		}
		points = append(points, dp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drop points: %w", err)
	}

	return points, nil
}

// MaxNumber returns the highest number ever assigned, or 0 for an empty fleet.
// Removed drop points count: their numbers stay reserved.
func (r *DropPointRepo) MaxNumber(ctx context.Context) (int, error) {
	q := r.store.querierFromCtx(ctx)

	var n int
	if err := q.QueryRowContext(ctx, maxDropPointNumberSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("max drop point number: %w", err)
	}

	return n, nil
}

// CountByState returns the census of drop points still in service, grouped
// by category and cached state. Only non-zero buckets are returned.
func (r *DropPointRepo) CountByState(ctx context.Context) ([]domain.StateCount, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, countDropPointsByStateSQL)
	if err != nil {
		return nil, fmt.Errorf("count drop points by state: %w", err)
	}
	defer rows.Close()

	counts := []domain.StateCount{}
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

	return counts, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// rowScanner is the Scan method shared by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDropPoint(row rowScanner) (domain.DropPoint, error) {
	var dp domain.DropPoint
	var createdAt int64
	var removedAt sql.NullInt64
	var state string

	if err := row.Scan(&dp.Number, &dp.CategoryID, &createdAt, &removedAt, &state); err != nil {
		return domain.DropPoint{}, err
	}

	dp.CreatedAt = fromMicro(createdAt)
	if removedAt.Valid {
		t := fromMicro(removedAt.Int64)
		dp.RemovedAt = &t
	}
	dp.LastState = domain.State(state)

	return dp, nil
}
