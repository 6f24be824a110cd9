package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// EventLogRepo provides the append-only event streams backed by SQLite. It
// exposes the same operations as the PostgreSQL repository: rows are ordered
// by occurrence time with the insert sequence as tiebreaker.
type EventLogRepo struct {
	store *Store
}

// NewEventLogRepo creates a new event log repository on the store.
func NewEventLogRepo(store *Store) *EventLogRepo {
	return &EventLogRepo{store: store}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const appendLocationSQLite = `
INSERT INTO locations (id, drop_point_number, occurred_at, description, lat, lng, level)
VALUES (?, ?, ?, ?, ?, ?, ?)`

const appendReportSQLite = `
INSERT INTO reports (id, drop_point_number, occurred_at, state)
VALUES (?, ?, ?, ?)`

const appendVisitSQLite = `
INSERT INTO visits (id, drop_point_number, occurred_at, action)
VALUES (?, ?, ?, ?)`

const locationsSQLite = `
SELECT id, drop_point_number, occurred_at, description, lat, lng, level
FROM locations
WHERE drop_point_number = ?
ORDER BY occurred_at DESC, seq DESC`

const reportsSQLite = `
SELECT id, drop_point_number, occurred_at, state
FROM reports
WHERE drop_point_number = ?
ORDER BY occurred_at DESC, seq DESC`

const visitsSQLite = `
SELECT id, drop_point_number, occurred_at, action
FROM visits
WHERE drop_point_number = ?
ORDER BY occurred_at DESC, seq DESC`

const latestLocationSQLite = locationsSQLite + `
LIMIT 1`

const latestReportSQLite = reportsSQLite + `
LIMIT 1`

const latestVisitSQLite = visitsSQLite + `
LIMIT 1`

const locationsSinceSQLite = `
SELECT id, drop_point_number, occurred_at, description, lat, lng, level
FROM locations
WHERE drop_point_number = ? AND occurred_at > ?
ORDER BY occurred_at DESC, seq DESC`

const reportsSinceSQLite = `
SELECT id, drop_point_number, occurred_at, state
FROM reports
WHERE drop_point_number = ? AND occurred_at > ?
ORDER BY occurred_at DESC, seq DESC`

const visitsSinceSQLite = `
SELECT id, drop_point_number, occurred_at, action
FROM visits
WHERE drop_point_number = ? AND occurred_at > ?
ORDER BY occurred_at DESC, seq DESC`

const countReportsSQLite = `
SELECT count(*) FROM reports WHERE drop_point_number = ?`

const allLatestLocationsSQLite = `
SELECT id, drop_point_number, occurred_at, description, lat, lng, level
FROM (
    SELECT *, row_number() OVER (
        PARTITION BY drop_point_number
        ORDER BY occurred_at DESC, seq DESC) AS rn
    FROM locations
)
WHERE rn = 1`

const allLatestVisitsSQLite = `
SELECT id, drop_point_number, occurred_at, action
FROM (
    SELECT *, row_number() OVER (
        PARTITION BY drop_point_number
        ORDER BY occurred_at DESC, seq DESC) AS rn
    FROM visits
)
WHERE rn = 1`

// Reports at the exact visit time count as handled by that visit. The
// sentinel is the smallest int64, standing in for "never visited".
const allNewReportsSQLite = `
SELECT r.id, r.drop_point_number, r.occurred_at, r.state
FROM reports r
WHERE r.occurred_at > COALESCE(
        (SELECT max(v.occurred_at) FROM visits v WHERE v.drop_point_number = r.drop_point_number),
        -9223372036854775808)
ORDER BY r.drop_point_number, r.occurred_at DESC, r.seq DESC`

const allReportCountsSQLite = `
SELECT drop_point_number, count(*) FROM reports GROUP BY drop_point_number`

const changedSinceSQLite = `
SELECT number FROM drop_points WHERE created_at > ?
UNION
SELECT drop_point_number FROM locations WHERE occurred_at > ?
UNION
SELECT drop_point_number FROM reports WHERE occurred_at > ?
UNION
SELECT drop_point_number FROM visits WHERE occurred_at > ?
ORDER BY 1`

// ---------------------------------------------------------------------------
// Append operations
// ---------------------------------------------------------------------------

// AppendLocation appends a location event and returns the persisted row.
// An unknown drop point number results in domain.ErrNotFound.
func (r *EventLogRepo) AppendLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	q := r.store.querierFromCtx(ctx)

	_, err := q.ExecContext(ctx, appendLocationSQLite,
		loc.ID.String(), loc.Number, toMicro(loc.Time), loc.Description, loc.Lat, loc.Lng, loc.Level)
	if err != nil {
		return domain.Location{}, mapError(err, "location", loc.ID)
	}

	loc.Time = loc.Time.UTC().Truncate(time.Microsecond)
	return loc, nil
}

// AppendReport appends a report event and returns the persisted row.
// An unknown drop point number results in domain.ErrNotFound.
func (r *EventLogRepo) AppendReport(ctx context.Context, rep domain.Report) (domain.Report, error) {
	q := r.store.querierFromCtx(ctx)

	_, err := q.ExecContext(ctx, appendReportSQLite,
		rep.ID.String(), rep.Number, toMicro(rep.Time), string(rep.State))
	if err != nil {
		return domain.Report{}, mapError(err, "report", rep.ID)
	}

	rep.Time = rep.Time.UTC().Truncate(time.Microsecond)
	return rep, nil
}

// AppendVisit appends a visit event and returns the persisted row.
// An unknown drop point number results in domain.ErrNotFound.
func (r *EventLogRepo) AppendVisit(ctx context.Context, v domain.Visit) (domain.Visit, error) {
	q := r.store.querierFromCtx(ctx)

	_, err := q.ExecContext(ctx, appendVisitSQLite,
		v.ID.String(), v.Number, toMicro(v.Time), string(v.Action))
	if err != nil {
		return domain.Visit{}, mapError(err, "visit", v.ID)
	}

	v.Time = v.Time.UTC().Truncate(time.Microsecond)
	return v, nil
}

// ---------------------------------------------------------------------------
// Per-point reads
// ---------------------------------------------------------------------------

// Locations returns the full location history of a drop point, newest first.
func (r *EventLogRepo) Locations(ctx context.Context, number int) ([]domain.Location, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, locationsSQLite, number)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	return scanLocations(rows)
}

// Reports returns the full report history of a drop point, newest first.
func (r *EventLogRepo) Reports(ctx context.Context, number int) ([]domain.Report, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, reportsSQLite, number)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// Visits returns the full visit history of a drop point, newest first.
func (r *EventLogRepo) Visits(ctx context.Context, number int) ([]domain.Visit, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, visitsSQLite, number)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	return scanVisits(rows)
}

// LatestLocation returns the most recent location event of a drop point.
// Returns domain.ErrNotFound if no location was ever logged.
func (r *EventLogRepo) LatestLocation(ctx context.Context, number int) (domain.Location, error) {
	q := r.store.querierFromCtx(ctx)

	loc, err := scanLocation(q.QueryRowContext(ctx, latestLocationSQLite, number))
	if err != nil {
		return domain.Location{}, mapError(err, "latest location", number)
	}

	return loc, nil
}

// LatestReport returns the most recent report event of a drop point.
// Returns domain.ErrNotFound if no report was ever logged.
func (r *EventLogRepo) LatestReport(ctx context.Context, number int) (domain.Report, error) {
	q := r.store.querierFromCtx(ctx)

	rep, err := scanReport(q.QueryRowContext(ctx, latestReportSQLite, number))
	if err != nil {
		return domain.Report{}, mapError(err, "latest report", number)
	}

	return rep, nil
}

// LatestVisit returns the most recent visit event of a drop point.
// Returns domain.ErrNotFound if no visit was ever logged.
func (r *EventLogRepo) LatestVisit(ctx context.Context, number int) (domain.Visit, error) {
	q := r.store.querierFromCtx(ctx)

	v, err := scanVisit(q.QueryRowContext(ctx, latestVisitSQLite, number))
	if err != nil {
		return domain.Visit{}, mapError(err, "latest visit", number)
	}

	return v, nil
}

// LocationsSince returns location events strictly newer than since, newest
// first.
func (r *EventLogRepo) LocationsSince(ctx context.Context, number int, since time.Time) ([]domain.Location, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, locationsSinceSQLite, number, toMicro(since))
	if err != nil {
		return nil, fmt.Errorf("list locations since: %w", err)
	}
	defer rows.Close()

	return scanLocations(rows)
}

// ReportsSince returns reports strictly newer than since, newest first.
func (r *EventLogRepo) ReportsSince(ctx context.Context, number int, since time.Time) ([]domain.Report, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, reportsSinceSQLite, number, toMicro(since))
	if err != nil {
		return nil, fmt.Errorf("list reports since: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// VisitsSince returns visits strictly newer than since, newest first.
func (r *EventLogRepo) VisitsSince(ctx context.Context, number int, since time.Time) ([]domain.Visit, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, visitsSinceSQLite, number, toMicro(since))
	if err != nil {
		return nil, fmt.Errorf("list visits since: %w", err)
	}
	defer rows.Close()

	return scanVisits(rows)
}

// CountReports returns the total number of reports ever logged for a drop point.
func (r *EventLogRepo) CountReports(ctx context.Context, number int) (int, error) {
	q := r.store.querierFromCtx(ctx)

	var n int
	if err := q.QueryRowContext(ctx, countReportsSQLite, number).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}

	return n, nil
}

// ---------------------------------------------------------------------------
// Fleet-wide reads
// ---------------------------------------------------------------------------

// AllLatestLocations returns the most recent location event of every drop
// point that has one, keyed by number.
func (r *EventLogRepo) AllLatestLocations(ctx context.Context) (map[int]domain.Location, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, allLatestLocationsSQLite)
	if err != nil {
		return nil, fmt.Errorf("list latest locations: %w", err)
	}
	defer rows.Close()

	locations := make(map[int]domain.Location)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan latest location: %w", err)
		}
		locations[loc.Number] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest locations: %w", err)
	}

	return locations, nil
}

// AllLatestVisits returns the most recent visit event of every drop point
// that has one, keyed by number.
func (r *EventLogRepo) AllLatestVisits(ctx context.Context) (map[int]domain.Visit, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, allLatestVisitsSQLite)
	if err != nil {
		return nil, fmt.Errorf("list latest visits: %w", err)
	}
	defer rows.Close()

	visits := make(map[int]domain.Visit)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan latest visit: %w", err)
		}
		visits[v.Number] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest visits: %w", err)
	}

	return visits, nil
}

// AllNewReports returns, per drop point, the reports newer than its latest
// visit, newest first. Drop points without new reports have no entry.
func (r *EventLogRepo) AllNewReports(ctx context.Context) (map[int][]domain.Report, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, allNewReportsSQLite)
	if err != nil {
		return nil, fmt.Errorf("list new reports: %w", err)
	}
	defer rows.Close()

	reports := make(map[int][]domain.Report)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan new report: %w", err)
		}
		reports[rep.Number] = append(reports[rep.Number], rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate new reports: %w", err)
	}

	return reports, nil
}

// AllReportCounts returns the total report count of every drop point that
// has reports, keyed by number.
func (r *EventLogRepo) AllReportCounts(ctx context.Context) (map[int]int, error) {
	q := r.store.querierFromCtx(ctx)

	rows, err := q.QueryContext(ctx, allReportCountsSQLite)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var number, n int
		if err := rows.Scan(&number, &n); err != nil {
			return nil, fmt.Errorf("scan report count: %w", err)
		}
		counts[number] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report counts: %w", err)
	}

	return counts, nil
}

// ChangedSince returns the numbers of drop points created or with events
// logged strictly after since, ascending. Removal alone does not count as
// a change.
func (r *EventLogRepo) ChangedSince(ctx context.Context, since time.Time) ([]int, error) {
	q := r.store.querierFromCtx(ctx)

	us := toMicro(since)
	rows, err := q.QueryContext(ctx, changedSinceSQLite, us, us, us, us)
	if err != nil {
		return nil, fmt.Errorf("list changed drop points: %w", err)
	}
	defer rows.Close()

	numbers := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan changed drop point: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changed drop points: %w", err)
	}

	return numbers, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanLocation(row rowScanner) (domain.Location, error) {
	var loc domain.Location
	var occurredAt int64
	var lat, lng sql.NullFloat64
	var level sql.NullInt64

	if err := row.Scan(&loc.ID, &loc.Number, &occurredAt, &loc.Description, &lat, &lng, &level); err != nil {
		return domain.Location{}, err
	}

	loc.Time = fromMicro(occurredAt)
	if lat.Valid {
		loc.Lat = &lat.Float64
	}
	if lng.Valid {
		loc.Lng = &lng.Float64
	}
	if level.Valid {
		l := int(level.Int64)
		loc.Level = &l
	}

	return loc, nil
}

func scanLocations(rows *sql.Rows) ([]domain.Location, error) {
	locations := []domain.Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}

	return locations, nil
}

func scanReport(row rowScanner) (domain.Report, error) {
	var rep domain.Report
	var occurredAt int64
	var state string

	if err := row.Scan(&rep.ID, &rep.Number, &occurredAt, &state); err != nil {
		return domain.Report{}, err
	}

	rep.Time = fromMicro(occurredAt)
	rep.State = domain.State(state)

	return rep, nil
}

func scanReports(rows *sql.Rows) ([]domain.Report, error) {
	reports := []domain.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}

	return reports, nil
}

func scanVisit(row rowScanner) (domain.Visit, error) {
	var v domain.Visit
	var occurredAt int64
	var action string

	if err := row.Scan(&v.ID, &v.Number, &occurredAt, &action); err != nil {
		return domain.Visit{}, err
	}

	v.Time = fromMicro(occurredAt)
	v.Action = domain.VisitAction(action)

	return v, nil
}

func scanVisits(rows *sql.Rows) ([]domain.Visit, error) {
	visits := []domain.Visit{}
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}

	return visits, nil
}
