// Package eventlog implements the drop point event streams using PostgreSQL.
// Locations, reports and visits live in separate append-only tables; rows
// are ordered by occurrence time with the insert sequence as tiebreaker.
package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	postgres "github.com/bottlecrew/droptracker/internal/adapter/postgres"
	"github.com/bottlecrew/droptracker/internal/domain"
)

// Repo provides event stream persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new event log repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const appendLocationSQL = `
INSERT INTO locations (id, drop_point_number, occurred_at, description, lat, lng, level)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, drop_point_number, occurred_at, description, lat, lng, level`

const appendReportSQL = `
INSERT INTO reports (id, drop_point_number, occurred_at, state)
VALUES ($1, $2, $3, $4)
RETURNING id, drop_point_number, occurred_at, state`

const appendVisitSQL = `
INSERT INTO visits (id, drop_point_number, occurred_at, action)
VALUES ($1, $2, $3, $4)
RETURNING id, drop_point_number, occurred_at, action`

const locationsSQL = `
SELECT id, drop_point_number, occurred_at, description, lat, lng, level
FROM locations
WHERE drop_point_number = $1
ORDER BY occurred_at DESC, seq DESC`

const reportsSQL = `
SELECT id, drop_point_number, occurred_at, state
FROM reports
WHERE drop_point_number = $1
ORDER BY occurred_at DESC, seq DESC`

const visitsSQL = `
SELECT id, drop_point_number, occurred_at, action
FROM visits
WHERE drop_point_number = $1
ORDER BY occurred_at DESC, seq DESC`

const latestLocationSQL = locationsSQL + `
LIMIT 1`

const latestReportSQL = reportsSQL + `
LIMIT 1`

const latestVisitSQL = visitsSQL + `
LIMIT 1`

const locationsSinceSQL = `
SELECT id, drop_point_number, occurred_at, description, lat, lng, level
FROM locations
WHERE drop_point_number = $1 AND occurred_at > $2
ORDER BY occurred_at DESC, seq DESC`

const reportsSinceSQL = `
SELECT id, drop_point_number, occurred_at, state
FROM reports
WHERE drop_point_number = $1 AND occurred_at > $2
ORDER BY occurred_at DESC, seq DESC`

const visitsSinceSQL = `
SELECT id, drop_point_number, occurred_at, action
FROM visits
WHERE drop_point_number = $1 AND occurred_at > $2
ORDER BY occurred_at DESC, seq DESC`

const countReportsSQL = `
SELECT count(*) FROM reports WHERE drop_point_number = $1`

const allLatestLocationsSQL = `
SELECT DISTINCT ON (drop_point_number)
       id, drop_point_number, occurred_at, description, lat, lng, level
FROM locations
ORDER BY drop_point_number, occurred_at DESC, seq DESC`

const allLatestVisitsSQL = `
SELECT DISTINCT ON (drop_point_number)
       id, drop_point_number, occurred_at, action
FROM visits
ORDER BY drop_point_number, occurred_at DESC, seq DESC`

// allNewReportsSQL selects, per drop point, every report strictly newer than
// the point's latest visit. Reports at the exact visit time count as handled
// by that visit.
const allNewReportsSQL = `
SELECT r.id, r.drop_point_number, r.occurred_at, r.state
FROM reports r
WHERE r.occurred_at > COALESCE(
        (SELECT max(v.occurred_at) FROM visits v WHERE v.drop_point_number = r.drop_point_number),
        '-infinity')
ORDER BY r.drop_point_number, r.occurred_at DESC, r.seq DESC`

const allReportCountsSQL = `
SELECT drop_point_number, count(*) FROM reports GROUP BY drop_point_number`

const changedSinceSQL = `
SELECT number FROM drop_points WHERE created_at > $1
UNION
SELECT drop_point_number FROM locations WHERE occurred_at > $1
UNION
SELECT drop_point_number FROM reports WHERE occurred_at > $1
UNION
SELECT drop_point_number FROM visits WHERE occurred_at > $1
ORDER BY 1`

// ---------------------------------------------------------------------------
// Append operations
// ---------------------------------------------------------------------------

// AppendLocation appends a location event and returns the persisted row.
// An unknown drop point number results in domain.ErrNotFound.
func (r *Repo) AppendLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	row := querier.QueryRow(ctx, appendLocationSQL,
		loc.ID, loc.Number, loc.Time, loc.Description, loc.Lat, loc.Lng, loc.Level)

	created, err := scanLocation(row)
	if err != nil {
		return domain.Location{}, postgres.MapError(err, "location", loc.ID)
	}

	return created, nil
}

// AppendReport appends a report event and returns the persisted row.
// An unknown drop point number results in domain.ErrNotFound.
func (r *Repo) AppendReport(ctx context.Context, rep domain.Report) (domain.Report, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	row := querier.QueryRow(ctx, appendReportSQL,
		rep.ID, rep.Number, rep.Time, string(rep.State))

	created, err := scanReport(row)
	if err != nil {
		return domain.Report{}, postgres.MapError(err, "report", rep.ID)
	}

	return created, nil
}

// AppendVisit appends a visit event and returns the persisted row.
// An unknown drop point number results in domain.ErrNotFound.
func (r *Repo) AppendVisit(ctx context.Context, v domain.Visit) (domain.Visit, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	row := querier.QueryRow(ctx, appendVisitSQL,
		v.ID, v.Number, v.Time, string(v.Action))

	created, err := scanVisit(row)
	if err != nil {
		return domain.Visit{}, postgres.MapError(err, "visit", v.ID)
	}

	return created, nil
}

// ---------------------------------------------------------------------------
// Per-point reads
// ---------------------------------------------------------------------------

// Locations returns the full location history of a drop point, newest first.
func (r *Repo) Locations(ctx context.Context, number int) ([]domain.Location, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, locationsSQL, number)
	if err != nil {
		return nil, fmt.Errorf("locations of %d: %w", number, err)
	}
	defer rows.Close()

	locs, err := scanLocations(rows)
	if err != nil {
		return nil, fmt.Errorf("locations of %d: %w", number, err)
	}

	return locs, nil
}

// Reports returns the full report history of a drop point, newest first.
func (r *Repo) Reports(ctx context.Context, number int) ([]domain.Report, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, reportsSQL, number)
	if err != nil {
		return nil, fmt.Errorf("reports of %d: %w", number, err)
	}
	defer rows.Close()

	reps, err := scanReports(rows)
	if err != nil {
		return nil, fmt.Errorf("reports of %d: %w", number, err)
	}

	return reps, nil
}

// Visits returns the full visit history of a drop point, newest first.
func (r *Repo) Visits(ctx context.Context, number int) ([]domain.Visit, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, visitsSQL, number)
	if err != nil {
		return nil, fmt.Errorf("visits of %d: %w", number, err)
	}
	defer rows.Close()

	visits, err := scanVisits(rows)
	if err != nil {
		return nil, fmt.Errorf("visits of %d: %w", number, err)
	}

	return visits, nil
}

// LatestLocation returns the newest location event of a drop point.
// Returns domain.ErrNotFound if the point has no location history.
func (r *Repo) LatestLocation(ctx context.Context, number int) (domain.Location, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	loc, err := scanLocation(querier.QueryRow(ctx, latestLocationSQL, number))
	if err != nil {
		return domain.Location{}, postgres.MapError(err, "latest location", number)
	}

	return loc, nil
}

// LatestReport returns the newest report event of a drop point.
// Returns domain.ErrNotFound if the point has never been reported.
func (r *Repo) LatestReport(ctx context.Context, number int) (domain.Report, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rep, err := scanReport(querier.QueryRow(ctx, latestReportSQL, number))
	if err != nil {
		return domain.Report{}, postgres.MapError(err, "latest report", number)
	}

	return rep, nil
}

// LatestVisit returns the newest visit event of a drop point.
// Returns domain.ErrNotFound if the point has never been visited.
func (r *Repo) LatestVisit(ctx context.Context, number int) (domain.Visit, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	v, err := scanVisit(querier.QueryRow(ctx, latestVisitSQL, number))
	if err != nil {
		return domain.Visit{}, postgres.MapError(err, "latest visit", number)
	}

	return v, nil
}

// LocationsSince returns the location events of a drop point strictly newer
// than since, newest first.
func (r *Repo) LocationsSince(ctx context.Context, number int, since time.Time) ([]domain.Location, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, locationsSinceSQL, number, since)
	if err != nil {
		return nil, fmt.Errorf("locations of %d since %s: %w", number, since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	locs, err := scanLocations(rows)
	if err != nil {
		return nil, fmt.Errorf("locations of %d since %s: %w", number, since.Format(time.RFC3339), err)
	}

	return locs, nil
}

// ReportsSince returns the reports of a drop point strictly newer than
// since, newest first.
func (r *Repo) ReportsSince(ctx context.Context, number int, since time.Time) ([]domain.Report, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, reportsSinceSQL, number, since)
	if err != nil {
		return nil, fmt.Errorf("reports of %d since %s: %w", number, since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	reps, err := scanReports(rows)
	if err != nil {
		return nil, fmt.Errorf("reports of %d since %s: %w", number, since.Format(time.RFC3339), err)
	}

	return reps, nil
}

// VisitsSince returns the visits of a drop point strictly newer than since,
// newest first.
func (r *Repo) VisitsSince(ctx context.Context, number int, since time.Time) ([]domain.Visit, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, visitsSinceSQL, number, since)
	if err != nil {
		return nil, fmt.Errorf("visits of %d since %s: %w", number, since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	visits, err := scanVisits(rows)
	if err != nil {
		return nil, fmt.Errorf("visits of %d since %s: %w", number, since.Format(time.RFC3339), err)
	}

	return visits, nil
}

// CountReports returns the lifetime report count of a drop point.
func (r *Repo) CountReports(ctx context.Context, number int) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	var n int
	if err := querier.QueryRow(ctx, countReportsSQL, number).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports of %d: %w", number, err)
	}

	return n, nil
}

// ---------------------------------------------------------------------------
// Fleet-wide reads
// ---------------------------------------------------------------------------

// AllLatestLocations returns the newest location event of every drop point
// that has one, keyed by number.
func (r *Repo) AllLatestLocations(ctx context.Context) (map[int]domain.Location, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, allLatestLocationsSQL)
	if err != nil {
		return nil, fmt.Errorf("all latest locations: %w", err)
	}
	defer rows.Close()

	out := make(map[int]domain.Location)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("all latest locations: %w", err)
		}
		out[loc.Number] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("all latest locations: %w", err)
	}

	return out, nil
}

// AllLatestVisits returns the newest visit event of every drop point that
// has one, keyed by number.
func (r *Repo) AllLatestVisits(ctx context.Context) (map[int]domain.Visit, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, allLatestVisitsSQL)
	if err != nil {
		return nil, fmt.Errorf("all latest visits: %w", err)
	}
	defer rows.Close()

	out := make(map[int]domain.Visit)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("all latest visits: %w", err)
		}
		out[v.Number] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("all latest visits: %w", err)
	}

	return out, nil
}

// AllNewReports returns, for every drop point, the reports newer than its
// latest visit (all reports for never-visited points), newest first.
func (r *Repo) AllNewReports(ctx context.Context) (map[int][]domain.Report, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, allNewReportsSQL)
	if err != nil {
		return nil, fmt.Errorf("all new reports: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]domain.Report)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("all new reports: %w", err)
		}
		out[rep.Number] = append(out[rep.Number], rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("all new reports: %w", err)
	}

	return out, nil
}

// AllReportCounts returns the lifetime report count of every drop point
// that has at least one report, keyed by number.
func (r *Repo) AllReportCounts(ctx context.Context) (map[int]int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, allReportCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("all report counts: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var number, count int
		if err := rows.Scan(&number, &count); err != nil {
			return nil, fmt.Errorf("all report counts: %w", err)
		}
		out[number] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("all report counts: %w", err)
	}

	return out, nil
}

// ChangedSince returns the numbers of drop points created or touched by any
// event strictly after since, ascending. Removal alone does not count as a
// change.
func (r *Repo) ChangedSince(ctx context.Context, since time.Time) ([]int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := querier.Query(ctx, changedSinceSQL, since)
	if err != nil {
		return nil, fmt.Errorf("changed since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("changed since %s: %w", since.Format(time.RFC3339), err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("changed since %s: %w", since.Format(time.RFC3339), err)
	}

	if numbers == nil {
		numbers = []int{}
	}

	return numbers, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// scanLocation scans a single location row. Works for both pgx.Row and
// pgx.Rows.
func scanLocation(row pgx.Row) (domain.Location, error) {
	var loc domain.Location

	if err := row.Scan(&loc.ID, &loc.Number, &loc.Time,
		&loc.Description, &loc.Lat, &loc.Lng, &loc.Level); err != nil {
		return domain.Location{}, err
	}

	return loc, nil
}

func scanLocations(rows pgx.Rows) ([]domain.Location, error) {
	var locs []domain.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if locs == nil {
		locs = []domain.Location{}
	}

	return locs, nil
}

// scanReport scans a single report row.
func scanReport(row pgx.Row) (domain.Report, error) {
	var rep domain.Report
	var state string

	if err := row.Scan(&rep.ID, &rep.Number, &rep.Time, &state); err != nil {
		return domain.Report{}, err
	}

	rep.State = domain.State(state)
	return rep, nil
}

func scanReports(rows pgx.Rows) ([]domain.Report, error) {
	var reps []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if reps == nil {
		reps = []domain.Report{}
	}

	return reps, nil
}

// scanVisit scans a single visit row.
func scanVisit(row pgx.Row) (domain.Visit, error) {
	var v domain.Visit
	var action string

	if err := row.Scan(&v.ID, &v.Number, &v.Time, &action); err != nil {
		return domain.Visit{}, err
	}

	v.Action = domain.VisitAction(action)
	return v, nil
}

func scanVisits(rows pgx.Rows) ([]domain.Visit, error) {
	var visits []domain.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if visits == nil {
		visits = []domain.Visit{}
	}

	return visits, nil
}
