// Package tracker implements the drop point lifecycle: creation, removal,
// reports, visits, location changes and the derived views (snapshots,
// history, priority) built on top of the append-only event log.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bottlecrew/droptracker/internal/config"
	"github.com/bottlecrew/droptracker/internal/domain"
	"github.com/bottlecrew/droptracker/internal/service/tracker/priority"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type dropPointRepo interface {
	Create(ctx context.Context, dp domain.DropPoint) (domain.DropPoint, error)
	Get(ctx context.Context, number int) (domain.DropPoint, error)
	GetForUpdate(ctx context.Context, number int) (domain.DropPoint, error)
	List(ctx context.Context, filter domain.DropPointFilter) ([]domain.DropPoint, error)
	SetRemoved(ctx context.Context, number int, removedAt time.Time) error
	UpdateLastState(ctx context.Context, number int, state domain.State) error
	MaxNumber(ctx context.Context) (int, error)
	CountByState(ctx context.Context) ([]domain.StateCount, error)
}

type eventLog interface {
	AppendLocation(ctx context.Context, loc domain.Location) (domain.Location, error)
	AppendReport(ctx context.Context, rep domain.Report) (domain.Report, error)
	AppendVisit(ctx context.Context, v domain.Visit) (domain.Visit, error)
	Locations(ctx context.Context, number int) ([]domain.Location, error)
	Reports(ctx context.Context, number int) ([]domain.Report, error)
	Visits(ctx context.Context, number int) ([]domain.Visit, error)
	LatestLocation(ctx context.Context, number int) (domain.Location, error)
	LatestReport(ctx context.Context, number int) (domain.Report, error)
	LatestVisit(ctx context.Context, number int) (domain.Visit, error)
	ReportsSince(ctx context.Context, number int, since time.Time) ([]domain.Report, error)
	CountReports(ctx context.Context, number int) (int, error)
	AllLatestLocations(ctx context.Context) (map[int]domain.Location, error)
	AllLatestVisits(ctx context.Context) (map[int]domain.Visit, error)
	AllNewReports(ctx context.Context) (map[int][]domain.Report, error)
	AllReportCounts(ctx context.Context) (map[int]int, error)
	ChangedSince(ctx context.Context, since time.Time) ([]int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// metricsSink receives the paired counter updates emitted on every state
// transition. Implemented by metrics.Registry; metrics.Nop discards them.
type metricsSink interface {
	Increment(state domain.State, category string)
	Decrement(state domain.State, category string)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the drop point tracker business logic.
type Service struct {
	log    *slog.Logger
	points dropPointRepo
	events eventLog
	tx     txManager
	sink   metricsSink
	cfg    config.TrackerConfig
	cats   atomic.Pointer[config.CategoryTable]

	// now is the injected clock. Tests pin it to a fixed instant.
	now func() time.Time
}

// NewService creates a new tracker service.
func NewService(
	logger *slog.Logger,
	points dropPointRepo,
	events eventLog,
	tx txManager,
	sink metricsSink,
	categories *config.CategoryTable,
	cfg config.TrackerConfig,
) *Service {
	s := &Service{
		log:    logger.With("service", "tracker"),
		points: points,
		events: events,
		tx:     tx,
		sink:   sink,
		cfg:    cfg,
		now:    time.Now,
	}
	s.cats.Store(categories)
	return s
}

// SetCategories swaps the category table. Safe to call while the service is
// in use; the config watcher calls it when the table file changes on disk.
func (s *Service) SetCategories(table *config.CategoryTable) {
	s.cats.Store(table)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Service) categories() *config.CategoryTable {
	return s.cats.Load()
}

// categorySlug returns the counter label of a category. Unknown ids fall
// back to the bare id so a stale table never loses a counter update.
func (s *Service) categorySlug(id int) string {
	if cat, ok := s.categories().ByID(id); ok {
		return cat.Slug()
	}
	return strconv.Itoa(id)
}

// categoryName returns the display name of a category, or "" if the table
// no longer knows the id.
func (s *Service) categoryName(id int) string {
	if cat, ok := s.categories().ByID(id); ok {
		return cat.Name
	}
	return ""
}

func (s *Service) scoringParams() priority.Params {
	return priority.Params{
		VisitPriority: s.cfg.DefaultVisitPriority,
		VisitInterval: s.cfg.VisitInterval,
		Enabled:       !s.cfg.ScoringDisabled,
	}
}

// latestReport returns the newest report of a drop point, or nil if it has
// never been reported.
func (s *Service) latestReport(ctx context.Context, number int) (*domain.Report, error) {
	rep, err := s.events.LatestReport(ctx, number)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// latestVisit returns the newest visit of a drop point, or nil if it has
// never been visited.
func (s *Service) latestVisit(ctx context.Context, number int) (*domain.Visit, error) {
	v, err := s.events.LatestVisit(ctx, number)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// latestLocation returns the newest location of a drop point, or nil if it
// has no location history.
func (s *Service) latestLocation(ctx context.Context, number int) (*domain.Location, error) {
	loc, err := s.events.LatestLocation(ctx, number)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// recomputeState re-derives the cached state from the latest report and
// visit and persists it if it moved. Must run inside the unit of work that
// appended the event; the caller emits the paired counter update only after
// that unit of work commits.
func (s *Service) recomputeState(ctx context.Context, dp domain.DropPoint) (domain.State, bool, error) {
	lastReport, err := s.latestReport(ctx, dp.Number)
	if err != nil {
		return "", false, err
	}
	lastVisit, err := s.latestVisit(ctx, dp.Number)
	if err != nil {
		return "", false, err
	}

	next := domain.DeriveState(lastReport, lastVisit)
	if next == dp.LastState {
		return next, false, nil
	}

	if err := s.points.UpdateLastState(ctx, dp.Number, next); err != nil {
		return "", false, err
	}
	return next, true, nil
}

// stateTransition is a pending counter update captured inside a unit of
// work and emitted only after it commits.
type stateTransition struct {
	from, to domain.State
	category string
}

// emitTransition feeds a committed state transition to the sink. A nil
// transition means the appended event left the state standing.
func (s *Service) emitTransition(ctx context.Context, number int, t *stateTransition) {
	if t == nil {
		return
	}
	s.sink.Decrement(t.from, t.category)
	s.sink.Increment(t.to, t.category)
	s.log.DebugContext(ctx, "state changed",
		slog.Int("number", number),
		slog.String("from", t.from.String()),
		slog.String("to", t.to.String()),
	)
}

// checkEventTime validates that a timestamp falls inside the window an
// event may carry: not in the future, not before the drop point existed.
func checkEventTime(at, now, createdAt time.Time) error {
	if at.After(now) {
		return domain.NewTemporalError("time", at, "in the future")
	}
	if at.Before(createdAt) {
		return domain.NewTemporalError("time", at, "precedes creation")
	}
	return nil
}
