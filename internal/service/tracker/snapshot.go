package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/bottlecrew/droptracker/internal/domain"
	"github.com/bottlecrew/droptracker/internal/service/tracker/priority"
)

// Snapshot is the exported per-drop-point record. The JSON field names are
// a fixed contract with downstream consumers; base_time is Unix seconds.
type Snapshot struct {
	Number         int          `json:"number"`
	CategoryID     int          `json:"category_id"`
	Category       string       `json:"category"`
	Description    string       `json:"description"`
	ReportsTotal   int          `json:"reports_total"`
	ReportsNew     int          `json:"reports_new"`
	Priority       float64      `json:"priority"`
	PriorityFactor float64      `json:"priority_factor"`
	BaseTime       int64        `json:"base_time"`
	LastState      domain.State `json:"last_state"`
	Removed        bool         `json:"removed"`
	Lat            *float64     `json:"lat"`
	Lng            *float64     `json:"lng"`
	Level          *int         `json:"level"`
}

// ---------------------------------------------------------------------------
// Info / InfoAll
// ---------------------------------------------------------------------------

// Info returns the snapshot of one drop point.
func (s *Service) Info(ctx context.Context, number int) (*Snapshot, error) {
	dp, err := s.points.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	loc, err := s.latestLocation(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("current location of %d: %w", number, err)
	}

	lastVisit, err := s.latestVisit(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("last visit of %d: %w", number, err)
	}

	total, err := s.events.CountReports(ctx, number)
	if err != nil {
		return nil, err
	}

	var newReports []domain.Report
	if lastVisit != nil {
		newReports, err = s.events.ReportsSince(ctx, number, lastVisit.Time)
	} else {
		newReports, err = s.events.Reports(ctx, number)
	}
	if err != nil {
		return nil, fmt.Errorf("new reports of %d: %w", number, err)
	}

	snap := s.buildSnapshot(dp, loc, lastVisit, total, newReports)
	return &snap, nil
}

// InfoAll returns the snapshot of every drop point keyed by number, removed
// ones included. A non-nil changedSince narrows the result to drop points
// with any creation, location change, report or visit strictly after the
// cutoff; a removal alone does not count as a change.
func (s *Service) InfoAll(ctx context.Context, changedSince *time.Time) (map[int]Snapshot, error) {
	points, err := s.points.List(ctx, domain.DropPointFilter{IncludeRemoved: true})
	if err != nil {
		return nil, err
	}

	var changed map[int]bool
	if changedSince != nil {
		numbers, err := s.events.ChangedSince(ctx, *changedSince)
		if err != nil {
			return nil, fmt.Errorf("changed since %s: %w", changedSince.Format(time.RFC3339), err)
		}
		changed = make(map[int]bool, len(numbers))
		for _, n := range numbers {
			changed[n] = true
		}
	}

	locations, err := s.events.AllLatestLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("current locations: %w", err)
	}
	visits, err := s.events.AllLatestVisits(ctx)
	if err != nil {
		return nil, fmt.Errorf("last visits: %w", err)
	}
	newReports, err := s.events.AllNewReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("new reports: %w", err)
	}
	counts, err := s.events.AllReportCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("report counts: %w", err)
	}

	snaps := make(map[int]Snapshot, len(points))
	for _, dp := range points {
		if changed != nil && !changed[dp.Number] {
			continue
		}

		var loc *domain.Location
		if l, ok := locations[dp.Number]; ok {
			loc = &l
		}
		var visit *domain.Visit
		if v, ok := visits[dp.Number]; ok {
			visit = &v
		}

		snaps[dp.Number] = s.buildSnapshot(dp, loc, visit, counts[dp.Number], newReports[dp.Number])
	}

	return snaps, nil
}

// buildSnapshot assembles one snapshot from already fetched parts.
// newReports must be the reports since the last visit, newest first.
func (s *Service) buildSnapshot(dp domain.DropPoint, loc *domain.Location, lastVisit *domain.Visit, reportsTotal int, newReports []domain.Report) Snapshot {
	weights := make([]float64, 0, len(newReports))
	for _, rep := range newReports {
		weights = append(weights, rep.Weight())
	}

	var visitedAt *time.Time
	if lastVisit != nil {
		visitedAt = &lastVisit.Time
	}

	factor := priority.Factor(s.scoringParams(), weights, dp.IsRemoved())
	baseTime := priority.BaseTime(dp.CreatedAt, visitedAt)

	snap := Snapshot{
		Number:         dp.Number,
		CategoryID:     dp.CategoryID,
		Category:       s.categoryName(dp.CategoryID),
		ReportsTotal:   reportsTotal,
		ReportsNew:     len(newReports),
		Priority:       priority.Score(factor, baseTime, s.now()),
		PriorityFactor: factor,
		BaseTime:       baseTime.Unix(),
		LastState:      dp.LastState,
		Removed:        dp.IsRemoved(),
	}
	if loc != nil {
		snap.Description = loc.Description
		snap.Lat = loc.Lat
		snap.Lng = loc.Lng
		snap.Level = loc.Level
	}
	return snap
}
