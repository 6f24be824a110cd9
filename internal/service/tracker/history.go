package tracker

import (
	"context"
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// History returns the merged timeline of a drop point, newest first: the
// removal marker if removed, then visits, reports and location changes,
// down to the creation marker.
func (s *Service) History(ctx context.Context, number int) ([]HistoryEntry, error) {
	dp, err := s.points.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	locations, err := s.events.Locations(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("history of %d: %w", number, err)
	}
	reports, err := s.events.Reports(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("history of %d: %w", number, err)
	}
	visits, err := s.events.Visits(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("history of %d: %w", number, err)
	}

	entries := make([]HistoryEntry, 0, len(locations)+len(reports)+len(visits)+2)
	if dp.RemovedAt != nil {
		entries = append(entries, HistoryEntry{Time: *dp.RemovedAt, Kind: HistoryRemoved})
	}
	for i := range visits {
		entries = append(entries, HistoryEntry{Time: visits[i].Time, Kind: HistoryVisit, Visit: &visits[i]})
	}
	for i := range reports {
		entries = append(entries, HistoryEntry{Time: reports[i].Time, Kind: HistoryReport, Report: &reports[i]})
	}
	for i := range locations {
		entries = append(entries, HistoryEntry{Time: locations[i].Time, Kind: HistoryLocation, Location: &locations[i]})
	}
	entries = append(entries, HistoryEntry{Time: dp.CreatedAt, Kind: HistoryCreated})

	// Stable sort keeps the append order for equal timestamps: the removal
	// marker leads and the creation marker trails at one instant, and a
	// visit outranks a report, matching the state derivation rule.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})

	return entries, nil
}
