package tracker

import (
	"context"
	"fmt"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// ---------------------------------------------------------------------------
// Get / List
// ---------------------------------------------------------------------------

// Get returns a drop point with its current location.
func (s *Service) Get(ctx context.Context, number int) (*DropPointDetail, error) {
	dp, err := s.points.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	loc, err := s.latestLocation(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("current location of %d: %w", number, err)
	}

	return &DropPointDetail{DropPoint: dp, Location: loc}, nil
}

// List returns the drop points matching the filter with their current
// locations, ordered by number. The zero filter lists the active fleet.
func (s *Service) List(ctx context.Context, filter domain.DropPointFilter) ([]DropPointDetail, error) {
	points, err := s.points.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	locations, err := s.events.AllLatestLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("current locations: %w", err)
	}

	details := make([]DropPointDetail, 0, len(points))
	for _, dp := range points {
		detail := DropPointDetail{DropPoint: dp}
		if loc, ok := locations[dp.Number]; ok {
			detail.Location = &loc
		}
		details = append(details, detail)
	}

	return details, nil
}
