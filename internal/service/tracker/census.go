package tracker

import (
	"context"
	"fmt"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// gaugeSetter pins counter series to absolute values. Implemented by
// metrics.Registry.
type gaugeSetter interface {
	Set(state domain.State, category string, value float64)
}

// ---------------------------------------------------------------------------
// SeedGauges
// ---------------------------------------------------------------------------

// SeedGauges writes the current fleet census into dest, one series per
// {state, category} pair of the active fleet. Run after a restart so the
// gauges resume from stored state instead of zero.
func (s *Service) SeedGauges(ctx context.Context, dest gaugeSetter) error {
	counts, err := s.points.CountByState(ctx)
	if err != nil {
		return fmt.Errorf("fleet census: %w", err)
	}

	for _, c := range counts {
		dest.Set(c.State, s.categorySlug(c.CategoryID), float64(c.Count))
	}
	return nil
}
