package tracker

import (
	"context"
	"fmt"
)

// ---------------------------------------------------------------------------
// NextFreeNumber
// ---------------------------------------------------------------------------

// NextFreeNumber suggests the next unused sign number: one past the highest
// number ever issued, or 1 for an empty venue. Numbers of removed drop
// points stay reserved and are never suggested again.
func (s *Service) NextFreeNumber(ctx context.Context) (int, error) {
	max, err := s.points.MaxNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("max number: %w", err)
	}
	return max + 1, nil
}
