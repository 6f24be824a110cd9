package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// ---------------------------------------------------------------------------
// Remove
// ---------------------------------------------------------------------------

// Remove takes a drop point out of service at the given time (zero = now).
// The number stays reserved and the history stays readable; only the
// removal timestamp is set. Removing twice is a state error.
func (s *Service) Remove(ctx context.Context, number int, at time.Time) error {
	now := s.now()
	if at.IsZero() {
		at = now
	}

	var (
		oldState domain.State
		category string
	)
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		dp, err := s.points.GetForUpdate(txCtx, number)
		if err != nil {
			return err
		}
		if dp.IsRemoved() {
			return domain.NewStateError(number, "remove", "already removed")
		}
		if err := checkEventTime(at, now, dp.CreatedAt); err != nil {
			return err
		}

		if err := s.points.SetRemoved(txCtx, number, at); err != nil {
			return fmt.Errorf("set removed: %w", err)
		}

		oldState = dp.LastState
		category = s.categorySlug(dp.CategoryID)
		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.sink.Decrement(oldState, category)
	s.log.InfoContext(ctx, "drop point removed", slog.Int("number", number))

	return nil
}
