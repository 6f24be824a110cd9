package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// ---------------------------------------------------------------------------
// Report
// ---------------------------------------------------------------------------

// Report appends a fill state observation at the given time (zero = now)
// and recomputes the cached state inside the same unit of work. The counter
// pair for a state transition is emitted only after the commit.
func (s *Service) Report(ctx context.Context, number int, state domain.State, at time.Time) (*domain.Report, error) {
	if !state.IsValid() {
		return nil, domain.NewValidationError("state", "unknown state")
	}

	now := s.now()
	if at.IsZero() {
		at = now
	}

	var (
		appended   domain.Report
		transition *stateTransition
	)
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		dp, err := s.points.GetForUpdate(txCtx, number)
		if err != nil {
			return err
		}
		if dp.IsRemoved() {
			return domain.NewStateError(number, "report", "drop point is removed")
		}
		if err := checkEventTime(at, now, dp.CreatedAt); err != nil {
			return err
		}

		appended, err = s.events.AppendReport(txCtx, domain.Report{
			ID:     uuid.New(),
			Number: number,
			Time:   at,
			State:  state,
		})
		if err != nil {
			return fmt.Errorf("append report: %w", err)
		}

		next, changed, err := s.recomputeState(txCtx, dp)
		if err != nil {
			return fmt.Errorf("recompute state: %w", err)
		}
		if changed {
			transition = &stateTransition{
				from:     dp.LastState,
				to:       next,
				category: s.categorySlug(dp.CategoryID),
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitTransition(ctx, number, transition)

	return &appended, nil
}
