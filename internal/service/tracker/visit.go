package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// ---------------------------------------------------------------------------
// Visit
// ---------------------------------------------------------------------------

// Visit appends a maintenance stop at the given time (zero = now) and
// recomputes the cached state inside the same unit of work. Only an EMPTIED
// action can move the state; the counter pair is emitted after the commit.
func (s *Service) Visit(ctx context.Context, number int, action domain.VisitAction, at time.Time) (*domain.Visit, error) {
	if !action.IsValid() {
		return nil, domain.NewValidationError("action", "unknown action")
	}

	now := s.now()
	if at.IsZero() {
		at = now
	}

	var (
		appended   domain.Visit
		transition *stateTransition
	)
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		dp, err := s.points.GetForUpdate(txCtx, number)
		if err != nil {
			return err
		}
		if dp.IsRemoved() {
			return domain.NewStateError(number, "visit", "drop point is removed")
		}
		if err := checkEventTime(at, now, dp.CreatedAt); err != nil {
			return err
		}

		appended, err = s.events.AppendVisit(txCtx, domain.Visit{
			ID:     uuid.New(),
			Number: number,
			Time:   at,
			Action: action,
		})
		if err != nil {
			return fmt.Errorf("append visit: %w", err)
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
