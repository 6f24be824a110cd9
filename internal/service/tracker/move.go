package tracker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// ---------------------------------------------------------------------------
// Move
// ---------------------------------------------------------------------------

// Move appends a location change at the given time (zero = now). The latest
// location becomes the current one; earlier locations remain as history.
func (s *Service) Move(ctx context.Context, input MoveInput) (*domain.Location, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	at := input.Time
	if at.IsZero() {
		at = now
	}

	var moved domain.Location
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		dp, err := s.points.GetForUpdate(txCtx, input.Number)
		if err != nil {
			return err
		}
		if dp.IsRemoved() {
			return domain.NewStateError(input.Number, "move", "drop point is removed")
		}
		if err := checkEventTime(at, now, dp.CreatedAt); err != nil {
			return err
		}

		moved, err = s.events.AppendLocation(txCtx, domain.Location{
			ID:          uuid.New(),
			Number:      input.Number,
			Time:        at,
			Description: input.Description,
			Lat:         input.Lat,
			Lng:         input.Lng,
			Level:       input.Level,
		})
		if err != nil {
			return fmt.Errorf("append location: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &moved, nil
}
