package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

// Create registers a new drop point and appends its first location in one
// unit of work. Validation failures are collected into a single batch;
// nothing is persisted unless every check passes.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.DropPoint, error) {
	now := s.now()
	at := input.Time
	if at.IsZero() {
		at = now
	}

	errs := input.fieldErrors()

	if at.After(now) {
		errs = append(errs, domain.FieldError{Field: "time", Message: "in the future"})
	}

	categoryID := input.CategoryID
	if categoryID == 0 {
		categoryID = s.categories().Default().ID
	} else if !s.categories().Has(categoryID) {
		errs = append(errs, domain.FieldError{Field: "category", Message: "unknown category"})
	}

	if input.Number > 0 {
		_, err := s.points.Get(ctx, input.Number)
		switch {
		case err == nil:
			errs = append(errs, domain.FieldError{Field: "number", Message: "already in use"})
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("check number %d: %w", input.Number, err)
		}
	}

	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	var created domain.DropPoint
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.points.Create(txCtx, domain.DropPoint{
			Number:     input.Number,
			CategoryID: categoryID,
			CreatedAt:  at,
			LastState:  domain.StateNew,
		})
		if err != nil {
			return fmt.Errorf("create drop point: %w", err)
		}

		if _, err := s.events.AppendLocation(txCtx, domain.Location{
			ID:          uuid.New(),
			Number:      input.Number,
			Time:        at,
			Description: input.Description,
			Lat:         input.Lat,
			Lng:         input.Lng,
			Level:       input.Level,
		}); err != nil {
			return fmt.Errorf("append first location: %w", err)
		}

		return nil
	})
	if txErr != nil {
		// A concurrent creator can win the number between check and insert.
		if errors.Is(txErr, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("number", "already in use")
		}
		return nil, txErr
	}

	s.sink.Increment(domain.StateNew, s.categorySlug(categoryID))
	s.log.InfoContext(ctx, "drop point created",
		slog.Int("number", created.Number),
		slog.Int("category", categoryID),
	)

	return &created, nil
}
