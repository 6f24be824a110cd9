package tracker

import (
	"time"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// MaxDescriptionLen bounds the free-text location description.
const MaxDescriptionLen = 140

// CreateInput holds the parameters for creating a drop point. A zero Time
// means now; a zero CategoryID means the default category of the table.
type CreateInput struct {
	Number      int
	CategoryID  int
	Description string
	Lat         *float64
	Lng         *float64
	Level       *int
	Time        time.Time
}

// fieldErrors collects every field-level failure checkable without storage.
// The contextual checks (number in use, category unknown) are appended by
// Create so the caller always sees the full batch at once.
func (i *CreateInput) fieldErrors() []domain.FieldError {
	var errs []domain.FieldError

	if i.Number <= 0 {
		errs = append(errs, domain.FieldError{Field: "number", Message: "must be positive"})
	}
	errs = append(errs, locationFieldErrors(i.Description, i.Lat, i.Lng)...)

	return errs
}

// MoveInput holds the parameters for relocating a drop point. A zero Time
// means now.
type MoveInput struct {
	Number      int
	Description string
	Lat         *float64
	Lng         *float64
	Level       *int
	Time        time.Time
}

// Validate checks all fields and collects all errors.
func (i *MoveInput) Validate() error {
	errs := locationFieldErrors(i.Description, i.Lat, i.Lng)
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// locationFieldErrors validates the shared location fields of CreateInput
// and MoveInput.
func locationFieldErrors(description string, lat, lng *float64) []domain.FieldError {
	var errs []domain.FieldError

	if len(description) > MaxDescriptionLen {
		errs = append(errs, domain.FieldError{Field: "description", Message: "too long (max 140)"})
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		errs = append(errs, domain.FieldError{Field: "lat", Message: "out of range [-90, 90]"})
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		errs = append(errs, domain.FieldError{Field: "lng", Message: "out of range [-180, 180]"})
	}

	return errs
}
