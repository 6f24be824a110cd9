package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is one record in a drop point's append-only history. Exactly three
// kinds exist: location changes, reports and visits. Events are immutable
// once appended; history is never rewritten.
type Event interface {
	EventKind() EventKind
	EventTime() time.Time
	DropPointNumber() int
}

// Location pins a drop point to a place from a point in time onward.
// The latest location is the current one; older rows are history.
type Location struct {
	ID          uuid.UUID
	Number      int
	Time        time.Time
	Description string
	Lat         *float64
	Lng         *float64
	Level       *int
}

func (l *Location) EventKind() EventKind { return EventKindLocation }
func (l *Location) EventTime() time.Time { return l.Time }
func (l *Location) DropPointNumber() int { return l.Number }

// Report is a visitor's observation of a drop point's fill state.
type Report struct {
	ID     uuid.UUID
	Number int
	Time   time.Time
	State  State
}

func (r *Report) EventKind() EventKind { return EventKindReport }
func (r *Report) EventTime() time.Time { return r.Time }
func (r *Report) DropPointNumber() int { return r.Number }

// Weight returns the severity weight of the reported state.
func (r *Report) Weight() float64 { return r.State.Weight() }

// Visit is a maintenance stop at a drop point and the action taken there.
type Visit struct {
	ID     uuid.UUID
	Number int
	Time   time.Time
	Action VisitAction
}

func (v *Visit) EventKind() EventKind { return EventKindVisit }
func (v *Visit) EventTime() time.Time { return v.Time }
func (v *Visit) DropPointNumber() int { return v.Number }
