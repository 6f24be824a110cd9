package domain

// State represents the believed fill condition of a drop point.
// States form a fixed severity ordering; the position of a state in
// AllStates is also the report weight consumed by the priority engine.
type State string

const (
	StateNew            State = "NEW"
	StateEmpty          State = "EMPTY"
	StateSomeBottles    State = "SOME_BOTTLES"
	StateReasonablyFull State = "REASONABLY_FULL"
	StateFull           State = "FULL"
	StateOverflow       State = "OVERFLOW"
	StateNoCrates       State = "NO_CRATES"
)

// AllStates lists every state in ascending severity order.
var AllStates = []State{
	StateNew,
	StateEmpty,
	StateSomeBottles,
	StateReasonablyFull,
	StateFull,
	StateOverflow,
	StateNoCrates,
}

func (s State) String() string { return string(s) }

func (s State) IsValid() bool {
	switch s {
	case StateNew, StateEmpty, StateSomeBottles, StateReasonablyFull,
		StateFull, StateOverflow, StateNoCrates:
		return true
	}
	return false
}

// Severity returns the position of the state in the severity ordering,
// or -1 for unknown states.
func (s State) Severity() int {
	for i, st := range AllStates {
		if st == s {
			return i
		}
	}
	return -1
}

// Weight returns the numeric severity of a reported state, used by the
// priority engine. Unknown states weigh nothing.
func (s State) Weight() float64 {
	if i := s.Severity(); i > 0 {
		return float64(i)
	}
	return 0
}

// VisitAction represents the maintenance action taken during a visit.
// Only EMPTIED changes the derived state; every other action leaves the
// last reported state standing.
type VisitAction string

const (
	VisitActionEmptied       VisitAction = "EMPTIED"
	VisitActionAddedCrates   VisitAction = "ADDED_CRATES"
	VisitActionRemovedCrates VisitAction = "REMOVED_CRATES"
	VisitActionNoAction      VisitAction = "NO_ACTION"
)

func (a VisitAction) String() string { return string(a) }

func (a VisitAction) IsValid() bool {
	switch a {
	case VisitActionEmptied, VisitActionAddedCrates, VisitActionRemovedCrates, VisitActionNoAction:
		return true
	}
	return false
}

// EventKind identifies one of the three append-only event streams kept per
// drop point.
type EventKind string

const (
	EventKindLocation EventKind = "LOCATION"
	EventKindReport   EventKind = "REPORT"
	EventKindVisit    EventKind = "VISIT"
)

func (k EventKind) String() string { return string(k) }

func (k EventKind) IsValid() bool {
	switch k {
	case EventKindLocation, EventKindReport, EventKindVisit:
		return true
	}
	return false
}
