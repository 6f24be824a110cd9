package domain

import "time"

// DropPoint is a bottle collection station at the venue: a numbered sign at
// a wall plus a stack of crates for visitors to drop empties into.
//
// The sign number identifies the drop point for its whole life. Numbers are
// never reassigned: a removed drop point keeps its number and only gains a
// removal timestamp. Its location can change over time and therefore lives
// in the location event stream, not on the drop point itself.
type DropPoint struct {
	Number     int
	CategoryID int
	CreatedAt  time.Time
	RemovedAt  *time.Time

	// LastState caches the state derived from the report/visit history.
	// It is recomputed inside the same unit of work as every appended
	// report or visit.
	LastState State
}

// IsRemoved returns true if the drop point has been logically removed from
// the venue.
func (dp *DropPoint) IsRemoved() bool {
	return dp.RemovedAt != nil
}

// DropPointFilter narrows fleet listings. The zero value lists every drop
// point that is still in service.
type DropPointFilter struct {
	CategoryID     *int
	IncludeRemoved bool
}

// StateCount is one (category, state) bucket of the fleet census. Removed
// drop points are not counted.
type StateCount struct {
	CategoryID int
	State      State
	Count      int
}
