package tracker

import (
	"time"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// DropPointDetail pairs a drop point with its current location. Location is
// nil only for a drop point whose location history is empty, which the
// create path does not produce.
type DropPointDetail struct {
	DropPoint domain.DropPoint
	Location  *domain.Location
}

// HistoryKind tags one row of the merged timeline. Besides the three event
// streams the timeline carries markers for the lifecycle boundaries.
type HistoryKind string

const (
	HistoryCreated  HistoryKind = "CREATED"
	HistoryLocation HistoryKind = "LOCATION"
	HistoryReport   HistoryKind = "REPORT"
	HistoryVisit    HistoryKind = "VISIT"
	HistoryRemoved  HistoryKind = "REMOVED"
)

// HistoryEntry is one row of a drop point's merged timeline. Exactly one of
// the event pointers is set for LOCATION, REPORT and VISIT rows; the
// lifecycle markers carry only the timestamp.
type HistoryEntry struct {
	Time     time.Time
	Kind     HistoryKind
	Location *domain.Location
	Report   *domain.Report
	Visit    *domain.Visit
}
