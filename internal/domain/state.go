package domain

// DeriveState computes the current state of a drop point from its two
// governing records, the latest report and the latest visit. Either may be
// nil.
//
// Reports win while they are newest: a report sets the state to whatever
// was reported, irrespective of the state before. Once a visit happens at
// or after the last report, the visit governs: emptying resets the state
// to EMPTY, any other action leaves the last reported state standing.
// With no reports and no emptying visit the drop point counts as NEW.
func DeriveState(lastReport *Report, lastVisit *Visit) State {
	if lastVisit == nil {
		if lastReport == nil {
			return StateNew
		}
		return lastReport.State
	}

	if lastReport != nil && lastReport.Time.After(lastVisit.Time) {
		return lastReport.State
	}

	// The visit is at least as new as any report.
	if lastVisit.Action == VisitActionEmptied {
		return StateEmpty
	}
	if lastReport != nil {
		return lastReport.State
	}
	return StateNew
}
