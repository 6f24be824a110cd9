// Package priority computes the visit urgency score of a drop point from
// the weight of reports since its last visit and the time elapsed since it
// was last attended.
package priority

import (
	"math"
	"time"
)

// DefaultVisitPriority is the standing base score of every active drop
// point. Report weights are scaled relative to 1, so the base can be read
// as a number of permanent default reports: a drop point slowly gains
// priority even when nobody reports it.
const DefaultVisitPriority = 1.0

// DefaultVisitInterval is the expected re-visit cadence.
const DefaultVisitInterval = 120 * time.Minute

// Params configure the scoring.
type Params struct {
	// VisitPriority is the base score before report weights are added.
	VisitPriority float64

	// VisitInterval is the expected time between two visits. The factor
	// is normalized by it, so a drop point with no reports reaches a
	// priority of VisitPriority exactly one interval after its base time.
	VisitInterval time.Duration

	// Enabled switches scoring on. When false the factor is pinned to
	// zero and every priority collapses to 0.00, for deployments that
	// schedule visits manually.
	Enabled bool
}

// DefaultParams returns the standard scoring parameters.
func DefaultParams() Params {
	return Params{
		VisitPriority: DefaultVisitPriority,
		VisitInterval: DefaultVisitInterval,
		Enabled:       true,
	}
}

// Factor computes the priority growth rate of a drop point in score units
// per second.
//
//	factor = (base + Σ weight[i] / 2^i) / intervalSeconds
//
// weights are the report weights since the last visit, newest first, so
// every older report counts half as much as the one before it and only the
// most recent handful matter materially. Removed drop points never accrue
// priority; their factor is 0.
func Factor(p Params, weights []float64, removed bool) float64 {
	if removed || !p.Enabled {
		return 0
	}

	factor := p.VisitPriority
	for i, w := range weights {
		factor += w / math.Pow(2, float64(i))
	}

	secs := p.VisitInterval.Seconds()
	if secs <= 0 {
		secs = DefaultVisitInterval.Seconds()
	}
	return factor / secs
}

// Score computes the priority of a drop point at the given instant.
//
//	priority = round(factor * secondsSince(baseTime), 2)
//
// Priority keeps growing with time since the base time even when reports
// indicate a low urgency, so every drop point gets visited eventually.
func Score(factor float64, baseTime, now time.Time) float64 {
	return round2(factor * now.Sub(baseTime).Seconds())
}

// BaseTime returns the instant priority accrues from: the last visit, or
// the creation time of a drop point that has never been visited.
func BaseTime(createdAt time.Time, lastVisit *time.Time) time.Time {
	if lastVisit != nil {
		return *lastVisit
	}
	return createdAt
}

// round2 rounds to the two decimal places scores are exposed at.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
