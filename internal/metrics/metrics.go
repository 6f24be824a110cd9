// Package metrics keeps the live gauge of drop point counts by state and
// category. The tracker feeds it paired transitions; the registry can render
// itself in the Prometheus text exposition format for scraping or export.
package metrics

import (
	"io"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// GaugeName is the metric family exposed by WriteText.
const GaugeName = "drop_point_count"

const gaugeHelp = "Number of drop points by state and category."

// Key identifies one gauge series.
type Key struct {
	State    domain.State
	Category string
}

// Registry is an in-memory gauge keyed by {state, category}. It satisfies
// the tracker's sink and is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	counts map[Key]float64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{counts: make(map[Key]float64)}
}

// Increment adds one drop point to the series.
func (r *Registry) Increment(state domain.State, category string) {
	r.add(state, category, 1)
}

// Decrement removes one drop point from the series.
func (r *Registry) Decrement(state domain.State, category string) {
	r.add(state, category, -1)
}

func (r *Registry) add(state domain.State, category string, delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[Key{State: state, Category: category}] += delta
}

// Set pins a series to an absolute value. Used to seed the registry from
// stored drop points, e.g. after a restart.
func (r *Registry) Set(state domain.State, category string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[Key{State: state, Category: category}] = value
}

// Snapshot returns a copy of every series.
func (r *Registry) Snapshot() map[Key]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[Key]float64, len(r.counts))
	for k, v := range r.counts {
		snap[k] = v
	}
	return snap
}

// WriteText renders the gauge family in the Prometheus text exposition
// format, series ordered by category then state for a stable output.
func (r *Registry) WriteText(w io.Writer) error {
	_, err := expfmt.MetricFamilyToText(w, r.family())
	return err
}

func (r *Registry) family() *dto.MetricFamily {
	snap := r.Snapshot()

	keys := make([]Key, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		return keys[i].State < keys[j].State
	})

	fam := &dto.MetricFamily{
		Name: strPtr(GaugeName),
		Help: strPtr(gaugeHelp),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for _, k := range keys {
		fam.Metric = append(fam.Metric, &dto.Metric{
			Label: []*dto.LabelPair{
				{Name: strPtr("category"), Value: strPtr(k.Category)},
				{Name: strPtr("state"), Value: strPtr(k.State.String())},
			},
			Gauge: &dto.Gauge{Value: f64Ptr(snap[k])},
		})
	}
	return fam
}

// Nop is a sink that drops every update. Handy for tools that mutate drop
// points without keeping gauges.
type Nop struct{}

func (Nop) Increment(domain.State, string) {}
func (Nop) Decrement(domain.State, string) {}

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }
