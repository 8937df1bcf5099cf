package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the engine's per-turn work. All collectors are
// registered against the given registerer at construction.
type Metrics struct {
	turnDuration  prometheus.Histogram
	decisions     *prometheus.CounterVec
	expandedRules prometheus.Counter
	derivedRules  prometheus.Counter
	skippedSteps  prometheus.Counter
}

// NewMetrics creates and registers the engine collectors. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "espalier",
			Name:      "turn_duration_seconds",
			Help:      "Wall time spent deciding one turn.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "lifecycle_decisions_total",
			Help:      "Lifecycle decisions emitted, by action.",
		}, []string{"action"}),
		expandedRules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "expanded_rules_total",
			Help:      "Rules in expanded sets, originals and derived.",
		}),
		derivedRules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "derived_rules_total",
			Help:      "Rules added by relationship expansion.",
		}),
		skippedSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "skipped_steps_total",
			Help:      "Steps skipped because their data was already known.",
		}),
	}
	reg.MustRegister(m.turnDuration, m.decisions, m.expandedRules, m.derivedRules, m.skippedSteps)
	return m
}

// ObserveTurn records one turn's duration.
func (m *Metrics) ObserveTurn(d time.Duration) {
	m.turnDuration.Observe(d.Seconds())
}

// ObserveDecision counts one lifecycle decision.
func (m *Metrics) ObserveDecision(action string) {
	m.decisions.WithLabelValues(action).Inc()
}

// ObserveExpansion counts the expanded set and its derived portion.
func (m *Metrics) ObserveExpansion(total, derived int) {
	m.expandedRules.Add(float64(total))
	m.derivedRules.Add(float64(derived))
}

// ObserveSkippedSteps counts steps jumped over by the resolver.
func (m *Metrics) ObserveSkippedSteps(n int) {
	m.skippedSteps.Add(float64(n))
}
