package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics captures allocation engine health signals.
type EngineMetrics struct {
	cascadeRuns     *prometheus.CounterVec
	cascadeDuration prometheus.Observer
	staleDiscards   prometheus.Counter
	overAllocations *prometheus.CounterVec
	amountCache     *prometheus.CounterVec
}

// NewEngineMetrics registers allocation engine instruments on the default registry.
func NewEngineMetrics() *EngineMetrics {
	cascadeRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_royalty_cascade_runs_total",
		Help: "Recalculation cascade runs by trigger.",
	}, []string{"trigger"})
	cascadeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "folio_royalty_cascade_duration_seconds",
		Help:    "Latency of a full recalculation cascade.",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
	})
	staleDiscards := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "folio_royalty_stale_pass_discards_total",
		Help: "Recalculation passes discarded by the generation guard.",
	})
	overAllocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_royalty_over_allocations_total",
		Help: "Validation passes that flagged at least one platform above 100%.",
	}, []string{"flagged"})
	amountCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_royalty_amount_cache_total",
		Help: "Amount calculator cache lookups by outcome.",
	}, []string{"outcome"})

	prometheus.MustRegister(cascadeRuns, cascadeDuration, staleDiscards, overAllocations, amountCache)

	return &EngineMetrics{
		cascadeRuns:     cascadeRuns,
		cascadeDuration: cascadeDuration,
		staleDiscards:   staleDiscards,
		overAllocations: overAllocations,
		amountCache:     amountCache,
	}
}

// ObserveCascade records one cascade run.
func (m *EngineMetrics) ObserveCascade(trigger string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.cascadeRuns.WithLabelValues(trigger).Inc()
	m.cascadeDuration.Observe(elapsed.Seconds())
}

// RecordStaleDiscard counts a pass aborted by the generation guard.
func (m *EngineMetrics) RecordStaleDiscard() {
	if m == nil {
		return
	}
	m.staleDiscards.Inc()
}

// RecordValidation records whether a validation pass flagged any platform.
func (m *EngineMetrics) RecordValidation(flagged bool) {
	if m == nil {
		return
	}
	m.overAllocations.WithLabelValues(strconv.FormatBool(flagged)).Inc()
}

// RecordAmountCache counts an amount cache lookup.
func (m *EngineMetrics) RecordAmountCache(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.amountCache.WithLabelValues(outcome).Inc()
}
