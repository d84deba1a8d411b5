package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stencil-hq/atrium/pkg/template"
)

// Config contains metric naming configuration.
type Config struct {
	// Namespace is the metric namespace. Default: "atrium".
	Namespace string

	// Subsystem is the metric subsystem. Default: "resolver".
	Subsystem string
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{Namespace: "atrium", Subsystem: "resolver"}
}

// ResolutionMetrics tracks template resolution activity.
//
// Metrics:
//   - atrium_resolver_resolutions_total: resolution passes by outcome and category
//   - atrium_resolver_resolution_duration_seconds: pass duration
//   - atrium_resolver_condition_evaluations_total: predicate evaluations by kind and result
type ResolutionMetrics struct {
	resolutionsTotal   *prometheus.CounterVec
	resolutionDuration prometheus.Histogram
	conditionEvals     *prometheus.CounterVec
}

// NewResolutionMetrics creates and registers resolution metrics with the
// provided registry. If registry is nil, the default Prometheus registry is
// used.
func NewResolutionMetrics(cfg *Config, registry *prometheus.Registry) *ResolutionMetrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	m := &ResolutionMetrics{
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolutions_total",
				Help:      "Total number of template resolution passes",
			},
			[]string{"outcome", "category"},
		),
		resolutionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolution_duration_seconds",
				Help:      "Duration of template resolution passes in seconds",
				// Resolution is an in-memory scan; sub-millisecond is the norm.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),
		conditionEvals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "condition_evaluations_total",
				Help:      "Total number of condition predicate evaluations",
			},
			[]string{"kind", "matched"},
		),
	}

	if registry != nil {
		registry.MustRegister(m.resolutionsTotal, m.resolutionDuration, m.conditionEvals)
	} else {
		prometheus.MustRegister(m.resolutionsTotal, m.resolutionDuration, m.conditionEvals)
	}
	return m
}

// ConditionEvaluated implements engine.Observer.
func (m *ResolutionMetrics) ConditionEvaluated(kind template.Kind, matched bool) {
	m.conditionEvals.WithLabelValues(string(kind), strconv.FormatBool(matched)).Inc()
}

// Resolved implements engine.Observer.
func (m *ResolutionMetrics) Resolved(d template.Decision, elapsed time.Duration) {
	outcome := "miss"
	if d.Matched() {
		outcome = "match"
	}
	m.resolutionsTotal.WithLabelValues(outcome, string(d.Category)).Inc()
	m.resolutionDuration.Observe(elapsed.Seconds())
}
