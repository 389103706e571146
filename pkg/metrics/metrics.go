// Package metrics provides Prometheus instrumentation for repermit components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for repermit components.
type Registry struct {
	// Rate Limiting Metrics
	RateLimitRequests      *prometheus.CounterVec
	RateLimitAllowed       *prometheus.CounterVec
	RateLimitDenied        *prometheus.CounterVec
	RateLimitRecycled      *prometheus.CounterVec
	RateLimitWaitTime      *prometheus.HistogramVec
	RateLimitStoredPermits *prometheus.GaugeVec
	RateLimitRate          *prometheus.GaugeVec

	// Rate Plan Metrics
	RatePlanApplied *prometheus.CounterVec
	RatePlanFailed  *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by repermit components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Rate Limiting Metrics
		RateLimitRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repermit",
				Subsystem: "ratelimit",
				Name:      "permits_requested_total",
				Help:      "Total number of permits requested",
			},
			[]string{"limiter_name"},
		),

		RateLimitAllowed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repermit",
				Subsystem: "ratelimit",
				Name:      "permits_allowed_total",
				Help:      "Total number of permits granted",
			},
			[]string{"limiter_name"},
		),

		RateLimitDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repermit",
				Subsystem: "ratelimit",
				Name:      "permits_denied_total",
				Help:      "Total number of permits denied or abandoned",
			},
			[]string{"limiter_name"},
		),

		RateLimitRecycled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repermit",
				Subsystem: "ratelimit",
				Name:      "permits_recycled_total",
				Help:      "Total number of permits returned unused",
			},
			[]string{"limiter_name"},
		),

		RateLimitWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "repermit",
				Subsystem: "ratelimit",
				Name:      "wait_duration_seconds",
				Help:      "Time spent waiting for permits",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"limiter_name"},
		),

		RateLimitStoredPermits: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "repermit",
				Subsystem: "ratelimit",
				Name:      "stored_permits",
				Help:      "Number of permits currently banked as credit",
			},
			[]string{"limiter_name"},
		),

		RateLimitRate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "repermit",
				Subsystem: "ratelimit",
				Name:      "rate_permits_per_second",
				Help:      "Currently configured rate limit",
			},
			[]string{"limiter_name"},
		),

		// Rate Plan Metrics
		RatePlanApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repermit",
				Subsystem: "rateplan",
				Name:      "applied_total",
				Help:      "Total number of scheduled rate changes applied",
			},
			[]string{"plan_name"},
		),

		RatePlanFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repermit",
				Subsystem: "rateplan",
				Name:      "failed_total",
				Help:      "Total number of scheduled rate changes that failed to apply",
			},
			[]string{"plan_name"},
		),
	}
}
