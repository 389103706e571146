package recycling

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/repermit/pkg/metrics"
)

// MetricsLimiter wraps a Limiter with Prometheus metrics collection.
type MetricsLimiter struct {
	limiter  Limiter
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a new recyclable rate limiter with metrics enabled.
func NewWithMetrics(ratePerSecond, burstWindowSeconds float64, name string) (Limiter, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{
		Rate:        ratePerSecond,
		BurstWindow: burstWindowSeconds,
	}, name, config)
}

// NewWithConfigAndMetrics creates a new recyclable rate limiter with custom config and metrics.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Limiter, error) {
	baseLimiter, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}

	if !metricsConfig.Enabled {
		return baseLimiter, nil
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	ml := &MetricsLimiter{
		limiter:  baseLimiter,
		name:     name,
		registry: registry,
		enabled:  true,
	}
	ml.registry.RateLimitRate.WithLabelValues(ml.name).Set(baseLimiter.Rate())
	return ml, nil
}

// Acquire blocks until one permit is available.
func (ml *MetricsLimiter) Acquire() time.Duration {
	return ml.AcquireN(1)
}

// AcquireN blocks until n permits are available.
func (ml *MetricsLimiter) AcquireN(n int) time.Duration {
	if ml.enabled {
		ml.registry.RateLimitRequests.WithLabelValues(ml.name).Add(float64(n))
	}

	waited := ml.limiter.AcquireN(n)

	if ml.enabled {
		ml.registry.RateLimitWaitTime.WithLabelValues(ml.name).Observe(waited.Seconds())
		ml.registry.RateLimitAllowed.WithLabelValues(ml.name).Add(float64(n))
		ml.registry.RateLimitStoredPermits.WithLabelValues(ml.name).Set(ml.limiter.Available())
	}

	return waited
}

// Wait blocks until one permit is available or ctx is canceled.
func (ml *MetricsLimiter) Wait(ctx context.Context) error {
	return ml.WaitN(ctx, 1)
}

// WaitN blocks until n permits are available or ctx is canceled.
func (ml *MetricsLimiter) WaitN(ctx context.Context, n int) error {
	start := time.Now()

	if ml.enabled {
		ml.registry.RateLimitRequests.WithLabelValues(ml.name).Add(float64(n))
	}

	err := ml.limiter.WaitN(ctx, n)

	if ml.enabled {
		ml.registry.RateLimitWaitTime.WithLabelValues(ml.name).Observe(time.Since(start).Seconds())

		if err == nil {
			ml.registry.RateLimitAllowed.WithLabelValues(ml.name).Add(float64(n))
		} else {
			ml.registry.RateLimitDenied.WithLabelValues(ml.name).Add(float64(n))
		}

		ml.registry.RateLimitStoredPermits.WithLabelValues(ml.name).Set(ml.limiter.Available())
	}

	return err
}

// TryAcquire acquires one permit only if it is available immediately.
func (ml *MetricsLimiter) TryAcquire() bool {
	return ml.TryAcquireN(1, 0)
}

// TryAcquireN acquires n permits only if the reservation would complete
// within the timeout.
func (ml *MetricsLimiter) TryAcquireN(n int, timeout time.Duration) bool {
	if ml.enabled {
		ml.registry.RateLimitRequests.WithLabelValues(ml.name).Add(float64(n))
	}

	acquired := ml.limiter.TryAcquireN(n, timeout)

	if ml.enabled {
		if acquired {
			ml.registry.RateLimitAllowed.WithLabelValues(ml.name).Add(float64(n))
		} else {
			ml.registry.RateLimitDenied.WithLabelValues(ml.name).Add(float64(n))
		}

		ml.registry.RateLimitStoredPermits.WithLabelValues(ml.name).Set(ml.limiter.Available())
	}

	return acquired
}

// Recycle returns n permits previously acquired but not used.
func (ml *MetricsLimiter) Recycle(n int) {
	ml.limiter.Recycle(n)

	if ml.enabled {
		ml.registry.RateLimitRecycled.WithLabelValues(ml.name).Add(float64(n))
		ml.registry.RateLimitStoredPermits.WithLabelValues(ml.name).Set(ml.limiter.Available())
	}
}

// Available returns the number of permits currently banked as credit.
func (ml *MetricsLimiter) Available() float64 {
	available := ml.limiter.Available()

	if ml.enabled {
		ml.registry.RateLimitStoredPermits.WithLabelValues(ml.name).Set(available)
	}

	return available
}

// ImmediatelyAvailable reports whether n permits would be granted now.
func (ml *MetricsLimiter) ImmediatelyAvailable(n int) bool {
	return ml.limiter.ImmediatelyAvailable(n)
}

// SetRate changes the rate limit.
func (ml *MetricsLimiter) SetRate(ratePerSecond float64) error {
	err := ml.limiter.SetRate(ratePerSecond)

	if ml.enabled && err == nil {
		ml.registry.RateLimitRate.WithLabelValues(ml.name).Set(ratePerSecond)
	}

	return err
}

// Rate returns the current rate limit.
func (ml *MetricsLimiter) Rate() float64 {
	return ml.limiter.Rate()
}

// BurstWindow returns the accumulation window in seconds.
func (ml *MetricsLimiter) BurstWindow() float64 {
	return ml.limiter.BurstWindow()
}

// EnableMetrics enables metrics collection.
func (ml *MetricsLimiter) EnableMetrics(config metrics.Config) error {
	ml.enabled = config.Enabled

	if config.Registry != nil {
		ml.registry = metrics.NewRegistry(config.Registry)
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (ml *MetricsLimiter) DisableMetrics() {
	ml.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (ml *MetricsLimiter) MetricsEnabled() bool {
	return ml.enabled
}
