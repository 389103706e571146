package rateplan

import (
	"github.com/vnykmshr/repermit/pkg/metrics"
)

// NewWithMetrics creates a plan that records applied and failed rate
// changes in the given metrics registry.
func NewWithMetrics(config Config, metricsConfig metrics.Config) (*Plan, error) {
	plan, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}

	if !metricsConfig.Enabled {
		return plan, nil
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}
	plan.registry = registry
	return plan, nil
}
