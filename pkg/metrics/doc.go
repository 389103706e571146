// Package metrics provides Prometheus instrumentation for repermit components.
//
// The package instruments rate limiting operations (permits requested,
// granted, denied and recycled, wait times, banked credit) and scheduled
// rate plan activity.
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	limiter := recycling.NewWithMetrics(10, 5, "api_requests")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//	limiter := recycling.NewWithConfigAndMetrics(recycling.Config{
//		Rate:        10,
//		BurstWindow: 5,
//	}, "api_requests", config)
package metrics
