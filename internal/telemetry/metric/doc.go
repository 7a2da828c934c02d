// Package metric provides Prometheus metrics for respkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry, connection and request metrics, HTTP handler
//   - collector.go: gauges sampled at scrape time (stored keys, queued jobs)
//
// A nil *Registry is valid and records nothing, so components can take one
// unconditionally.
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
