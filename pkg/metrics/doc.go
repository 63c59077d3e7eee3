// Package metrics exposes Prometheus counters for quota decisions and tier
// fallbacks, plus request latency by route.
package metrics
