// Package metrics exposes Prometheus instrumentation for the template
// resolution engine: pass outcomes, latency, and per-kind condition
// evaluation counts. ResolutionMetrics implements engine.Observer so the
// engine stays free of any Prometheus dependency.
package metrics
