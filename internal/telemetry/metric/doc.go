// Package metric provides Prometheus metrics for the rest0 host.
//
//   - prometheus.go: registry, request/connection/refresh instruments, HTTP handler
//   - collector.go: scrape-time collector describing the current config snapshot
//
// Every Registry method is safe to call on a nil *Registry, so components
// can run without metrics wired in.
package metric
