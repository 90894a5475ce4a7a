// Package handler provides the operational HTTP endpoints of rest0-server:
// liveness, readiness, the current configuration snapshot and Prometheus
// metrics. They are served on a side listener, separate from the host's
// prefixes.
package handler
