package host

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/rest0-go/internal/telemetry/metric"
)

// HostContext is built once per Run and shared read-only by every request.
type HostContext struct {
	Host    *Host
	Handler Handler
	Logger  *slog.Logger
	Metrics *metric.Registry
}

// Principal identifies the authenticated caller.
type Principal struct {
	Name   string
	Scheme string
}

// RequestContext describes one accepted request.
type RequestContext struct {
	*HostContext

	Request *http.Request
	// User is nil for anonymous requests.
	User *Principal
	// ID is a ULID unique to this request.
	ID string
	// Prefix is the registered prefix the request matched.
	Prefix   string
	Received time.Time
}

// ResponseContext is what a ResponseAction writes to.
type ResponseContext struct {
	*RequestContext

	Response ResponseSink
}

func principalFrom(r *http.Request) *Principal {
	if name, _, ok := r.BasicAuth(); ok && name != "" {
		return &Principal{Name: name, Scheme: "Basic"}
	}
	return nil
}
