package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/rest0-go/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the operational router.
type RouterConfig struct {
	// Handler wires the endpoints to the running host.
	Handler handler.Config

	// Logger for request logging.
	Logger *slog.Logger

	// GlobalRateLimit is the rate limit per client IP (requests/second).
	// Zero disables limiting.
	GlobalRateLimit int

	// AuthTokenHash, when set, requires a bearer token hashing to it on
	// every path except /health and /ready.
	AuthTokenHash string
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:          slog.Default(),
		GlobalRateLimit: 100,
	}
}

// NewRouter builds the operational handler with its middleware chain.
// Order: Recover -> RequestID -> AccessLog -> RateLimit -> BearerAuth -> Handler
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	hcfg := cfg.Handler
	if hcfg.Logger == nil {
		hcfg.Logger = log
	}

	middlewares := []Middleware{
		Recover(log),
		RequestID(),
		AccessLog(log),
	}
	if cfg.GlobalRateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.GlobalRateLimit))
	}
	if cfg.AuthTokenHash != "" {
		middlewares = append(middlewares, BearerAuth(cfg.AuthTokenHash, "/health", "/ready"))
	}

	return Chain(handler.New(hcfg), middlewares...)
}
