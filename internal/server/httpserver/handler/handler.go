package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/rest0-go/internal/core/domain"
	"github.com/yndnr/rest0-go/internal/core/snapshot"
	"github.com/yndnr/rest0-go/internal/telemetry/metric"
)

// Config wires the handler to the running process.
type Config struct {
	// Ready reports whether the host is serving. Nil means always ready.
	Ready func() bool

	// Snapshot returns the current configuration snapshot, or nil.
	Snapshot func() *snapshot.Snapshot

	// Metrics backs GET /metrics. Nil disables the endpoint.
	Metrics *metric.Registry

	Logger *slog.Logger
}

// Handler routes the operational endpoints.
type Handler struct {
	ready    func() bool
	snapshot func() *snapshot.Snapshot
	metrics  *metric.Registry
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		ready:    cfg.Ready,
		snapshot: cfg.Snapshot,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		mux:      http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /status/config", h.handleConfigStatus)

	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a DomainError with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err *domain.DomainError) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, err.Code, err.Message, err.Details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", err.Code)
	w.WriteHeader(errorCodeToHTTPStatus(err.Code))
	json.NewEncoder(w).Encode(response)
}

// getRequestID reads the ID set by the RequestID middleware.
func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.Contains(code, "-40"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
