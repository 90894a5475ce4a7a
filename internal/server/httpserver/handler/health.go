package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/rest0-go/internal/core/domain"
)

// handleHealth handles GET /health. It succeeds while the process is up.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthStatus{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. It succeeds only while the host is serving.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		h.writeError(w, r, domain.ErrNotServing)
		return
	}
	h.writeJSON(w, r, http.StatusOK, HealthStatus{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleConfigStatus handles GET /status/config.
func (h *Handler) handleConfigStatus(w http.ResponseWriter, r *http.Request) {
	if h.snapshot != nil {
		if s := h.snapshot(); s != nil {
			h.writeJSON(w, r, http.StatusOK, ConfigStatus{
				Hash:       s.Hex(),
				Source:     string(s.Source()),
				ResolvedAt: s.ResolvedAt().UTC(),
			})
			return
		}
	}
	h.writeError(w, r, domain.ErrSourceUnavailable.WithDetails("no configuration snapshot loaded"))
}
