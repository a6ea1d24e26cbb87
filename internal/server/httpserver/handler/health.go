// Package handler provides HTTP request handlers for the status panel.
package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := h.reloader.Snapshot()

	if snap.OK() {
		h.writeJSON(w, r, http.StatusOK, HealthResponse{
			Status: "ready",
			Time:   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	if snap.Err == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, CodeNotLoaded, "configuration not loaded", nil)
		return
	}

	le := describeError(snap.Err)
	h.writeError(w, r, http.StatusServiceUnavailable, le.Code, le.Message, le)
}
