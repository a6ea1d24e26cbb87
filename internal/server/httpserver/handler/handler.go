// Package handler provides HTTP request handlers for the System
// Validator status panel.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
	"github.com/0823nobuo-png/System-Validator/internal/telemetry/logger"
)

// Reloader is the snapshot source the panel reports on.
// *confloader.Reloader implements it.
type Reloader interface {
	BaseDir() string
	Snapshot() confloader.Snapshot
	Reload(ctx context.Context) confloader.Snapshot
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	reloader Reloader
	metrics  http.Handler
	logger   *slog.Logger
	started  time.Time
	mux      *http.ServeMux
}

// New creates a new Handler. metrics may be nil, in which case
// /metrics is not served.
func New(reloader Reloader, metrics http.Handler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		reloader: reloader,
		metrics:  metrics,
		logger:   logger,
		started:  time.Now(),
		mux:      http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /status", h.handleStatus)
	h.mux.HandleFunc("POST /reload", h.handleReload)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics)
	}
}

// writeJSON writes a JSON response with standard envelope format.
// The body is encoded before the header goes out, so an encoding
// failure still turns into a 500 envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	body, err := encodeEnvelope(NewResponse(requestID, data))
	if err != nil {
		h.logger.Error("failed to encode response", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, CodeInternal, "failed to encode response", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	w.Write(body)
}

// writeError writes an error response with standard envelope format.
// Details that cannot be encoded are dropped.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	body, err := encodeEnvelope(NewErrorResponse(requestID, code, message, details))
	if err != nil {
		h.logger.Error("failed to encode error details", "error", err)
		body, _ = encodeEnvelope(NewErrorResponse(requestID, code, message, nil))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	w.Write(body)
}

func encodeEnvelope(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// getRequestID returns the ID set by the RequestID middleware, falling
// back to the inbound header.
func getRequestID(r *http.Request) string {
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Request-ID")
}
