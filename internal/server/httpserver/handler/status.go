// Package handler provides HTTP request handlers for the status panel.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
	"github.com/0823nobuo-png/System-Validator/internal/infra/pgprobe"
)

// handleStatus handles GET /status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.status(h.reloader.Snapshot()))
}

// handleReload handles POST /reload. The reload runs to completion even
// if the client goes away.
func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	snap := h.reloader.Reload(context.WithoutCancel(r.Context()))
	status := h.status(snap)

	if snap.Err != nil {
		h.logger.Warn("reload requested over HTTP failed",
			"base_dir", snap.BaseDir,
			"generation", snap.Generation,
			"error", snap.Err,
		)
		h.writeError(w, r, errorCodeToHTTPStatus(status.Error.Code), status.Error.Code, status.Error.Message, status)
		return
	}

	h.logger.Info("configuration reloaded over HTTP",
		"base_dir", snap.BaseDir,
		"generation", snap.Generation,
	)
	h.writeJSON(w, r, http.StatusOK, status)
}

// status builds the panel view of a snapshot. Secrets are masked.
func (h *Handler) status(snap confloader.Snapshot) StatusResponse {
	resp := StatusResponse{
		BaseDir:    h.reloader.BaseDir(),
		Generation: snap.Generation,
		OK:         snap.OK(),
		Error:      describeError(snap.Err),
		Keys:       len(snap.Config),
		Config:     confloader.Sanitize(snap.Config),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
	}
	if !snap.LoadedAt.IsZero() {
		loadedAt := snap.LoadedAt.UTC()
		resp.LoadedAt = &loadedAt
	}

	if dsn, ok := snap.Config.GetString(confloader.DSNKey); ok {
		if target, err := pgprobe.Describe(dsn); err == nil {
			resp.Target = &target
		} else {
			h.logger.Debug("dsn not describable", "error", err)
		}
	}
	return resp
}
