// Package handler provides HTTP request handlers for the status panel.
package handler

import (
	"time"

	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
	"github.com/0823nobuo-png/System-Validator/internal/infra/pgprobe"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"` // Additional error details
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// HealthResponse is the response body for GET /health and GET /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// LoadError describes a failed load.
type LoadError struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Path    string `json:"path,omitempty"`
}

// StatusResponse is the response body for GET /status and POST /reload.
type StatusResponse struct {
	BaseDir    string             `json:"base_dir"`
	Generation uint64             `json:"generation"`
	LoadedAt   *time.Time         `json:"loaded_at,omitempty"`
	OK         bool               `json:"ok"`
	Error      *LoadError         `json:"error,omitempty"`
	Keys       int                `json:"keys"`
	Config     confloader.Mapping `json:"config,omitempty"`
	Target     *pgprobe.Target    `json:"target,omitempty"`
	Uptime     string             `json:"uptime"`
}
