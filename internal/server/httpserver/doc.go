// Package httpserver provides the HTTP server for the System Validator
// status panel.
//
// The panel is a small read-only JSON API over the latest configuration
// load:
//
//   - GET /health, GET /ready
//   - GET /status, POST /reload
//   - GET /metrics (Prometheus exposition)
//
// Every request passes through the middleware chain: request ID, a
// tracing span, panic recovery, metrics, access log and a per-IP rate
// limit. Configuration
// values are sanitized before they leave the process.
package httpserver
