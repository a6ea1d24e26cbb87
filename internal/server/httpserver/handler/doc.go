// Package handler provides HTTP request handlers for the System
// Validator status panel.
//
// Endpoints:
//
//   - GET /health: liveness, always 200
//   - GET /ready: 200 when the last configuration load succeeded, else 503
//   - GET /status: snapshot summary with the sanitized configuration
//   - POST /reload: reload now and return the new status
//   - GET /metrics: Prometheus exposition
//
// JSON responses use the Response envelope.
package handler
