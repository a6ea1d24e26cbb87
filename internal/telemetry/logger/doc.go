// Package logger provides structured logging for System Validator.
//
// This package wraps log/slog:
//
//   - logger.go: handler construction, level control, global default
//   - context.go: logger and request ID propagation through context
//   - redact.go: masking of connection-string passwords and secrets
//
// Every handler built here runs attributes through the redactor, so
// DSNs can be logged without leaking credentials.
package logger
