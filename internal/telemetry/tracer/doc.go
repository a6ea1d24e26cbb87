// Package tracer configures OpenTelemetry tracing for System Validator.
//
// Tracing is off unless an OTLP endpoint is given; spans are then
// exported over OTLP/HTTP or OTLP/gRPC in batches.
package tracer
