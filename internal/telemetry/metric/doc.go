// Package metric provides Prometheus metrics for System Validator.
//
// Metrics include:
//
//   - Configuration load counts by result, durations and key counts
//   - Time of the last successful load and the current generation
//   - Status panel request counts and latencies
//   - Go runtime and process collectors
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
