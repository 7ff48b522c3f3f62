// Package observability sets up structured logging, tracing and metrics.
//
// Logging uses log/slog with JSON or text handlers. Records carry the
// trace_id and span_id of the active span, and values of sensitive keys
// (api_key, password, token and similar) are redacted.
//
// Tracing exports spans over OTLP/gRPC when enabled; otherwise a tracer
// provider without exporters is installed so spans cost nothing.
//
// Metrics are recorded with OpenTelemetry instruments and exported either
// through a Prometheus scrape handler or pushed over OTLP/gRPC.
// PipelineMetrics turns finished runs into run, correction and duration
// measurements.
package observability
