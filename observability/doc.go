// Package observability wires OpenTelemetry metrics and tracing for the
// plugin lifecycle: activation attempts, fallback walks, and data clears
// are exported over OTLP HTTP when an endpoint is configured.
package observability
