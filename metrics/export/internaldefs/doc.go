// Package internaldefs holds the metric name table shared by the
// Prometheus and OpenTelemetry exporters so the two never drift.
package internaldefs
