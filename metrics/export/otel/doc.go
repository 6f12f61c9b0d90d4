// Package otel exposes the gate's counters as OpenTelemetry observable
// instruments. The exporter registers one callback that reads a snapshot
// per collection; histogram buckets are exported as cumulative gauges
// because the core tracks fixed buckets, not raw samples.
package otel
