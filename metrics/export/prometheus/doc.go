// Package prometheus renders the gate's in-process counters in the
// Prometheus text exposition format without depending on the Prometheus
// client library. The exporter is pull-only: Render reads a snapshot and
// formats it, Handler serves it over HTTP.
package prometheus
