package internaldefs

import (
	authgate "github.com/salonstack/authgate"
)

// CounterDef maps one gate counter onto an exported metric name.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// HistogramDef maps one gate histogram onto an exported metric name.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// CounterDefs is the canonical counter list shared by all exporters.
var CounterDefs = []CounterDef{
	{ID: authgate.MetricAuthSession, Name: "authgate_auth_session_total", Help: "Requests authenticated via an existing session."},
	{ID: authgate.MetricAuthToken, Name: "authgate_auth_token_total", Help: "Requests authenticated via a verified bearer token."},
	{ID: authgate.MetricAuthAnonymous, Name: "authgate_auth_anonymous_total", Help: "Optional-auth requests served anonymously."},
	{ID: authgate.MetricAuthRejected, Name: "authgate_auth_rejected_total", Help: "Required-auth requests rejected."},
	{ID: authgate.MetricTokenMalformed, Name: "authgate_token_malformed_total", Help: "Tokens rejected as malformed."},
	{ID: authgate.MetricTokenSignature, Name: "authgate_token_signature_total", Help: "Tokens rejected for signature mismatch."},
	{ID: authgate.MetricTokenExpired, Name: "authgate_token_expired_total", Help: "Tokens rejected as expired."},
	{ID: authgate.MetricForbidden, Name: "authgate_forbidden_total", Help: "Role checks that denied access."},
	{ID: authgate.MetricTokenRefreshed, Name: "authgate_token_refreshed_total", Help: "Proactively reissued tokens."},
	{ID: authgate.MetricLoginSuccess, Name: "authgate_login_success_total", Help: "Successful login attempts."},
	{ID: authgate.MetricLoginFailure, Name: "authgate_login_failure_total", Help: "Failed login attempts."},
	{ID: authgate.MetricLoginRateLimited, Name: "authgate_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: authgate.MetricLogout, Name: "authgate_logout_total", Help: "Logout operations."},
	{ID: authgate.MetricSessionCreated, Name: "authgate_session_created_total", Help: "Sessions created by token promotion or login."},
	{ID: authgate.MetricSessionUnavailable, Name: "authgate_session_unavailable_total", Help: "Session backend failures surfaced as server errors."},
}

// HistogramDefs is the canonical histogram list shared by all exporters.
var HistogramDefs = []HistogramDef{
	{ID: authgate.MetricAuthenticateLatency, Name: "authgate_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds are the upper bounds of the gate's latency buckets, in
// seconds, in Prometheus le-label form.
var HistogramBounds = []string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.005",
	"0.025",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with names safe for
// instrument identifiers.
var HistogramBoundSuffix = []string{
	"50us",
	"100us",
	"250us",
	"500us",
	"1ms",
	"5ms",
	"25ms",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// exporter width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
