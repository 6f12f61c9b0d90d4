package authgate

import (
	"io"

	"github.com/salonstack/authgate/internal/audit"
)

// AuditEvent is re-exported so callers can consume audit streams without
// importing internal packages.
type AuditEvent = audit.Event

// AuditSink receives audit events emitted by the gate. Sinks are invoked
// from the dispatcher goroutine, never from the request path.
type AuditSink = audit.Sink

// Audit event kinds emitted by the gate.
const (
	AuditAuthSession    = audit.KindAuthSession
	AuditAuthToken      = audit.KindAuthToken
	AuditAuthRejected   = audit.KindAuthRejected
	AuditForbidden      = audit.KindForbidden
	AuditTokenRefreshed = audit.KindTokenRefreshed
	AuditLoginSuccess   = audit.KindLoginSuccess
	AuditLoginFailed    = audit.KindLoginFailed
	AuditLogout         = audit.KindLogout
)

// NewChannelAuditSink returns a sink that buffers events on a channel the
// caller drains via Events().
func NewChannelAuditSink(buffer int) *audit.ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONAuditSink returns a sink that writes one JSON object per line to
// w.
func NewJSONAuditSink(w io.Writer) *audit.JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// AuditDropped reports audit events discarded because the dispatcher
// buffer was full.
func (g *Gate) AuditDropped() uint64 {
	if g == nil {
		return 0
	}
	return g.audit.Dropped()
}
