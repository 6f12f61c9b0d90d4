package authgate

import (
	"net/http"
	"sort"
	"strings"

	"github.com/salonstack/authgate/session"
)

// Header names some reverse proxies substitute for Authorization. The
// original deployment sat behind hosting that renamed the header, so the
// extractor checks these before falling back to a substring scan.
var renamedAuthHeaders = []string{
	"X-Authorization",
	"X-Forwarded-Authorization",
	"Redirect-HTTP-Authorization",
}

// ExtractToken locates a bearer token for the request. Search order, first
// match wins:
//
//  1. the standard Authorization header,
//  2. known proxy-renamed variants,
//  3. any header whose name contains "authorization" (case-insensitive),
//  4. the token mirrored in the active session.
//
// The returned token has any "Bearer " prefix trimmed. ok is false when no
// source yielded a value.
func ExtractToken(headers http.Header, sess *session.Session) (tok string, ok bool) {
	if v := headers.Get("Authorization"); v != "" {
		return trimBearer(v), true
	}
	for _, name := range renamedAuthHeaders {
		if v := headers.Get(name); v != "" {
			return trimBearer(v), true
		}
	}

	// Catch-all for nonstandard proxies. Names are sorted so the pick is
	// deterministic when several match.
	var names []string
	for name := range headers {
		if strings.Contains(strings.ToLower(name), "authorization") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if v := headers.Get(name); v != "" {
			return trimBearer(v), true
		}
	}

	if sess != nil && sess.Token != "" {
		return sess.Token, true
	}
	return "", false
}

func trimBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 7 && strings.EqualFold(v[:7], "Bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return v
}
