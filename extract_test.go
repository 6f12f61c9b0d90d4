package authgate

import (
	"net/http"
	"testing"

	"github.com/salonstack/authgate/session"
)

func TestExtractTokenPrecedence(t *testing.T) {
	sess := &session.Session{Token: "session-token"}

	cases := []struct {
		name    string
		headers http.Header
		sess    *session.Session
		want    string
		found   bool
	}{
		{
			name:    "standard header wins over session",
			headers: http.Header{"Authorization": {"Bearer header-token"}},
			sess:    sess,
			want:    "header-token",
			found:   true,
		},
		{
			name:    "proxy renamed header",
			headers: http.Header{"X-Authorization": {"Bearer proxy-token"}},
			want:    "proxy-token",
			found:   true,
		},
		{
			name:    "forwarded variant",
			headers: http.Header{"X-Forwarded-Authorization": {"Bearer fwd-token"}},
			want:    "fwd-token",
			found:   true,
		},
		{
			name:    "redirect variant",
			headers: http.Header{"Redirect-Http-Authorization": {"Bearer redir-token"}},
			want:    "redir-token",
			found:   true,
		},
		{
			name:    "standard beats renamed",
			headers: http.Header{"Authorization": {"Bearer a"}, "X-Authorization": {"Bearer b"}},
			want:    "a",
			found:   true,
		},
		{
			name:    "catch-all substring match",
			headers: http.Header{"Weird-Authorization-Hop": {"Bearer odd-token"}},
			want:    "odd-token",
			found:   true,
		},
		{
			name:    "session fallback",
			headers: http.Header{},
			sess:    sess,
			want:    "session-token",
			found:   true,
		},
		{
			name:    "nothing anywhere",
			headers: http.Header{},
			found:   false,
		},
		{
			name:    "case-insensitive bearer prefix",
			headers: http.Header{"Authorization": {"bearer lower-token"}},
			want:    "lower-token",
			found:   true,
		},
		{
			name:    "raw value without bearer prefix",
			headers: http.Header{"Authorization": {"raw-token"}},
			want:    "raw-token",
			found:   true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractToken(tc.headers, tc.sess)
			if ok != tc.found || got != tc.want {
				t.Fatalf("got (%q, %v), want (%q, %v)", got, ok, tc.want, tc.found)
			}
		})
	}
}

func TestExtractTokenEmptySessionToken(t *testing.T) {
	if _, ok := ExtractToken(http.Header{}, &session.Session{}); ok {
		t.Fatal("session without a mirrored token must not yield a credential")
	}
}
