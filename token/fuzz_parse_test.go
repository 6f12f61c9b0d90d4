package token

import (
	"testing"
	"time"
)

// FuzzVerify exercises the token parser with arbitrary strings.
// Goal: no panics; invalid inputs must be rejected with errors.
func FuzzVerify(f *testing.F) {
	iss, err := NewIssuer(testSecret, WithIssuerClock(func() time.Time { return time.Unix(1_700_000_000, 0) }))
	if err != nil {
		f.Fatal(err)
	}
	ver, err := NewVerifier(testSecret, WithVerifierClock(func() time.Time { return time.Unix(1_700_000_000, 0) }))
	if err != nil {
		f.Fatal(err)
	}

	valid, err := iss.Issue(Claims{UserID: "u-1", Email: "a@b.c", Role: "user"})
	if err != nil {
		f.Fatal(err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("..")
	f.Add("a.b.c")
	f.Add("eyJ0eXAiOiJKV1QiLCJhbGciOiJIUzI1NiJ9.eyJ1c2VyX2lkIjoiMSJ9.bad")
	f.Add(valid + ".")

	f.Fuzz(func(t *testing.T, input string) {
		claims, err := ver.Verify(input)
		if err != nil {
			return
		}
		if input != valid && claims == (Claims{}) {
			t.Fatal("Verify returned empty claims without error")
		}
	})
}
