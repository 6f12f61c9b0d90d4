package token

// Header is the first token segment. Every token issued by this package
// carries {"typ":"JWT","alg":"HS256"}; the verifier only requires that the
// segment decodes, since the signature is always recomputed with HS256.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

const (
	headerType      = "JWT"
	headerAlgorithm = "HS256"
)

// Claims is the decoded payload segment. UserID is required for a usable
// principal; every other field is optional. IssuedAt and ExpiresAt are nil
// when the claim is absent, so callers must handle absence explicitly
// rather than reading a zero timestamp.
type Claims struct {
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	IssuedAt  *int64 `json:"iat,omitempty"`
	ExpiresAt *int64 `json:"exp,omitempty"`
}

// Expiry returns the exp claim in seconds since epoch, and whether it is set.
func (c Claims) Expiry() (int64, bool) {
	if c.ExpiresAt == nil {
		return 0, false
	}
	return *c.ExpiresAt, true
}

// Issued returns the iat claim in seconds since epoch, and whether it is set.
func (c Claims) Issued() (int64, bool) {
	if c.IssuedAt == nil {
		return 0, false
	}
	return *c.IssuedAt, true
}
