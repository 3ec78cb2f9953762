package auth

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/oauth2"
)

const stateBytes = 24

// NewCodeVerifier returns a fresh RFC 7636 code verifier: 32 random bytes,
// base64url without padding (43 characters).
func NewCodeVerifier() string {
	return oauth2.GenerateVerifier()
}

// ChallengeFor returns the S256 code challenge for verifier.
func ChallengeFor(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// NewState returns an anti-CSRF state token independent of any verifier.
// It panics if the system random source fails.
func NewState() string {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		panic("auth: crypto/rand failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
