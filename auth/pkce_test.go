package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestNewCodeVerifier(t *testing.T) {
	v := NewCodeVerifier()

	assert.Len(t, v, 43)
	assert.Regexp(t, urlSafe, v)
}

func TestChallengeFor(t *testing.T) {
	// RFC 7636 appendix B
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", ChallengeFor(verifier))

	sum := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), ChallengeFor(verifier))
}

func TestChallengeFor_Deterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		v := NewCodeVerifier()
		c := ChallengeFor(v)
		assert.Equal(t, c, ChallengeFor(v))
		assert.NotContains(t, c, "=")
		assert.Regexp(t, urlSafe, c)
	}
}

func TestChallengeFor_DistinctVerifiers(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		c := ChallengeFor(NewCodeVerifier())
		_, dup := seen[c]
		assert.False(t, dup)
		seen[c] = struct{}{}
	}
}

func TestNewState(t *testing.T) {
	s := NewState()

	assert.Len(t, s, 32)
	assert.Regexp(t, urlSafe, s)
	assert.NotEqual(t, s, NewState())
}
