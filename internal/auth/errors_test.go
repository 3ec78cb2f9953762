package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthError_Is(t *testing.T) {
	err := NewAuthError(KindExpired, errors.New("token is expired"))

	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrInvalidSignature)

	wrapped := fmt.Errorf("validate: %w", err)
	assert.ErrorIs(t, wrapped, ErrTokenExpired)

	var authErr *AuthError
	require.ErrorAs(t, wrapped, &authErr)
	assert.Equal(t, KindExpired, authErr.Kind)
}

func TestAuthError_Error(t *testing.T) {
	assert.Equal(t, "missing", ErrMissingCredential.Error())
	assert.Equal(t, "invalid_issuer: got https://evil", NewAuthError(KindInvalidIssuer, errors.New("got https://evil")).Error())
}

func TestAuthError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewAuthError(KindInvalidToken, cause)
	assert.ErrorIs(t, err, cause)
}

func TestErrorKind_Message(t *testing.T) {
	assert.Equal(t, "Unauthorized.", KindMissing.Message())
	assert.Equal(t, "Token has expired.", KindExpired.Message())
	assert.Equal(t, "Invalid authentication token.", KindWrongTokenUse.Message())
	assert.Equal(t, "Invalid authentication token.", KindInvalidSignature.Message())
}
