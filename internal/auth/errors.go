package auth

import "fmt"

// ErrorKind classifies why a credential was rejected.
type ErrorKind string

const (
	KindMissing          ErrorKind = "missing"
	KindInvalidToken     ErrorKind = "invalid_token"
	KindExpired          ErrorKind = "expired"
	KindInvalidSignature ErrorKind = "invalid_signature"
	KindInvalidIssuer    ErrorKind = "invalid_issuer"
	KindInvalidAudience  ErrorKind = "invalid_audience"
	KindWrongTokenUse    ErrorKind = "wrong_token_use"
	KindMalformedClaims  ErrorKind = "malformed_claims"
)

// AuthError is a credential failure. Every AuthError maps to 401; anything
// that is not an AuthError is an internal failure.
type AuthError struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

// Unwrap implements errors.Unwrap
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches any AuthError of the same kind, so callers can compare against
// the sentinels below with errors.Is.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewAuthError creates an AuthError of the given kind wrapping err.
func NewAuthError(kind ErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

var (
	ErrMissingCredential = &AuthError{Kind: KindMissing}
	ErrInvalidToken      = &AuthError{Kind: KindInvalidToken}
	ErrTokenExpired      = &AuthError{Kind: KindExpired}
	ErrInvalidSignature  = &AuthError{Kind: KindInvalidSignature}
	ErrInvalidIssuer     = &AuthError{Kind: KindInvalidIssuer}
	ErrInvalidAudience   = &AuthError{Kind: KindInvalidAudience}
	ErrWrongTokenUse     = &AuthError{Kind: KindWrongTokenUse}
	ErrMalformedClaims   = &AuthError{Kind: KindMalformedClaims}
)

// Message returns the client-facing detail for a credential failure.
func (k ErrorKind) Message() string {
	switch k {
	case KindMissing:
		return "Unauthorized."
	case KindExpired:
		return "Token has expired."
	case KindMalformedClaims:
		return "Token is missing required claims."
	default:
		return "Invalid authentication token."
	}
}
