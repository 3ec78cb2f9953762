package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeExternal, "token endpoint unreachable", baseErr)

	assert.Equal(t, ErrorTypeExternal, domainErr.Type)
	assert.Equal(t, "token endpoint unreachable", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeExternal,
				Message: "authorization code exchange failed",
				Err:     errors.New("connection refused"),
			},
			wantMsg: "external: authorization code exchange failed (connection refused)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeUnauthorized,
				Message: "login state mismatch",
			},
			wantMsg: "unauthorized: login state mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeExternal, "token refresh failed", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeUnauthorized, "nope", nil),
			target: ErrStateMismatch,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrStateMismatch,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeExternal, "upstream", nil),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeExternal, "upstream", nil)

	err.WithDetail("error_code", "invalid_grant").WithDetail("status", 400)

	assert.Equal(t, "invalid_grant", err.Details["error_code"])
	assert.Equal(t, 400, err.Details["status"])
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"validation", ErrInvalidCallback, IsValidationError, true},
		{"wrapped validation", fmt.Errorf("wrapped: %w", ErrInvalidCallback), IsValidationError, true},
		{"unauthorized", ErrMissingVerifier, IsUnauthorizedError, true},
		{"unauthorized is not external", ErrLoginDenied, IsExternalError, false},
		{"missing refresh is unauthorized", ErrMissingRefresh, IsUnauthorizedError, true},
		{"external", NewDomainError(ErrorTypeExternal, "upstream", nil), IsExternalError, true},
		{"regular error", errors.New("regular"), IsExternalError, false},
		{"nil error", nil, IsValidationError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeExternal, GetErrorType(fmt.Errorf("x: %w", NewDomainError(ErrorTypeExternal, "upstream", nil))))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("regular")))
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeExternal, "upstream", nil).WithDetail("status", 503)

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, 503, details["status"])

	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}
