package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	identity "github.com/toshokan/gateway/internal/auth"
)

// Context key type to avoid collisions
type contextKey string

const (
	// AuthContextKey is the context key for the resolved identity
	AuthContextKey contextKey = "auth_context"
)

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// GetAuthContext retrieves the identity resolved by Authenticate, or nil on
// open routes
func GetAuthContext(ctx context.Context) *identity.Context {
	if val := ctx.Value(AuthContextKey); val != nil {
		if ac, ok := val.(*identity.Context); ok {
			return ac
		}
	}
	return nil
}

// WithAuthContext attaches the resolved identity to the context
func WithAuthContext(ctx context.Context, ac *identity.Context) context.Context {
	return context.WithValue(ctx, AuthContextKey, ac)
}
