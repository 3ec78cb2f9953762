package middleware

import (
	"errors"
	"net/http"

	"github.com/toshokan/gateway/auth"
	identity "github.com/toshokan/gateway/internal/auth"
	"github.com/toshokan/gateway/internal/observability"
	"github.com/toshokan/gateway/utils"
	"go.uber.org/zap"
)

// Outcome labels for gateway_auth_requests_total besides the error kinds.
const (
	outcomeOpen          = "open"
	outcomeAuthenticated = "authenticated"
	outcomePending       = "pending"
	outcomeInternal      = "internal_error"
)

// AuthMiddleware is the global authentication gate
type AuthMiddleware struct {
	provider auth.Provider
	open     *OpenRoutes
	logger   *zap.Logger
	metrics  *observability.GatewayMetrics
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(provider auth.Provider, open *OpenRoutes, logger *zap.Logger, metrics *observability.GatewayMetrics) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		provider: provider,
		open:     open,
		logger:   logger,
		metrics:  metrics,
	}
}

// Authenticate passes open routes through untouched and resolves an identity
// for every other request. The downstream handler never runs on failure.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.open != nil && m.open.IsOpen(r.URL.Path) {
			m.metrics.RecordAuth(outcomeOpen)
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		ac, err := m.provider.Authenticate(r)
		if err != nil {
			var authErr *identity.AuthError
			if errors.As(err, &authErr) {
				m.metrics.RecordAuth(string(authErr.Kind))
				m.logger.Warn("authentication failed",
					zap.String("request_id", requestID),
					zap.String("path", r.URL.Path),
					zap.String("kind", string(authErr.Kind)))
				_ = utils.WriteUnauthorized(w, authErr.Kind.Message())
				return
			}

			m.metrics.RecordAuth(outcomeInternal)
			m.logger.Error("authentication error",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "Authentication configuration error.")
			return
		}

		if ac.PendingRegistration {
			m.metrics.RecordAuth(outcomePending)
		} else {
			m.metrics.RecordAuth(outcomeAuthenticated)
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.String("sub", ac.Subject),
			zap.Bool("pending_registration", ac.PendingRegistration))

		next.ServeHTTP(w, r.WithContext(WithAuthContext(ctx, ac)))
	})
}
