package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	identity "github.com/toshokan/gateway/internal/auth"
	"github.com/toshokan/gateway/utils"
	"go.uber.org/zap"
)

// PolicyMiddleware enforces the authorization policy on routes that sit
// behind Authenticate
type PolicyMiddleware struct {
	logger *zap.Logger
}

// NewPolicyMiddleware creates a new PolicyMiddleware
func NewPolicyMiddleware(logger *zap.Logger) *PolicyMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolicyMiddleware{logger: logger}
}

// RequireBackoffice allows only operators.
func (m *PolicyMiddleware) RequireBackoffice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := GetAuthContext(r.Context())
		if ac == nil {
			_ = utils.WriteUnauthorized(w, "")
			return
		}
		if !identity.IsBackoffice(ac) {
			m.logger.Warn("backoffice access denied",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("sub", ac.Subject),
				zap.Strings("groups", ac.Groups))
			_ = utils.WriteForbidden(w, "Backoffice access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCustomerAccess allows callers scoped to the customer named by the
// given chi URL parameter.
func (m *PolicyMiddleware) RequireCustomerAccess(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := GetAuthContext(r.Context())
			if ac == nil {
				_ = utils.WriteUnauthorized(w, "")
				return
			}

			customerID, err := utils.ParseUUID(chi.URLParam(r, param))
			if err != nil {
				_ = utils.WriteBadRequest(w, "Invalid customer id.", map[string]string{param: err.Error()})
				return
			}

			if !identity.HasCustomerAccess(ac, customerID) {
				m.logger.Warn("customer access denied",
					zap.String("request_id", GetRequestIDFromContext(r.Context())),
					zap.String("sub", ac.Subject),
					zap.String("customer_id", customerID.String()))
				_ = utils.WriteForbidden(w, "Customer access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRegistered rejects identities that have no local account yet.
func (m *PolicyMiddleware) RequireRegistered(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := GetAuthContext(r.Context())
		if ac == nil {
			_ = utils.WriteUnauthorized(w, "")
			return
		}
		if ac.PendingRegistration {
			_ = utils.WriteForbidden(w, "Registration required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
