package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/toshokan/gateway/middleware"
	"github.com/toshokan/gateway/utils"
)

// CustomerAccessResponse is the response body for GET <prefix>/customers/{customerID}/access
type CustomerAccessResponse struct {
	CustomerID   string `json:"customer_id"`
	Subject      string `json:"subject"`
	IsBackoffice bool   `json:"is_backoffice"`
}

// KeyCacheResponse is the response body for GET <prefix>/admin/keys
type KeyCacheResponse struct {
	CachedKeys int        `json:"cached_keys"`
	FetchedAt  *time.Time `json:"fetched_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

// CustomerAccessHandler confirms the caller is scoped to the customer in the
// path. The access decision itself is made by the policy middleware.
func CustomerAccessHandler(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac := middleware.GetAuthContext(r.Context())
		if ac == nil {
			_ = utils.WriteUnauthorized(w, "")
			return
		}
		_ = utils.WriteOK(w, CustomerAccessResponse{
			CustomerID:   chi.URLParam(r, param),
			Subject:      ac.Subject,
			IsBackoffice: ac.IsBackoffice(),
		})
	}
}

// KeyCacheHandler reports the signing key cache. keys may be nil when the
// header provider is active.
func KeyCacheHandler(keys KeyCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if keys == nil {
			_ = utils.WriteNotFound(w, "Key cache not configured")
			return
		}
		stats := keys.Stats()
		resp := KeyCacheResponse{CachedKeys: stats.CachedKeys}
		if !stats.FetchedAt.IsZero() {
			fetched, expires := stats.FetchedAt.UTC(), stats.ExpiresAt.UTC()
			resp.FetchedAt = &fetched
			resp.ExpiresAt = &expires
		}
		_ = utils.WriteOK(w, resp)
	}
}
