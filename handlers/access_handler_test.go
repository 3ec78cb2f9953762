package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toshokan/gateway/cognito"
	identity "github.com/toshokan/gateway/internal/auth"
	"github.com/toshokan/gateway/middleware"
)

func TestCustomerAccessHandler(t *testing.T) {
	customer := uuid.New()
	r := chi.NewRouter()
	r.Get("/v1/customers/{customerID}/access", CustomerAccessHandler("customerID"))

	t.Run("echoes the customer for an authenticated caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/customers/"+customer.String()+"/access", nil)
		req = req.WithContext(middleware.WithAuthContext(req.Context(), &identity.Context{
			Subject:     "sub-1",
			UserID:      uuid.New(),
			CustomerIDs: []uuid.UUID{customer},
		}))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body CustomerAccessResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, customer.String(), body.CustomerID)
		assert.Equal(t, "sub-1", body.Subject)
		assert.False(t, body.IsBackoffice)
	})

	t.Run("401 without auth context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/customers/"+customer.String()+"/access", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestKeyCacheHandler(t *testing.T) {
	t.Run("empty cache", func(t *testing.T) {
		rec := httptest.NewRecorder()
		KeyCacheHandler(stubKeys{})(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/keys", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"cached_keys":0,"fetched_at":null,"expires_at":null}`, rec.Body.String())
	})

	t.Run("populated cache", func(t *testing.T) {
		fetched := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		keys := stubKeys{stats: cognito.ResolverStats{
			CachedKeys: 2,
			FetchedAt:  fetched,
			ExpiresAt:  fetched.Add(time.Hour),
		}}
		rec := httptest.NewRecorder()

		KeyCacheHandler(keys)(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/keys", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body KeyCacheResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, 2, body.CachedKeys)
		require.NotNil(t, body.FetchedAt)
		assert.True(t, fetched.Equal(*body.FetchedAt))
		assert.True(t, fetched.Add(time.Hour).Equal(*body.ExpiresAt))
	})

	t.Run("not configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		KeyCacheHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/keys", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":"Key cache not configured"}`, rec.Body.String())
	})
}
