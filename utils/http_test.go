package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteOK(w, map[string]string{"status": "tokens_refreshed"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"tokens_refreshed"}`, w.Body.String())
}

func TestWriteBadRequest(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteBadRequest(w, "Invalid callback request.", map[string]string{"code": "code is required"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeError(t, w)
	assert.Equal(t, "Invalid callback request.", response.Detail)
	assert.Equal(t, "code is required", response.Details["code"])
}

func TestWriteUnauthorized(t *testing.T) {
	t.Run("default detail", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteUnauthorized(w, ""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"detail":"Unauthorized."}`, w.Body.String())
	})

	t.Run("custom detail", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteUnauthorized(w, "Token has expired."))

		assert.Equal(t, "Token has expired.", decodeError(t, w).Detail)
	})
}

func TestWriteDefaults(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter) error
		status int
		detail string
	}{
		{
			name:   "forbidden",
			write:  func(w http.ResponseWriter) error { return WriteForbidden(w, "") },
			status: http.StatusForbidden,
			detail: "Forbidden.",
		},
		{
			name:   "not found",
			write:  func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			status: http.StatusNotFound,
			detail: "Not found.",
		},
		{
			name:   "bad gateway",
			write:  func(w http.ResponseWriter) error { return WriteBadGateway(w, "") },
			status: http.StatusBadGateway,
			detail: "Upstream identity provider error.",
		},
		{
			name:   "internal error",
			write:  func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			status: http.StatusInternalServerError,
			detail: "Internal server error.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.detail, decodeError(t, w).Detail)
		})
	}
}
