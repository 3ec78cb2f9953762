package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenRoutes_IsOpen(t *testing.T) {
	open := NewOpenRoutes("/v1")

	tests := []struct {
		path string
		want bool
	}{
		{"/health", true},
		{"/health/", true},
		{"/health/ready", true},
		{"/favicon.ico", true},
		{"/openapi.json", true},
		{"/docs", true},
		{"/docs/swagger.css", true},
		{"/redoc", true},
		{"/v1/login", true},
		{"/v1/login_done", true},
		{"/v1/logout", true},
		{"/v1/logout_done", true},
		{"/v1/refresh", true},
		{"/v1/health", true},
		{"/v1/me", false},
		{"/v1/customers/123", false},
		{"/login", false},
		{"/docsearch", false},
		{"/v1/login/extra", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, open.IsOpen(tt.path))
		})
	}
}

func TestOpenRoutes_EmptyPrefix(t *testing.T) {
	open := NewOpenRoutes("")

	assert.True(t, open.IsOpen("/login"))
	assert.True(t, open.IsOpen("/logout_done"))
	assert.False(t, open.IsOpen("/me"))
}
