package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toshokan/gateway/app"
	"github.com/toshokan/gateway/config"
	"github.com/toshokan/gateway/routes"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	// Setup
	os.Setenv("ENVIRONMENT", "test")
	os.Setenv("LOG_LEVEL", "error")

	// Run tests
	code := m.Run()

	// Teardown
	os.Exit(code)
}

func TestInitLogger(t *testing.T) {
	t.Run("default json logger", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "info")
		t.Setenv("LOG_FORMAT", "json")

		logger, err := initLogger()
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})

	t.Run("development console logger", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "console")

		logger, err := initLogger()
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "invalid")
		t.Setenv("LOG_FORMAT", "json")

		logger, err := initLogger()
		assert.Error(t, err)
		assert.Nil(t, logger)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("defaults when not set", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("LOG_FORMAT", "")

		logger, err := initLogger()
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})
}

func TestApplicationStartup(t *testing.T) {
	t.Run("successful startup with in-memory dependencies", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)
		logger := zaptest.NewLogger(t)

		deps, err := app.NewDependencies(ctx, cfg, logger)
		require.NoError(t, err)
		defer deps.Close(ctx)

		// Setup routes
		handler := routes.SetupRoutes(deps)
		require.NotNil(t, handler)

		ts := httptest.NewServer(handler)
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"ok"}`, string(body))
	})
}

func TestMetricsServer(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig(t)
		deps, err := app.NewDependencies(ctx, cfg, zaptest.NewLogger(t))
		require.NoError(t, err)

		assert.Nil(t, newMetricsServer(cfg, deps))
	})

	t.Run("exposes gateway metrics", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Observability.MetricsEnabled = true
		cfg.Observability.MetricsPort = 9091
		deps, err := app.NewDependencies(ctx, cfg, zaptest.NewLogger(t))
		require.NoError(t, err)

		srv := newMetricsServer(cfg, deps)
		require.NotNil(t, srv)
		assert.Equal(t, "127.0.0.1:9091", srv.Addr)

		// One authenticated-route rejection so the counter has a sample
		api := httptest.NewServer(routes.SetupRoutes(deps))
		defer api.Close()
		resp, err := http.Get(api.URL + "/v1/me")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `gateway_auth_requests_total{outcome="missing"} 1`)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}

func TestRunFailsOnInvalidConfig(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "saml")

	err := run(context.Background(), zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

// Test helpers

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		API: config.APIConfig{
			Prefix:      "/v1",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Auth: config.AuthConfig{
			Provider:       config.AuthProviderHeader,
			BearerTokenUse: "access",
		},
		Cookies: config.CookieConfig{SameSite: "lax"},
		Observability: config.ObservabilityConfig{
			LogLevel:       "error",
			LogFormat:      "json",
			MetricsEnabled: false,
		},
	}
}
