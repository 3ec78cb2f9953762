package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/toshokan/gateway/app"
	"github.com/toshokan/gateway/handlers"
	"github.com/toshokan/gateway/utils"
)

const customerIDParam = "customerID"

// SetupRoutes configures all application routes and middleware.
// Authentication is enforced globally; only the open routes bypass it.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware; credentials are required for the session cookies
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.API.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-Groups"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(deps.AuthMiddleware.Authenticate)

	health := handlers.NewHealthHandler(healthChecker(deps), keyCache(deps), deps.Logger)
	keys := keyCache(deps)

	// Health check and docs endpoints
	r.Get("/health", health.HandleHealth)
	r.Get("/health/ready", health.HandleReadiness)
	r.Get("/openapi.json", handlers.OpenAPIHandler())

	prefix := deps.Config.API.Prefix
	api := chi.NewRouter()

	// Cognito hosted UI endpoints
	api.Get("/login", handlers.AuthLoginHandler(deps))
	api.Get("/login_done", handlers.AuthCallbackHandler(deps))
	api.Get("/logout", handlers.AuthLogoutHandler(deps))
	api.Get("/logout_done", handlers.LogoutDoneHandler())
	api.Post("/refresh", handlers.AuthRefreshHandler(deps))
	api.Get("/health", health.HandleHealth)

	// Protected routes
	api.Get("/me", handlers.GetCurrentUserHandler())

	api.With(
		deps.PolicyMiddleware.RequireRegistered,
		deps.PolicyMiddleware.RequireCustomerAccess(customerIDParam),
	).Get("/customers/{"+customerIDParam+"}/access", handlers.CustomerAccessHandler(customerIDParam))

	api.With(deps.PolicyMiddleware.RequireBackoffice).
		Get("/admin/keys", handlers.KeyCacheHandler(keys))

	api.NotFound(notFound)
	if prefix == "" {
		r.Mount("/", api)
	} else {
		r.Mount(prefix, api)
	}

	// 404 handler
	r.NotFound(notFound)

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteNotFound(w, "")
}

// healthChecker avoids wrapping a nil *postgres.DB in a non-nil interface.
func healthChecker(deps *app.Dependencies) handlers.HealthChecker {
	if deps.DB == nil {
		return nil
	}
	return deps.DB
}

func keyCache(deps *app.Dependencies) handlers.KeyCache {
	if deps.KeyResolver == nil {
		return nil
	}
	return deps.KeyResolver
}
