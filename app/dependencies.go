package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/toshokan/gateway/auth"
	"github.com/toshokan/gateway/cognito"
	"github.com/toshokan/gateway/config"
	"github.com/toshokan/gateway/internal/observability"
	"github.com/toshokan/gateway/middleware"
	"github.com/toshokan/gateway/repositories"
	"github.com/toshokan/gateway/repositories/memory"
	"github.com/toshokan/gateway/repositories/postgres"
	"github.com/toshokan/gateway/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Metrics
	Registry *prometheus.Registry
	Metrics  *observability.GatewayMetrics

	// Account directory
	Accounts repositories.AccountRepository

	// Auth
	KeyResolver      *cognito.KeyResolver
	Provider         auth.Provider
	authHandler      *auth.Handler
	AuthMiddleware   *middleware.AuthMiddleware
	PolicyMiddleware *middleware.PolicyMiddleware
}

// AuthHandler returns the auth handler for route wiring (implements handlers.AuthDeps)
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// NewDependencies creates and wires up all application dependencies.
// The auth provider is selected here once; it never changes per request.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics()

	if err := deps.initAccounts(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize account directory: %w", err)
	}

	if err := deps.initAuth(cfg); err != nil {
		deps.closeDB()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("auth_provider", cfg.Auth.Provider),
		zap.String("api_prefix", cfg.API.Prefix))
	return deps, nil
}

func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewGatewayMetrics(d.Registry)
}

// initAccounts selects the Postgres directory when DATABASE_URL is set and the
// in-memory directory otherwise
func (d *Dependencies) initAccounts(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.ConnectionString != "" {
		db, err := postgres.NewDB(cfg.Database, d.Logger)
		if err != nil {
			return err
		}
		if err := db.InitSchema(ctx); err != nil {
			_ = db.Close()
			return err
		}
		d.DB = db
		d.Accounts = postgres.NewAccountRepository(db, d.Logger)
		return nil
	}

	if cfg.Database.SeedDataPath != "" {
		repo, err := memory.LoadSeedFile(cfg.Database.SeedDataPath)
		if err != nil {
			return err
		}
		d.Accounts = repo
		d.Logger.Info("in-memory account directory seeded",
			zap.String("path", cfg.Database.SeedDataPath),
			zap.Int("accounts", repo.Len()))
		return nil
	}

	d.Accounts = memory.NewAccountRepository()
	d.Logger.Warn("no account directory configured, using empty in-memory directory")
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	sameSite, err := config.ParseSameSite(cfg.Cookies.SameSite)
	if err != nil {
		return err
	}
	cookies := &auth.CookieManager{SameSite: sameSite, Secure: cfg.Cookies.Secure}

	switch cfg.Auth.Provider {
	case config.AuthProviderHeader:
		d.Provider = auth.NewHeaderAuthProvider(d.Accounts, d.Logger)
		d.Logger.Warn("header auth provider enabled; bearer values are trusted as account ids")
	case config.AuthProviderCognito:
		d.KeyResolver = cognito.NewKeyResolver(cognito.KeyResolverConfig{
			JWKSURL:            cfg.Cognito.JWKSURL(),
			CacheTTL:           cfg.Cognito.JWKSCacheTTL,
			MinRefreshInterval: cfg.Cognito.JWKSMinRefreshInterval,
			HTTPTimeout:        cfg.Cognito.HTTPTimeout,
		}, d.Logger, d.Metrics)
		validator := cognito.NewCognitoValidator(cognito.Config{
			Issuer:   cfg.Cognito.Issuer(),
			ClientID: cfg.Cognito.ClientID,
		}, d.KeyResolver, d.Logger)
		d.Provider = auth.NewCognitoAuthProvider(validator, d.Accounts, cognito.TokenUse(cfg.Auth.BearerTokenUse), d.Logger)
	default:
		return fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}

	if cfg.Cognito.Domain != "" && cfg.Cognito.ClientID != "" {
		d.authHandler = auth.NewHandler(auth.HandlerConfig{
			LoginRedirectURI:  cfg.Frontend.LoginRedirectURI,
			LogoutRedirectURI: cfg.Frontend.LogoutRedirectURI,
			UpstreamTimeout:   cfg.Cognito.HTTPTimeout,
		}, services.NewCognitoTokenClient(cfg.Cognito), cookies, d.Logger, d.Metrics)
		d.Logger.Info("auth handler initialized")
	} else {
		d.Logger.Warn("cognito hosted UI not configured, login endpoints disabled")
	}

	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Provider, middleware.NewOpenRoutes(cfg.API.Prefix), d.Logger, d.Metrics)
	d.PolicyMiddleware = middleware.NewPolicyMiddleware(d.Logger)
	return nil
}

func (d *Dependencies) closeDB() {
	if d.DB != nil {
		_ = d.DB.Close()
		d.DB = nil
	}
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.DB = nil
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
