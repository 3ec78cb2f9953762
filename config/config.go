package config

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/toshokan/gateway/utils"
)

const (
	// AuthProviderCognito validates Cognito-issued JWTs against the pool JWKS.
	AuthProviderCognito = "cognito"
	// AuthProviderHeader trusts the bearer value as a local account id. Test/dev only.
	AuthProviderHeader = "header"
)

var defaultCORSOrigins = []string{
	"https://dashboard.local:3000",
	"https://127.0.0.1:3000",
	"https://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:3000",
}

// Config represents the complete application configuration.
// It is read once at startup and never mutated afterwards.
type Config struct {
	Server        ServerConfig
	API           APIConfig
	Auth          AuthConfig
	Cognito       CognitoConfig
	Frontend      FrontendConfig
	Cookies       CookieConfig
	Database      DatabaseConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// APIConfig holds routing configuration shared by every handler
type APIConfig struct {
	Prefix      string
	CORSOrigins []string
}

// AuthConfig selects how request credentials are resolved
type AuthConfig struct {
	Provider string `validate:"oneof=cognito header"`
	// BearerTokenUse is the token_use required of Authorization header credentials.
	BearerTokenUse string `validate:"oneof=access id"`
}

// CognitoConfig holds AWS Cognito authentication configuration
type CognitoConfig struct {
	Region       string
	UserPoolID   string
	ClientID     string
	ClientSecret string
	Domain       string // Hosted UI base URL (e.g., https://my-app.auth.eu-central-1.amazoncognito.com)

	JWKSCacheTTL           time.Duration
	JWKSMinRefreshInterval time.Duration
	HTTPTimeout            time.Duration
}

// FrontendConfig holds the dashboard URLs used for post-login/logout redirects
type FrontendConfig struct {
	BaseURL           string
	LoginRedirectURI  string
	LogoutRedirectURI string
}

// CookieConfig holds session cookie attributes
type CookieConfig struct {
	SameSite string
	// Secure overrides the per-request default when set.
	Secure *bool
}

// DatabaseConfig holds the optional Postgres account directory configuration.
// An empty ConnectionString selects the in-memory directory.
type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	SeedDataPath     string
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
	MetricsPort    int
}

// cognitoRequired is validated only when the Cognito provider is selected.
type cognitoRequired struct {
	Region     string `validate:"required"`
	UserPoolID string `validate:"required"`
	ClientID   string `validate:"required"`
	Domain     string `validate:"required,url"`
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	frontend := strings.TrimSuffix(getEnv("FRONTEND_BASE_URL", "https://dashboard.local:3000"), "/")

	cookieSecure, err := getEnvAsOptionalBool("COOKIE_SECURE")
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		API: APIConfig{
			Prefix:      normalizePrefix(getEnv("API_PREFIX", "/v1")),
			CORSOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", defaultCORSOrigins),
		},
		Auth: AuthConfig{
			Provider:       strings.ToLower(getEnv("AUTH_PROVIDER", AuthProviderCognito)),
			BearerTokenUse: strings.ToLower(getEnv("AUTH_BEARER_TOKEN_USE", "access")),
		},
		Cognito: CognitoConfig{
			Region:                 getEnv("COGNITO_REGION", ""),
			UserPoolID:             getEnv("COGNITO_USER_POOL_ID", ""),
			ClientID:               getEnv("COGNITO_CLIENT_ID", ""),
			ClientSecret:           getEnv("COGNITO_CLIENT_SECRET", ""),
			Domain:                 strings.TrimSuffix(getEnv("COGNITO_DOMAIN", ""), "/"),
			JWKSCacheTTL:           getEnvAsDuration("COGNITO_JWKS_CACHE_TTL", time.Hour),
			JWKSMinRefreshInterval: getEnvAsDuration("COGNITO_JWKS_MIN_REFRESH_INTERVAL", 10*time.Second),
			HTTPTimeout:            getEnvAsDuration("COGNITO_HTTP_TIMEOUT", 10*time.Second),
		},
		Frontend: FrontendConfig{
			BaseURL:           frontend,
			LoginRedirectURI:  getEnv("COGNITO_REDIRECT_URI_LOGIN", frontend+"/login_done"),
			LogoutRedirectURI: getEnv("COGNITO_REDIRECT_URI_LOGOUT", frontend+"/logout_done"),
		},
		Cookies: CookieConfig{
			SameSite: strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),
			Secure:   cookieSecure,
		},
		Database: DatabaseConfig{
			ConnectionString: getEnv("DATABASE_URL", ""),
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			SeedDataPath:     getEnv("SEED_DATA_PATH", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set.
// Any error here is fatal at startup.
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c.Auth); err != nil {
		return fmt.Errorf("auth configuration: %w: %v", err, utils.GetValidationFields(err))
	}

	switch c.Auth.Provider {
	case AuthProviderCognito:
		required := cognitoRequired{
			Region:     c.Cognito.Region,
			UserPoolID: c.Cognito.UserPoolID,
			ClientID:   c.Cognito.ClientID,
			Domain:     c.Cognito.Domain,
		}
		if err := utils.ValidateStruct(required); err != nil {
			return fmt.Errorf("cognito configuration: %w: %v", err, utils.GetValidationFields(err))
		}
	case AuthProviderHeader:
		if c.IsProduction() {
			return fmt.Errorf("header auth provider is not allowed in production")
		}
	}

	if _, err := ParseSameSite(c.Cookies.SameSite); err != nil {
		return err
	}
	if c.Cookies.SameSite == "none" && (c.Cookies.Secure == nil || !*c.Cookies.Secure) {
		return fmt.Errorf("COOKIE_SAMESITE=none requires COOKIE_SECURE=true")
	}

	for _, uri := range []string{c.Frontend.LoginRedirectURI, c.Frontend.LogoutRedirectURI} {
		if u, err := url.Parse(uri); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("redirect URI %q must be an absolute URL", uri)
		}
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Issuer returns the Cognito user pool issuer URL.
func (c *CognitoConfig) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

// JWKSURL returns the well-known JWKS endpoint of the user pool.
func (c *CognitoConfig) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}

// ParseSameSite maps a configured SameSite policy to its http constant.
func ParseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(value) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("invalid COOKIE_SAMESITE %q: must be lax, strict or none", value)
	}
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsOptionalBool returns nil when key is unset.
func getEnvAsOptionalBool(key string) (*bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean, got %q", key, valueStr)
	}
	return &value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// LogString returns a safe string for logging (no credentials).
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString == "" {
		return "in-memory"
	}
	u, err := url.Parse(c.ConnectionString)
	if err != nil || u.Host == "" {
		return "host=<from DATABASE_URL>"
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, strings.TrimPrefix(u.Path, "/"))
}
