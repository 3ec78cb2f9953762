// Package observability provides structured logging and metrics for the
// identity gateway.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - Prometheus counters for authentication, JWKS fetches, logins and refreshes
//
// Metrics are registered on an explicit registry so tests and the process
// entrypoint never share global state.
package observability
