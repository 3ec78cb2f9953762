package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics collects authentication metrics. A nil *GatewayMetrics is
// valid and records nothing.
type GatewayMetrics struct {
	authRequests  *prometheus.CounterVec
	jwksFetches   *prometheus.CounterVec
	loginAttempts *prometheus.CounterVec
	tokenRefresh  *prometheus.CounterVec
}

// NewGatewayMetrics creates the gateway counters and registers them on reg.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		authRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_auth_requests_total",
			Help: "Requests seen by the auth middleware, by outcome.",
		}, []string{"outcome"}),
		jwksFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_jwks_fetches_total",
			Help: "Upstream JWKS document fetches, by result.",
		}, []string{"result"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_login_attempts_total",
			Help: "Completed login callbacks, by terminal state.",
		}, []string{"result"}),
		tokenRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_token_refresh_total",
			Help: "User initiated token refreshes, by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.authRequests, m.jwksFetches, m.loginAttempts, m.tokenRefresh)
	}
	return m
}

// RecordAuth counts one middleware decision.
func (m *GatewayMetrics) RecordAuth(outcome string) {
	if m == nil {
		return
	}
	m.authRequests.WithLabelValues(outcome).Inc()
}

// RecordJWKSFetch counts one upstream JWKS fetch.
func (m *GatewayMetrics) RecordJWKSFetch(success bool) {
	if m == nil {
		return
	}
	m.jwksFetches.WithLabelValues(resultLabel(success)).Inc()
}

// RecordLogin counts one login attempt reaching a terminal state.
func (m *GatewayMetrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

// RecordRefresh counts one refresh attempt.
func (m *GatewayMetrics) RecordRefresh(success bool) {
	if m == nil {
		return
	}
	m.tokenRefresh.WithLabelValues(resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
