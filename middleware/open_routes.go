package middleware

import "strings"

// OpenRoutes classifies request paths that bypass authentication.
type OpenRoutes struct {
	exact    map[string]struct{}
	prefixes []string
}

// NewOpenRoutes builds the allowlist for the given API prefix: health,
// API docs, favicon and the login/logout endpoints.
func NewOpenRoutes(apiPrefix string) *OpenRoutes {
	o := &OpenRoutes{
		exact:    make(map[string]struct{}),
		prefixes: []string{"/docs", "/redoc"},
	}
	for _, p := range []string{"/health", "/health/ready", "/favicon.ico", "/openapi.json"} {
		o.exact[p] = struct{}{}
	}
	for _, p := range []string{"/login", "/login_done", "/logout", "/logout_done", "/refresh", "/health"} {
		o.exact[apiPrefix+p] = struct{}{}
	}
	return o
}

// IsOpen reports whether path may be served without credentials.
func (o *OpenRoutes) IsOpen(path string) bool {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if _, ok := o.exact[path]; ok {
		return true
	}
	for _, p := range o.prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
