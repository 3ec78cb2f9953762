package auth

import (
	"net/http"
	"strings"

	identity "github.com/toshokan/gateway/internal/auth"
	"github.com/toshokan/gateway/services"
)

// Cookie names shared with the dashboard.
const (
	AccessTokenCookie  = "access_token"
	IDTokenCookie      = "id_token"
	RefreshTokenCookie = "refresh_token"
	VerifierCookie     = "pkce_verifier"
	StateCookie        = "oauth_state"
)

const (
	pkceCookieMaxAge    = 600
	refreshCookieMaxAge = 30 * 24 * 60 * 60
)

// CredentialSource says where a request credential came from.
type CredentialSource string

const (
	SourceHeader CredentialSource = "header"
	SourceCookie CredentialSource = "cookie"
)

// Credential is the raw token presented by a request.
type Credential struct {
	Token  string
	Source CredentialSource
}

// CookieManager writes and clears the browser session. The session lives
// entirely in cookies; nothing is stored server side.
type CookieManager struct {
	SameSite http.SameSite
	// Secure overrides the per-request default when non-nil.
	Secure *bool
}

func (m *CookieManager) secure(defaultSecure bool) bool {
	if m.Secure != nil {
		return *m.Secure
	}
	return defaultSecure
}

func (m *CookieManager) sameSite() http.SameSite {
	if m.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return m.SameSite
}

// Issue sets one cookie per present token. Access and ID cookies live as long
// as the token itself; the refresh cookie uses a fixed 30 day window.
func (m *CookieManager) Issue(w http.ResponseWriter, tokens *services.TokenSet, defaultSecure bool) {
	if tokens == nil {
		return
	}
	secure := m.secure(defaultSecure)

	set := func(name, value string, maxAge int) {
		if value == "" {
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   secure,
			SameSite: m.sameSite(),
		})
	}

	set(AccessTokenCookie, tokens.AccessToken, tokens.ExpiresIn)
	set(IDTokenCookie, tokens.IDToken, tokens.ExpiresIn)
	set(RefreshTokenCookie, tokens.RefreshToken, refreshCookieMaxAge)
}

// Clear deletes every session cookie, including in-flight PKCE state.
func (m *CookieManager) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, IDTokenCookie, RefreshTokenCookie} {
		m.expire(w, name, m.sameSite())
	}
	m.ClearPKCE(w)
}

// ClearPKCE deletes the verifier and state cookies.
func (m *CookieManager) ClearPKCE(w http.ResponseWriter) {
	m.expire(w, VerifierCookie, http.SameSiteLaxMode)
	m.expire(w, StateCookie, http.SameSiteLaxMode)
}

func (m *CookieManager) expire(w http.ResponseWriter, name string, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure != nil && *m.Secure,
		SameSite: sameSite,
	})
}

// SetPKCE stores the handshake verifier and state for at most ten minutes.
// These cookies are always SameSite=Lax so they survive the provider redirect.
func (m *CookieManager) SetPKCE(w http.ResponseWriter, verifier, state string, secure bool) {
	for name, value := range map[string]string{VerifierCookie: verifier, StateCookie: state} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   pkceCookieMaxAge,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ExtractCredential returns the request credential. An Authorization header,
// when present, is the only source consulted; otherwise the id_token cookie is.
func ExtractCredential(r *http.Request) (Credential, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return Credential{}, identity.ErrMissingCredential
		}
		return Credential{Token: token, Source: SourceHeader}, nil
	}

	if c, err := r.Cookie(IDTokenCookie); err == nil && c.Value != "" {
		return Credential{Token: c.Value, Source: SourceCookie}, nil
	}

	return Credential{}, identity.ErrMissingCredential
}

// RequestIsSecure reports whether the request arrived over HTTPS, directly
// or through a TLS-terminating proxy.
func RequestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
