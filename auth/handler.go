package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/toshokan/gateway/internal/observability"
	"github.com/toshokan/gateway/services"
	"github.com/toshokan/gateway/utils"
	"go.uber.org/zap"
)

// Terminal states of one login attempt.
const (
	LoginSessionIssued = "session_issued"
	LoginFailed        = "failed"
)

// TokenClient talks to the identity provider's OAuth2 endpoints.
type TokenClient interface {
	AuthCodeURL(state, verifier, redirectURI string) string
	LogoutURL(logoutURI string) string
	ExchangeCode(ctx context.Context, code, redirectURI, verifier string) (*services.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenSet, error)
}

// HandlerConfig holds the redirect targets and upstream timeout of the flow.
type HandlerConfig struct {
	LoginRedirectURI  string
	LogoutRedirectURI string
	UpstreamTimeout   time.Duration
}

// callbackQuery is the provider redirect back to /login_done.
type callbackQuery struct {
	Code  string `validate:"required,max=2048"`
	State string `validate:"required,max=512"`
}

// Handler runs the authorization code + PKCE login flow, logout and
// user initiated token refresh.
type Handler struct {
	cfg     HandlerConfig
	client  TokenClient
	cookies *CookieManager
	logger  *zap.Logger
	metrics *observability.GatewayMetrics
}

// NewHandler creates a new auth flow handler
func NewHandler(cfg HandlerConfig, client TokenClient, cookies *CookieManager, logger *zap.Logger, metrics *observability.GatewayMetrics) *Handler {
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 10 * time.Second
	}
	if cookies == nil {
		cookies = &CookieManager{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:     cfg,
		client:  client,
		cookies: cookies,
		logger:  logger,
		metrics: metrics,
	}
}

// HandleLogin starts a login attempt: it stores a fresh verifier and state in
// short-lived cookies and redirects to the hosted UI.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	verifier := NewCodeVerifier()
	state := NewState()

	h.cookies.SetPKCE(w, verifier, state, RequestIsSecure(r))

	h.logger.Debug("login started", zap.String("request_id", chimw.GetReqID(r.Context())))
	http.Redirect(w, r, h.client.AuthCodeURL(state, verifier, h.cfg.LoginRedirectURI), http.StatusTemporaryRedirect)
}

// HandleCallback completes a login attempt. Cookies are written only after
// the code exchange has fully succeeded.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	requestID := chimw.GetReqID(r.Context())
	q := r.URL.Query()

	query := callbackQuery{Code: q.Get("code"), State: q.Get("state")}
	if err := utils.ValidateStruct(query); err != nil {
		h.fail(w, r, services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidCallback.Message, err))
		return
	}

	if providerErr := q.Get("error"); providerErr != "" {
		h.fail(w, r, services.NewDomainError(services.ErrorTypeUnauthorized, services.ErrLoginDenied.Message, nil).
			WithDetail("error", providerErr))
		return
	}

	stateCookie, err := r.Cookie(StateCookie)
	if err != nil || stateCookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(query.State)) != 1 {
		h.fail(w, r, services.ErrStateMismatch)
		return
	}

	verifierCookie, err := r.Cookie(VerifierCookie)
	if err != nil || verifierCookie.Value == "" {
		h.fail(w, r, services.ErrMissingVerifier)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.UpstreamTimeout)
	defer cancel()

	tokens, err := h.client.ExchangeCode(ctx, query.Code, h.cfg.LoginRedirectURI, verifierCookie.Value)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.Issue(w, tokens, RequestIsSecure(r))
	h.cookies.ClearPKCE(w)
	h.metrics.RecordLogin(LoginSessionIssued)

	h.logger.Info("login completed",
		zap.String("request_id", requestID),
		zap.String("state", LoginSessionIssued),
		zap.Int("expires_in", tokens.ExpiresIn))

	http.Redirect(w, r, withDoneFlag(h.cfg.LoginRedirectURI), http.StatusTemporaryRedirect)
}

// fail ends a login attempt and writes the error according to its type.
// A malformed callback leaves the current session alone; every other
// failure clears all session cookies.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.RecordLogin(LoginFailed)

	fields := []zap.Field{
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("state", LoginFailed),
		zap.String("error_type", string(services.GetErrorType(err))),
		zap.Error(err),
	}

	if services.IsValidationError(err) {
		validation := utils.GetValidationFields(err)
		h.logger.Info("invalid login callback", append(fields, zap.Any("fields", validation))...)
		_ = utils.WriteBadRequest(w, services.ErrInvalidCallback.Message, validation)
		return
	}

	h.cookies.Clear(w)

	switch {
	case services.IsUnauthorizedError(err):
		h.logger.Warn("login rejected", fields...)
		_ = utils.WriteUnauthorized(w, "")
	case services.IsExternalError(err):
		h.logger.Error("token exchange failed", fields...)
		_ = utils.WriteBadGateway(w, "")
	default:
		h.logger.Error("login failed", fields...)
		_ = utils.WriteInternalServerError(w, "")
	}
}

// HandleLogout clears the session unconditionally and redirects to the
// provider logout endpoint.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	http.Redirect(w, r, h.client.LogoutURL(h.cfg.LogoutRedirectURI), http.StatusTemporaryRedirect)
}

// HandleRefresh exchanges the refresh_token cookie for a new token set.
// A missing or rejected refresh token ends the session.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(RefreshTokenCookie)
	if err != nil || c.Value == "" {
		h.refreshFailed(w, r, services.ErrMissingRefresh)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.UpstreamTimeout)
	defer cancel()

	tokens, err := h.client.Refresh(ctx, c.Value)
	if err != nil {
		h.refreshFailed(w, r, err)
		return
	}

	h.cookies.Issue(w, tokens, RequestIsSecure(r))
	h.metrics.RecordRefresh(true)
	h.logger.Info("tokens refreshed", zap.String("request_id", chimw.GetReqID(r.Context())))

	_ = utils.WriteOK(w, map[string]string{"status": "tokens_refreshed"})
}

func (h *Handler) refreshFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.RecordRefresh(false)
	h.cookies.Clear(w)
	h.logger.Warn("token refresh failed",
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("error_type", string(services.GetErrorType(err))),
		zap.Any("details", services.GetErrorDetails(err)),
		zap.Error(err))
	_ = utils.WriteUnauthorized(w, "")
}

func withDoneFlag(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target + "?done=1"
	}
	q := u.Query()
	q.Set("done", "1")
	u.RawQuery = q.Encode()
	return u.String()
}
