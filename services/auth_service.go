package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/toshokan/gateway/config"
	"github.com/toshokan/gateway/utils"
	"golang.org/x/oauth2"
)

// LoginScopes are requested on every hosted UI login.
var LoginScopes = []string{"openid", "email", "profile"}

// TokenSet is the token endpoint response handed to the browser as cookies.
type TokenSet struct {
	AccessToken  string `validate:"required"`
	IDToken      string `validate:"required"`
	RefreshToken string
	ExpiresIn    int `validate:"gte=0"`
}

// CognitoTokenClient talks to the Cognito hosted UI OAuth2 endpoints
type CognitoTokenClient struct {
	domain     string
	clientID   string
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewCognitoTokenClient creates a new token client. A configured client
// secret is sent with HTTP basic auth, as Cognito expects for confidential
// app clients.
func NewCognitoTokenClient(cfg config.CognitoConfig) *CognitoTokenClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	domain := strings.TrimSuffix(cfg.Domain, "/")
	authStyle := oauth2.AuthStyleInParams
	if cfg.ClientSecret != "" {
		authStyle = oauth2.AuthStyleInHeader
	}

	return &CognitoTokenClient{
		domain:   domain,
		clientID: cfg.ClientID,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   domain + "/oauth2/authorize",
				TokenURL:  domain + "/oauth2/token",
				AuthStyle: authStyle,
			},
			Scopes: LoginScopes,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AuthCodeURL builds the hosted UI authorization URL for a PKCE login.
func (c *CognitoTokenClient) AuthCodeURL(state, verifier, redirectURI string) string {
	return c.oauth.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("redirect_uri", redirectURI),
	)
}

// LogoutURL builds the hosted UI logout URL.
func (c *CognitoTokenClient) LogoutURL(logoutURI string) string {
	q := url.Values{
		"client_id":  {c.clientID},
		"logout_uri": {logoutURI},
	}
	return c.domain + "/logout?" + q.Encode()
}

// ExchangeCode exchanges an authorization code and its PKCE verifier for tokens
func (c *CognitoTokenClient) ExchangeCode(ctx context.Context, code, redirectURI, verifier string) (*TokenSet, error) {
	tok, err := c.oauth.Exchange(c.withClient(ctx), code,
		oauth2.VerifierOption(verifier),
		oauth2.SetAuthURLParam("redirect_uri", redirectURI),
	)
	if err != nil {
		return nil, upstreamError("authorization code exchange failed", err)
	}
	return toTokenSet(tok)
}

// Refresh performs a refresh_token grant. The returned set keeps the presented
// refresh token when the provider does not rotate it.
func (c *CognitoTokenClient) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	src := c.oauth.TokenSource(c.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, upstreamError("token refresh failed", err)
	}
	return toTokenSet(tok)
}

func (c *CognitoTokenClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func toTokenSet(tok *oauth2.Token) (*TokenSet, error) {
	idToken, _ := tok.Extra("id_token").(string)

	expiresIn := int(tok.ExpiresIn)
	if expiresIn == 0 && !tok.Expiry.IsZero() {
		expiresIn = int(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	if expiresIn < 0 {
		expiresIn = 0
	}

	set := &TokenSet{
		AccessToken:  tok.AccessToken,
		IDToken:      idToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn,
	}
	if err := utils.ValidateStruct(set); err != nil {
		return nil, NewDomainError(ErrorTypeExternal, "malformed token response", err).
			WithDetail("fields", utils.GetValidationFields(err))
	}
	return set, nil
}

// upstreamError wraps token endpoint failures. The provider error code is kept
// as a detail for logging; it is never sent to clients.
func upstreamError(message string, err error) *DomainError {
	derr := NewDomainError(ErrorTypeExternal, message, err)
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		if rErr.ErrorCode != "" {
			derr.WithDetail("error_code", rErr.ErrorCode)
		}
		if rErr.Response != nil {
			derr.WithDetail("status", rErr.Response.StatusCode)
		}
	}
	return derr
}

// String implements fmt.Stringer without exposing token values.
func (t *TokenSet) String() string {
	return fmt.Sprintf("TokenSet{expires_in=%d refresh=%t}", t.ExpiresIn, t.RefreshToken != "")
}
