package cognito

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenUse is the purpose a Cognito token was issued for.
type TokenUse string

const (
	TokenUseID     TokenUse = "id"
	TokenUseAccess TokenUse = "access"
)

// Claims represents the claims Cognito puts in ID and access tokens
type Claims struct {
	jwt.RegisteredClaims
	Email             string   `json:"email"`
	EmailVerified     bool     `json:"email_verified"`
	TokenUse          string   `json:"token_use"`
	ClientID          string   `json:"client_id"`
	AuthTime          int64    `json:"auth_time"`
	Name              string   `json:"name"`
	PreferredUsername string   `json:"preferred_username"`
	CognitoUsername   string   `json:"cognito:username"`
	Username          string   `json:"username"`
	Groups            []string `json:"cognito:groups"`
}

// ParsedClaims represents parsed and validated claims
type ParsedClaims struct {
	Subject     string
	Email       string
	DisplayName string
	Username    string
	Groups      []string
	TokenUse    TokenUse
	ClientID    string
	IssuedAt    time.Time
	AuthTime    time.Time
	ExpiresAt   time.Time
}

// CreatedAt is the effective creation time of the identity: auth_time, else
// iat, else now.
func (p *ParsedClaims) CreatedAt() time.Time {
	switch {
	case !p.AuthTime.IsZero():
		return p.AuthTime
	case !p.IssuedAt.IsZero():
		return p.IssuedAt
	default:
		return time.Now().UTC()
	}
}

// username returns the provider username; ID tokens use cognito:username,
// access tokens use username.
func (c *Claims) username() string {
	if c.CognitoUsername != "" {
		return c.CognitoUsername
	}
	return c.Username
}

func parseClaims(c *Claims) *ParsedClaims {
	parsed := &ParsedClaims{
		Subject:  c.Subject,
		Email:    c.Email,
		Username: c.username(),
		TokenUse: TokenUse(c.TokenUse),
		ClientID: c.ClientID,
		Groups:   []string{},
	}

	for _, name := range []string{c.Name, c.PreferredUsername, parsed.Username} {
		if name != "" {
			parsed.DisplayName = name
			break
		}
	}

	seen := make(map[string]struct{}, len(c.Groups))
	for _, g := range c.Groups {
		if _, dup := seen[g]; g == "" || dup {
			continue
		}
		seen[g] = struct{}{}
		parsed.Groups = append(parsed.Groups, g)
	}

	if c.IssuedAt != nil {
		parsed.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		parsed.ExpiresAt = c.ExpiresAt.Time
	}
	if c.AuthTime > 0 {
		parsed.AuthTime = time.Unix(c.AuthTime, 0).UTC()
	}

	return parsed
}
