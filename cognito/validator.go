package cognito

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/toshokan/gateway/internal/auth"
	"go.uber.org/zap"
)

// KeySource resolves a kid to a verification key.
type KeySource interface {
	Resolve(ctx context.Context, kid string) (*SigningKey, error)
}

// Config holds configuration for CognitoValidator
type Config struct {
	// Issuer is the user pool issuer URL every token must carry in iss.
	Issuer string
	// ClientID is the app client id; empty disables the audience gate.
	ClientID string
}

// CognitoValidator validates JWT tokens from AWS Cognito
type CognitoValidator struct {
	issuer   string
	clientID string
	keys     KeySource
	parser   *jwt.Parser
	logger   *zap.Logger
}

// NewCognitoValidator creates a new Cognito JWT validator
func NewCognitoValidator(config Config, keys KeySource, logger *zap.Logger) *CognitoValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CognitoValidator{
		issuer:   config.Issuer,
		clientID: config.ClientID,
		keys:     keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuer(config.Issuer),
		),
		logger: logger,
	}
}

// ValidateToken validates a JWT token of the expected use and returns parsed
// claims. Every failure is an *auth.AuthError.
func (v *CognitoValidator) ValidateToken(ctx context.Context, tokenString string, use TokenUse) (*ParsedClaims, error) {
	if tokenString == "" {
		return nil, auth.ErrMissingCredential
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("kid header not found")
		}

		key, err := v.keys.Resolve(ctx, kid)
		if err != nil {
			return nil, err
		}
		if key.Algorithm != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("key %s is published for %s", kid, key.Algorithm)
		}
		return key.PublicKey, nil
	})
	if err != nil {
		return nil, classifyParseError(err, claims)
	}

	// Audience gate depends on the token's own purpose; a mismatch with the
	// expected purpose is reported after it.
	switch TokenUse(claims.TokenUse) {
	case TokenUseID:
		if v.clientID != "" && !containsAudience(claims.Audience, v.clientID) {
			return nil, auth.NewAuthError(auth.KindInvalidAudience, fmt.Errorf("aud %v", []string(claims.Audience)))
		}
	case TokenUseAccess:
		if v.clientID != "" && claims.ClientID != v.clientID {
			return nil, auth.NewAuthError(auth.KindInvalidAudience, fmt.Errorf("client_id %q", claims.ClientID))
		}
	default:
		return nil, auth.NewAuthError(auth.KindWrongTokenUse, fmt.Errorf("token_use %q", claims.TokenUse))
	}

	if TokenUse(claims.TokenUse) != use {
		return nil, auth.NewAuthError(auth.KindWrongTokenUse, fmt.Errorf("expected %s token, got %s", use, claims.TokenUse))
	}

	if claims.Subject == "" {
		return nil, auth.NewAuthError(auth.KindMalformedClaims, errors.New("sub"))
	}
	// Cognito access tokens carry no email.
	if use == TokenUseID && claims.Email == "" {
		return nil, auth.NewAuthError(auth.KindMalformedClaims, errors.New("email"))
	}

	return parseClaims(claims), nil
}

// classifyParseError maps jwt parse failures onto credential error kinds.
// Key resolution failures, including an unreachable JWKS endpoint, are
// reported as invalid tokens. An absent iss is an issuer failure, not a
// malformed claim set.
func classifyParseError(err error, claims *Claims) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return auth.NewAuthError(auth.KindInvalidToken, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return auth.NewAuthError(auth.KindInvalidToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return auth.NewAuthError(auth.KindInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return auth.NewAuthError(auth.KindExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return auth.NewAuthError(auth.KindInvalidIssuer, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing) && claims.Issuer == "":
		return auth.NewAuthError(auth.KindInvalidIssuer, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return auth.NewAuthError(auth.KindMalformedClaims, err)
	default:
		return auth.NewAuthError(auth.KindInvalidToken, err)
	}
}

// containsAudience checks if the audience list contains the expected client ID
func containsAudience(audiences jwt.ClaimStrings, clientID string) bool {
	for _, aud := range audiences {
		if aud == clientID {
			return true
		}
	}
	return false
}
