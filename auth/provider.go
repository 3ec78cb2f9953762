package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/toshokan/gateway/cognito"
	identity "github.com/toshokan/gateway/internal/auth"
	"github.com/toshokan/gateway/models"
	"github.com/toshokan/gateway/repositories"
	"go.uber.org/zap"
)

// GroupsHeader carries caller groups for the header provider.
const GroupsHeader = "X-User-Groups"

// Provider resolves the identity of a request. Credential failures are
// *identity.AuthError values; any other error is an internal failure.
type Provider interface {
	Authenticate(r *http.Request) (*identity.Context, error)
}

// TokenValidator validates a Cognito token of the given use.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string, use cognito.TokenUse) (*cognito.ParsedClaims, error)
}

// HeaderAuthProvider trusts the bearer value as a local account id.
// It exists for tests and local development only.
type HeaderAuthProvider struct {
	accounts repositories.AccountRepository
	logger   *zap.Logger
}

// NewHeaderAuthProvider creates a HeaderAuthProvider
func NewHeaderAuthProvider(accounts repositories.AccountRepository, logger *zap.Logger) *HeaderAuthProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeaderAuthProvider{accounts: accounts, logger: logger}
}

// Authenticate implements Provider
func (p *HeaderAuthProvider) Authenticate(r *http.Request) (*identity.Context, error) {
	cred, err := ExtractCredential(r)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(cred.Token)
	if err != nil || id == uuid.Nil {
		return nil, identity.NewAuthError(identity.KindInvalidToken, errors.New("bearer value is not an account id"))
	}

	account, err := p.accounts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, identity.NewAuthError(identity.KindInvalidToken, err)
		}
		return nil, fmt.Errorf("account lookup: %w", err)
	}

	groups := splitGroups(r.Header.Get(GroupsHeader))
	if len(groups) == 0 {
		groups = append([]string{}, account.Roles...)
	}

	return &identity.Context{
		Subject:     account.ID.String(),
		UserID:      account.ID,
		Email:       account.Email,
		Groups:      groups,
		CustomerIDs: account.CustomerIDs,
		CreatedAt:   account.CreatedAt,
	}, nil
}

// CognitoAuthProvider validates Cognito tokens and links them to local
// accounts. A valid identity without an account is marked as pending
// registration and carries no tenant scope.
type CognitoAuthProvider struct {
	validator TokenValidator
	accounts  repositories.AccountRepository
	bearerUse cognito.TokenUse
	logger    *zap.Logger
}

// NewCognitoAuthProvider creates a CognitoAuthProvider. bearerUse is the
// token_use required of Authorization header credentials; cookie
// credentials are always ID tokens.
func NewCognitoAuthProvider(validator TokenValidator, accounts repositories.AccountRepository, bearerUse cognito.TokenUse, logger *zap.Logger) *CognitoAuthProvider {
	if bearerUse == "" {
		bearerUse = cognito.TokenUseAccess
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CognitoAuthProvider{
		validator: validator,
		accounts:  accounts,
		bearerUse: bearerUse,
		logger:    logger,
	}
}

// Authenticate implements Provider
func (p *CognitoAuthProvider) Authenticate(r *http.Request) (*identity.Context, error) {
	cred, err := ExtractCredential(r)
	if err != nil {
		return nil, err
	}

	use := p.bearerUse
	if cred.Source == SourceCookie {
		use = cognito.TokenUseID
	}

	claims, err := p.validator.ValidateToken(r.Context(), cred.Token, use)
	if err != nil {
		return nil, err
	}

	ctx := &identity.Context{
		Subject:     claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Groups:      claims.Groups,
		CreatedAt:   claims.CreatedAt(),
	}

	account, err := p.accounts.GetByCognitoSub(r.Context(), claims.Subject)
	switch {
	case errors.Is(err, repositories.ErrAccountNotFound):
		ctx.PendingRegistration = true
		ctx.UserID = uuid.Nil
		p.logger.Debug("identity has no local account", zap.String("sub", claims.Subject))
		return ctx, nil
	case err != nil:
		return nil, fmt.Errorf("account lookup: %w", err)
	}

	applyAccount(ctx, account)
	return ctx, nil
}

func applyAccount(ctx *identity.Context, account *models.Account) {
	ctx.UserID = account.ID
	ctx.CustomerIDs = account.CustomerIDs
	if len(account.Roles) > 0 {
		ctx.Groups = append([]string{}, account.Roles...)
	}
	if ctx.Email == "" {
		ctx.Email = account.Email
	}
}

func splitGroups(header string) []string {
	var groups []string
	for _, g := range strings.Split(header, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}
