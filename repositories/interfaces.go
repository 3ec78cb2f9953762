package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/toshokan/gateway/models"
)

// ErrAccountNotFound is returned when no active account matches the lookup.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository is the read-only account directory used to resolve
// authenticated identities to local accounts
type AccountRepository interface {
	// GetByID retrieves an account by its local id
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	// GetByCognitoSub retrieves an account by Cognito subject
	GetByCognitoSub(ctx context.Context, cognitoSub string) (*models.Account, error)
}
