package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/toshokan/gateway/models"
	"github.com/toshokan/gateway/repositories"
	"go.uber.org/zap"
)

const accountColumns = `id, cognito_sub, email, roles, customer_ids, created_at`

// AccountRepository implements repositories.AccountRepository on the users table
type AccountRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB, logger *zap.Logger) repositories.AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an active account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM users
		WHERE id = $1 AND archived_at IS NULL`

	account, err := r.scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", id, err)
	}
	return account, nil
}

// GetByCognitoSub retrieves an active account by Cognito subject
func (r *AccountRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM users
		WHERE cognito_sub = $1 AND archived_at IS NULL`

	account, err := r.scanAccount(r.db.QueryRowContext(ctx, query, cognitoSub))
	if err != nil {
		return nil, fmt.Errorf("get account for cognito_sub: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var (
		sub         sql.NullString
		customerIDs []string
	)

	err := row.Scan(
		&account.ID,
		&sub,
		&account.Email,
		pq.Array(&account.Roles),
		pq.Array(&customerIDs),
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrAccountNotFound
		}
		return nil, err
	}

	account.CognitoSub = sub.String
	account.CustomerIDs = make([]uuid.UUID, 0, len(customerIDs))
	for _, raw := range customerIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			r.logger.Warn("skipping malformed customer id",
				zap.String("account_id", account.ID.String()), zap.String("customer_id", raw))
			continue
		}
		account.CustomerIDs = append(account.CustomerIDs, id)
	}
	if account.Roles == nil {
		account.Roles = []string{}
	}

	return account, nil
}
