// Package memory provides an in-process account directory for development
// and tests. It is selected when no DATABASE_URL is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/toshokan/gateway/models"
	"github.com/toshokan/gateway/repositories"
)

// AccountRepository is a read-mostly map-backed account directory
type AccountRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*models.Account
	bySub map[string]*models.Account
}

// NewAccountRepository creates a directory holding the given accounts
func NewAccountRepository(accounts ...*models.Account) *AccountRepository {
	r := &AccountRepository{
		byID:  make(map[uuid.UUID]*models.Account),
		bySub: make(map[string]*models.Account),
	}
	for _, a := range accounts {
		r.Put(a)
	}
	return r
}

// LoadSeedFile reads a JSON array of accounts from path
func LoadSeedFile(path string) (*AccountRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var accounts []*models.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	for i, a := range accounts {
		if a == nil || a.ID == uuid.Nil {
			return nil, fmt.Errorf("seed account %d: id is required", i)
		}
	}

	return NewAccountRepository(accounts...), nil
}

// Put inserts or replaces an account
func (r *AccountRepository) Put(account *models.Account) {
	stored := copyAccount(account)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byID[stored.ID]; ok && prev.CognitoSub != "" {
		delete(r.bySub, prev.CognitoSub)
	}
	r.byID[stored.ID] = stored
	if stored.CognitoSub != "" {
		r.bySub[stored.CognitoSub] = stored
	}
}

// GetByID retrieves an active account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok || account.IsArchived() {
		return nil, repositories.ErrAccountNotFound
	}
	return copyAccount(account), nil
}

// GetByCognitoSub retrieves an active account by Cognito subject
func (r *AccountRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (*models.Account, error) {
	if cognitoSub == "" {
		return nil, repositories.ErrAccountNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.bySub[cognitoSub]
	if !ok || account.IsArchived() {
		return nil, repositories.ErrAccountNotFound
	}
	return copyAccount(account), nil
}

// Len returns the number of stored accounts, archived included
func (r *AccountRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	c.Roles = append([]string{}, a.Roles...)
	c.CustomerIDs = append([]uuid.UUID{}, a.CustomerIDs...)
	return &c
}
