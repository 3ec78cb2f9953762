package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a local user record linked to a Cognito identity. The gateway
// only reads accounts; it never creates them.
type Account struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	CognitoSub  string      `json:"cognito_sub" db:"cognito_sub"`
	Email       string      `json:"email" db:"email"`
	Roles       []string    `json:"roles" db:"roles"`
	CustomerIDs []uuid.UUID `json:"customer_ids" db:"customer_ids"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	ArchivedAt  *time.Time  `json:"archived_at,omitempty" db:"archived_at"`
}

// TableName returns the table name for the Account model
func (Account) TableName() string {
	return "users"
}

// IsArchived returns true once the account has been archived
func (a *Account) IsArchived() bool {
	return a.ArchivedAt != nil
}
