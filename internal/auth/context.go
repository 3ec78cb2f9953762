package auth

import (
	"time"

	"github.com/google/uuid"
)

// Context is the identity resolved for a single authenticated request.
// A request carries either no Context (anonymous, open route) or exactly one.
type Context struct {
	// Subject is the stable identity id issued by the identity provider.
	Subject string
	// UserID is the local account id, uuid.Nil while registration is pending.
	UserID      uuid.UUID
	Email       string
	DisplayName string
	Groups      []string
	CustomerIDs []uuid.UUID
	CreatedAt   time.Time

	// PendingRegistration marks a validated external identity that has no
	// local account yet. Such contexts never carry tenant scope.
	PendingRegistration bool
}

// IsBackoffice reports whether the context belongs to an operator.
func (c *Context) IsBackoffice() bool {
	return IsBackoffice(c)
}
