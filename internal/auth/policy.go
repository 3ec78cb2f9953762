package auth

import "github.com/google/uuid"

const (
	GroupBackoffice = "backoffice"
	GroupAdmin      = "admin"
)

// BackofficeGroups are the privileged groups granting operator access.
var BackofficeGroups = map[string]struct{}{
	GroupBackoffice: {},
	GroupAdmin:      {},
}

// IsBackoffice reports whether any of the context's groups is privileged.
func IsBackoffice(c *Context) bool {
	if c == nil {
		return false
	}
	for _, g := range c.Groups {
		if _, ok := BackofficeGroups[g]; ok {
			return true
		}
	}
	return false
}

// HasCustomerAccess reports whether the context may act on the given customer.
// Operators see every customer; a pending registration sees none.
func HasCustomerAccess(c *Context, customerID uuid.UUID) bool {
	if c == nil {
		return false
	}
	if IsBackoffice(c) {
		return true
	}
	if c.PendingRegistration || customerID == uuid.Nil {
		return false
	}
	for _, id := range c.CustomerIDs {
		if id == customerID {
			return true
		}
	}
	return false
}
