package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsBackoffice(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		want   bool
	}{
		{name: "no groups", groups: nil, want: false},
		{name: "ordinary groups", groups: []string{"owner", "member"}, want: false},
		{name: "backoffice group", groups: []string{"member", "backoffice"}, want: true},
		{name: "admin group", groups: []string{"admin"}, want: true},
		{name: "case sensitive", groups: []string{"Admin"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Context{Subject: "sub", Groups: tt.groups}
			assert.Equal(t, tt.want, IsBackoffice(c))
			assert.Equal(t, tt.want, c.IsBackoffice())
		})
	}

	t.Run("nil context", func(t *testing.T) {
		assert.False(t, IsBackoffice(nil))
	})
}

func TestHasCustomerAccess(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	t.Run("member of customer", func(t *testing.T) {
		c := &Context{UserID: uuid.New(), CustomerIDs: []uuid.UUID{own}}
		assert.True(t, HasCustomerAccess(c, own))
		assert.False(t, HasCustomerAccess(c, other))
	})

	t.Run("backoffice sees every customer", func(t *testing.T) {
		c := &Context{UserID: uuid.New(), Groups: []string{GroupBackoffice}}
		assert.True(t, HasCustomerAccess(c, other))
	})

	t.Run("pending registration has no tenant scope", func(t *testing.T) {
		c := &Context{Subject: "sub", PendingRegistration: true, CustomerIDs: []uuid.UUID{own}}
		assert.False(t, HasCustomerAccess(c, own))
	})

	t.Run("nil customer id never matches", func(t *testing.T) {
		c := &Context{UserID: uuid.New(), CustomerIDs: []uuid.UUID{uuid.Nil}}
		assert.False(t, HasCustomerAccess(c, uuid.Nil))
	})

	t.Run("nil context", func(t *testing.T) {
		assert.False(t, HasCustomerAccess(nil, own))
	})
}
