package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	identity "github.com/toshokan/gateway/internal/auth"
	"github.com/toshokan/gateway/middleware"
	"github.com/toshokan/gateway/utils"
)

// CurrentUserResponse is the response body for GET <prefix>/me
type CurrentUserResponse struct {
	UserID              *uuid.UUID  `json:"user_id"`
	Subject             string      `json:"subject"`
	Email               string      `json:"email"`
	DisplayName         string      `json:"display_name,omitempty"`
	Groups              []string    `json:"groups"`
	CustomerIDs         []uuid.UUID `json:"customer_ids"`
	IsBackoffice        bool        `json:"is_backoffice"`
	PendingRegistration bool        `json:"pending_registration"`
	CreatedAt           time.Time   `json:"created_at"`
}

// GetCurrentUserHandler returns the identity resolved for the request
func GetCurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac := middleware.GetAuthContext(r.Context())
		if ac == nil {
			_ = utils.WriteUnauthorized(w, "")
			return
		}
		_ = utils.WriteOK(w, newCurrentUserResponse(ac))
	}
}

func newCurrentUserResponse(ac *identity.Context) CurrentUserResponse {
	resp := CurrentUserResponse{
		Subject:             ac.Subject,
		Email:               ac.Email,
		DisplayName:         ac.DisplayName,
		Groups:              ac.Groups,
		CustomerIDs:         ac.CustomerIDs,
		IsBackoffice:        ac.IsBackoffice(),
		PendingRegistration: ac.PendingRegistration,
		CreatedAt:           ac.CreatedAt,
	}
	if !ac.PendingRegistration && ac.UserID != uuid.Nil {
		id := ac.UserID
		resp.UserID = &id
	}
	if resp.Groups == nil {
		resp.Groups = []string{}
	}
	if resp.CustomerIDs == nil {
		resp.CustomerIDs = []uuid.UUID{}
	}
	return resp
}
