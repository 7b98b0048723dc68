package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
	"github.com/caitlynl22/homeward-tails/internal/identity/service"
	"github.com/caitlynl22/homeward-tails/pkg/httpx"
)

// AccountResponse is the wire shape for an account. Invitation counters and
// credential material never leave the service.
type AccountResponse struct {
	ID                   string     `json:"id"`
	OrganizationID       string     `json:"organization_id"`
	PersonID             string     `json:"person_id"`
	Email                string     `json:"email"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	FullName             string     `json:"full_name"`
	Initials             string     `json:"initials"`
	Active               bool       `json:"active"`
	DeactivatedAt        *time.Time `json:"deactivated_at,omitempty"`
	ExternalIdentity     bool       `json:"external_identity"`
	InvitePending        bool       `json:"invite_pending,omitempty"`
	InvitationSentAt     *time.Time `json:"invitation_sent_at,omitempty"`
	InvitationAcceptedAt *time.Time `json:"invitation_accepted_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func newAccountResponse(a domain.Account) AccountResponse {
	full, _ := a.FullName(domain.NameDefault)
	return AccountResponse{
		ID:                   a.ID,
		OrganizationID:       a.OrganizationID,
		PersonID:             a.PersonID,
		Email:                a.Email,
		FirstName:            a.FirstName,
		LastName:             a.LastName,
		FullName:             full,
		Initials:             a.NameInitials(),
		Active:               a.Active(),
		DeactivatedAt:        a.DeactivatedAt,
		ExternalIdentity:     a.ExternalIdentity(),
		InvitePending:        a.InvitePending(),
		InvitationSentAt:     a.InvitationSentAt,
		InvitationAcceptedAt: a.InvitationAcceptedAt,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// decodeJSON reads a JSON request body into dst, answering 400 itself when
// the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return false
	}
	return true
}

type AccountHandler struct {
	AccountService *service.AccountService
}

func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	account, err := h.AccountService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newAccountResponse(account))
}

type UpdateAccountRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.AccountService.UpdateProfile(r.Context(), r.PathValue("id"), service.UpdateProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newAccountResponse(account))
}
