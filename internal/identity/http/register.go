package http

import (
	"net/http"

	"github.com/caitlynl22/homeward-tails/internal/identity/service"
	"github.com/caitlynl22/homeward-tails/pkg/httpx"
)

type RegisterHandler struct {
	AccountService *service.AccountService
}

type RegisterRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	TOSAgreement bool   `json:"tos_agreement"`
	PersonID     string `json:"person_id,omitempty"`
	Provider     string `json:"provider,omitempty"`
	UID          string `json:"uid,omitempty"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.AccountService.Register(r.Context(), service.RegisterParams{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		TOSAgreement: req.TOSAgreement,
		PersonID:     req.PersonID,
		Provider:     req.Provider,
		UID:          req.UID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newAccountResponse(account))
}
