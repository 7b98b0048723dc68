package http

import (
	"net/http"

	"github.com/caitlynl22/homeward-tails/internal/identity/service"
	"github.com/caitlynl22/homeward-tails/pkg/httpx"
)

type InviteHandler struct {
	InviteService *service.InviteService
}

type MintInviteRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	InvitedByID string `json:"invited_by_id"`
}

type MintInviteResponse struct {
	Account AccountResponse `json:"account"`
	// Token is the raw invitation token, returned once for delivery.
	Token string `json:"token"`
}

func (h *InviteHandler) HandleMint(w http.ResponseWriter, r *http.Request) {
	var req MintInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, token, err := h.InviteService.Invite(r.Context(), service.InviteParams{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		InvitedByID: req.InvitedByID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, MintInviteResponse{
		Account: newAccountResponse(account),
		Token:   token,
	})
}

type AcceptInviteRequest struct {
	Token string `json:"token"`
}

func (h *InviteHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req AcceptInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	account, err := h.InviteService.Accept(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newAccountResponse(account))
}
