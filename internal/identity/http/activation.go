package http

import (
	"net/http"

	"github.com/caitlynl22/homeward-tails/internal/identity/service"
	"github.com/caitlynl22/homeward-tails/pkg/httpx"
)

type ActivationHandler struct {
	AccountService *service.AccountService
}

func (h *ActivationHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	account, err := h.AccountService.Deactivate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *ActivationHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	account, err := h.AccountService.Activate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newAccountResponse(account))
}
