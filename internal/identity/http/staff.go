package http

import (
	"net/http"

	"github.com/caitlynl22/homeward-tails/internal/identity/service"
	"github.com/caitlynl22/homeward-tails/pkg/httpx"
)

type StaffHandler struct {
	StaffService *service.StaffService
}

type StaffResponse struct {
	Staff []AccountResponse `json:"staff"`
}

func (h *StaffHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.StaffService.ListStaff(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := StaffResponse{Staff: make([]AccountResponse, len(accounts))}
	for i, a := range accounts {
		resp.Staff[i] = newAccountResponse(a)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
