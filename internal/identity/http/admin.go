package http

import (
	"net/http"
	"time"

	"github.com/caitlynl22/homeward-tails/internal/identity/service"
	"github.com/caitlynl22/homeward-tails/pkg/httpx"
)

type AdminHandler struct {
	AdminService *service.AdminService
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *AdminHandler) HandleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req CreateOrganizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := h.AdminService.CreateOrganization(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		CreatedAt: org.CreatedAt,
	})
}

type AssignRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminHandler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	var req AssignRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "role is required")
		return
	}

	if err := h.AdminService.AssignRole(r.Context(), r.PathValue("id"), req.Role); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
