package http

import (
	"errors"
	"net/http"

	"github.com/caitlynl22/homeward-tails/internal/identity/service"
	"github.com/caitlynl22/homeward-tails/pkg/httpx"
)

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error            string              `json:"error"`
	ErrorDescription string              `json:"error_description,omitempty"`
	Fields           map[string][]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, code int, err, description string) {
	httpx.WriteJSON(w, code, ErrorResponse{
		Error:            err,
		ErrorDescription: description,
	})
}

// writeServiceError maps service-layer failures onto HTTP statuses.
// Validation failures carry their per-field messages; everything the mapping
// doesn't recognise is a 500 with no detail leaked.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:            "validation_failed",
			ErrorDescription: "One or more fields are invalid",
			Fields:           verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNoOrganization):
		writeError(w, http.StatusBadRequest, "missing_organization",
			"An organization must be supplied via the X-Organization-ID header")
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrInviterNotFound),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrInviteNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, service.ErrInviteLimitReached):
		writeError(w, http.StatusForbidden, "invite_limit_reached", err.Error())
	case errors.Is(err, service.ErrAccountDeactivated):
		// Distinguishable from invalid_credentials so UI copy can say why.
		writeError(w, http.StatusForbidden, "account_deactivated",
			"This account has been deactivated")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials",
			"Incorrect email or password")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", "")
	}
}
