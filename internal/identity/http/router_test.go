package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
	"github.com/caitlynl22/homeward-tails/internal/identity/service"
	"github.com/caitlynl22/homeward-tails/internal/identity/store/drivers/sqlite"
	"github.com/caitlynl22/homeward-tails/pkg/idx"
)

// newTestRouter wires a full router against an in-memory database and returns
// it together with the seeded organization id.
func newTestRouter(t *testing.T) (*Router, *sqlite.Store, string) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	org := domain.Organization{ID: idx.New().String(), Name: "Homeward Tails"}
	require.NoError(t, st.Organizations().CreateOrganization(context.Background(), org))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter("test", st, logger)
	router.AccountService = &service.AccountService{Store: st, DefaultInvitationLimit: 10}
	router.InviteService = &service.InviteService{Store: st, DefaultInvitationLimit: 10}
	router.StaffService = &service.StaffService{Store: st}
	router.AdminService = &service.AdminService{Store: st}
	router.ApplyRoutes()

	return router, st, org.ID
}

// doJSON issues a request through the full middleware chain and decodes the
// JSON response body into out when it is non-nil.
func doJSON(t *testing.T, router *Router, method, target, orgID string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if orgID != "" {
		req.Header.Set(OrganizationHeader, orgID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates an account", func(t *testing.T) {
		t.Parallel()
		router, _, orgID := newTestRouter(t)

		var account AccountResponse
		rec := doJSON(t, router, http.MethodPost, "/v1/accounts", orgID, RegisterRequest{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Email:        "Ada@Example.com",
			TOSAgreement: true,
		}, &account)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "ada@example.com", account.Email)
		require.Equal(t, "Ada Lovelace", account.FullName)
		require.Equal(t, "AL", account.Initials)
		require.True(t, account.Active)
		require.NotEmpty(t, account.PersonID)
	})

	t.Run("validation failures are 422 with field errors", func(t *testing.T) {
		t.Parallel()
		router, _, orgID := newTestRouter(t)

		var resp ErrorResponse
		rec := doJSON(t, router, http.MethodPost, "/v1/accounts", orgID,
			RegisterRequest{FirstName: "Ada"}, &resp)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, "validation_failed", resp.Error)
		require.Contains(t, resp.Fields["last_name"], "can't be blank")
		require.Contains(t, resp.Fields["email"], "can't be blank")
		require.Contains(t, resp.Fields["tos_agreement"], "must be accepted")
	})

	t.Run("missing organization header is 400", func(t *testing.T) {
		t.Parallel()
		router, _, _ := newTestRouter(t)

		var resp ErrorResponse
		rec := doJSON(t, router, http.MethodPost, "/v1/accounts", "", RegisterRequest{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Email:        "ada@example.com",
			TOSAgreement: true,
		}, &resp)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "missing_organization", resp.Error)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		t.Parallel()
		router, _, orgID := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/accounts", bytes.NewBufferString("{"))
		req.Header.Set(OrganizationHeader, orgID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email is 422 taken", func(t *testing.T) {
		t.Parallel()
		router, _, orgID := newTestRouter(t)

		body := RegisterRequest{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Email:        "ada@example.com",
			TOSAgreement: true,
		}
		rec := doJSON(t, router, http.MethodPost, "/v1/accounts", orgID, body, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		body.Email = "ADA@example.com"
		var resp ErrorResponse
		rec = doJSON(t, router, http.MethodPost, "/v1/accounts", orgID, body, &resp)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Contains(t, resp.Fields["email"], "has already been taken")
	})
}

func TestAccountEndpoints(t *testing.T) {
	t.Parallel()

	router, _, orgID := newTestRouter(t)

	var account AccountResponse
	rec := doJSON(t, router, http.MethodPost, "/v1/accounts", orgID, RegisterRequest{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		TOSAgreement: true,
	}, &account)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("get", func(t *testing.T) {
		var got AccountResponse
		rec := doJSON(t, router, http.MethodGet, "/v1/accounts/"+account.ID, orgID, nil, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, account.ID, got.ID)
	})

	t.Run("get from another tenant is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/v1/accounts/"+account.ID, idx.New().String(), nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update name", func(t *testing.T) {
		var got AccountResponse
		rec := doJSON(t, router, http.MethodPatch, "/v1/accounts/"+account.ID, orgID, UpdateAccountRequest{
			FirstName: "Augusta",
			LastName:  "King",
		}, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Augusta King", got.FullName)
	})

	t.Run("update cannot change the email", func(t *testing.T) {
		var resp ErrorResponse
		rec := doJSON(t, router, http.MethodPatch, "/v1/accounts/"+account.ID, orgID, UpdateAccountRequest{
			FirstName: "Augusta",
			LastName:  "King",
			Email:     "new@example.com",
		}, &resp)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Contains(t, resp.Fields["email"], "cannot be changed")
	})

	t.Run("deactivate and activate", func(t *testing.T) {
		var got AccountResponse
		rec := doJSON(t, router, http.MethodPost, "/v1/accounts/"+account.ID+"/deactivate", orgID, nil, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, got.Active)
		require.NotNil(t, got.DeactivatedAt)

		rec = doJSON(t, router, http.MethodPost, "/v1/accounts/"+account.ID+"/activate", orgID, nil, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, got.Active)
	})
}

func TestInviteEndpoints(t *testing.T) {
	t.Parallel()

	router, _, orgID := newTestRouter(t)

	var inviter AccountResponse
	rec := doJSON(t, router, http.MethodPost, "/v1/accounts", orgID, RegisterRequest{
		FirstName:    "Host",
		LastName:     "Admin",
		Email:        "host@example.com",
		TOSAgreement: true,
	}, &inviter)
	require.Equal(t, http.StatusCreated, rec.Code)

	var minted MintInviteResponse

	t.Run("mint", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/invites", orgID, MintInviteRequest{
			Email:       "guest@example.com",
			FirstName:   "Guest",
			LastName:    "User",
			InvitedByID: inviter.ID,
		}, &minted)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotEmpty(t, minted.Token)
		require.True(t, minted.Account.InvitePending)
	})

	t.Run("accept", func(t *testing.T) {
		var got AccountResponse
		rec := doJSON(t, router, http.MethodPost, "/v1/invites/accept", orgID,
			AcceptInviteRequest{Token: minted.Token}, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, minted.Account.ID, got.ID)
		require.False(t, got.InvitePending)
		require.NotNil(t, got.InvitationAcceptedAt)
	})

	t.Run("accept again is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/invites/accept", orgID,
			AcceptInviteRequest{Token: minted.Token}, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("accept without token is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/invites/accept", orgID,
			AcceptInviteRequest{}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStaffEndpoint(t *testing.T) {
	t.Parallel()

	router, _, orgID := newTestRouter(t)

	var account AccountResponse
	rec := doJSON(t, router, http.MethodPost, "/v1/accounts", orgID, RegisterRequest{
		FirstName:    "Staff",
		LastName:     "Member",
		Email:        "staff@example.com",
		TOSAgreement: true,
	}, &account)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/accounts/"+account.ID+"/roles", orgID,
		AssignRoleRequest{Role: domain.RoleAdmin}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var resp StaffResponse
	rec = doJSON(t, router, http.MethodGet, "/v1/staff", orgID, nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Staff, 1)
	require.Equal(t, account.ID, resp.Staff[0].ID)
}

func TestOrganizationEndpoint(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	var org OrganizationResponse
	rec := doJSON(t, router, http.MethodPost, "/v1/organizations", "",
		CreateOrganizationRequest{Name: "New Shelter"}, &org)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, org.ID)
	require.Equal(t, "New Shelter", org.Name)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router, st, _ := newTestRouter(t)

	t.Run("livez", func(t *testing.T) {
		var health HealthResponse
		rec := doJSON(t, router, http.MethodGet, "/livez", "", nil, &health)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", health.Status)
		require.Equal(t, "test", health.Version)
	})

	t.Run("readyz", func(t *testing.T) {
		var health HealthResponse
		rec := doJSON(t, router, http.MethodGet, "/readyz", "", nil, &health)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", health.Status)
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
	})

	t.Run("readyz degrades when the database is gone", func(t *testing.T) {
		require.NoError(t, st.Close())

		var health HealthResponse
		rec := doJSON(t, router, http.MethodGet, "/readyz", "", nil, &health)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "degraded", health.Status)
	})
}
