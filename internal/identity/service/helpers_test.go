package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
	"github.com/caitlynl22/homeward-tails/internal/identity/store/drivers/sqlite"
	"github.com/caitlynl22/homeward-tails/internal/identity/tenant"
	"github.com/caitlynl22/homeward-tails/pkg/idx"
)

// newTestStore spins up an in-memory database with migrations applied.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// newTestOrg creates an organization and returns a context bound to it.
func newTestOrg(t *testing.T, st *sqlite.Store, name string) (context.Context, string) {
	t.Helper()

	org := domain.Organization{ID: idx.New().String(), Name: name}
	require.NoError(t, st.Organizations().CreateOrganization(context.Background(), org))

	return tenant.WithOrganization(context.Background(), org.ID), org.ID
}

// registerAccount registers a valid account, failing the test on any error.
func registerAccount(t *testing.T, svc *AccountService, ctx context.Context, email string) domain.Account {
	t.Helper()

	account, err := svc.Register(ctx, RegisterParams{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		TOSAgreement: true,
	})
	require.NoError(t, err)
	return account
}
