package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
)

func TestListStaff(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	accounts := &AccountService{Store: st}
	admin := &AdminService{Store: st}
	svc := &StaffService{Store: st}
	ctx, _ := newTestOrg(t, st, "Homeward Tails")

	regular := registerAccount(t, accounts, ctx, "regular@example.com")
	adminAcct := registerAccount(t, accounts, ctx, "admin@example.com")
	superAcct := registerAccount(t, accounts, ctx, "super@example.com")

	require.NoError(t, admin.AssignRole(ctx, adminAcct.ID, domain.RoleAdmin))
	require.NoError(t, admin.AssignRole(ctx, superAcct.ID, domain.RoleSuperAdmin))

	t.Run("returns only role holders", func(t *testing.T) {
		staff, err := svc.ListStaff(ctx)
		require.NoError(t, err)
		require.Len(t, staff, 2)

		ids := []string{staff[0].ID, staff[1].ID}
		require.Contains(t, ids, adminAcct.ID)
		require.Contains(t, ids, superAcct.ID)
		require.NotContains(t, ids, regular.ID)
	})

	t.Run("role assignment is idempotent", func(t *testing.T) {
		require.NoError(t, admin.AssignRole(ctx, adminAcct.ID, domain.RoleAdmin))

		staff, err := svc.ListStaff(ctx)
		require.NoError(t, err)
		require.Len(t, staff, 2)
	})

	t.Run("scoped to the tenant", func(t *testing.T) {
		otherCtx, _ := newTestOrg(t, st, "Other Shelter")
		otherAdmin := registerAccount(t, accounts, otherCtx, "admin@example.com")
		require.NoError(t, admin.AssignRole(otherCtx, otherAdmin.ID, domain.RoleAdmin))

		staff, err := svc.ListStaff(otherCtx)
		require.NoError(t, err)
		require.Len(t, staff, 1)
		require.Equal(t, otherAdmin.ID, staff[0].ID)
	})
}

func TestAdminService(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	accounts := &AccountService{Store: st}
	svc := &AdminService{Store: st}

	t.Run("creates an organization", func(t *testing.T) {
		org, err := svc.CreateOrganization(context.Background(), "Homeward Tails")
		require.NoError(t, err)
		require.NotEmpty(t, org.ID)
		require.Equal(t, "Homeward Tails", org.Name)
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		_, err := svc.CreateOrganization(context.Background(), "  ")

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields["name"], "can't be blank")
	})

	t.Run("unknown role", func(t *testing.T) {
		ctx, _ := newTestOrg(t, st, "Roles Shelter")
		account := registerAccount(t, accounts, ctx, "ada@example.com")

		err := svc.AssignRole(ctx, account.ID, "janitor")
		require.ErrorIs(t, err, ErrRoleNotFound)
	})
}
