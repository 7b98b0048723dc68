package service

import (
	"context"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
	"github.com/caitlynl22/homeward-tails/internal/identity/store"
)

// StaffService is an independent read path over the external role relation.
type StaffService struct {
	Store store.Store
}

// ListStaff returns the accounts in the current tenant scope holding an
// "admin" or "super_admin" role.
func (s *StaffService) ListStaff(ctx context.Context) ([]domain.Account, error) {
	return s.Store.Accounts().ListStaff(ctx)
}
