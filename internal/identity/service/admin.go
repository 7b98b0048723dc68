package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
	"github.com/caitlynl22/homeward-tails/internal/identity/store"
	"github.com/caitlynl22/homeward-tails/pkg/idx"
	"github.com/caitlynl22/homeward-tails/pkg/slogx"
)

var ErrRoleNotFound = errors.New("role not found")

// AdminService covers the administrative paths that run outside tenant
// scope: provisioning organizations and writing the role relation.
type AdminService struct {
	Store store.Store
}

// CreateOrganization provisions a new tenant root.
func (s *AdminService) CreateOrganization(ctx context.Context, name string) (domain.Organization, error) {
	log := slogx.FromContext(ctx)

	verr := newValidationError()
	if strings.TrimSpace(name) == "" {
		verr.add("name", msgBlank)
	}
	if err := verr.orNil(); err != nil {
		return domain.Organization{}, err
	}

	org := domain.Organization{
		ID:   idx.New().String(),
		Name: name,
	}
	if err := s.Store.Organizations().CreateOrganization(ctx, org); err != nil {
		return domain.Organization{}, err
	}

	log.Info("organization created",
		slog.String("organization_id", org.ID),
		slog.String("name", org.Name),
	)
	return s.Store.Organizations().GetOrganizationByID(ctx, org.ID)
}

// AssignRole links an account to a named role. Role semantics belong to the
// external role subsystem; this is only the administrative write path into
// the relation the staff query reads.
func (s *AdminService) AssignRole(ctx context.Context, accountID, roleName string) error {
	role, err := s.Store.Roles().GetRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	return s.Store.Roles().AssignRole(ctx, account.ID, role.ID)
}
