package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
)

type organizationsRepo struct {
	ext sqlx.ExtContext
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, org domain.Organization) error {
	now := time.Now().UTC()
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO organizations (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		org.ID, org.Name, now, now,
	)
	return wrapErr(err)
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	var row organizationRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT id, name, created_at, updated_at FROM organizations WHERE id = ?`, id)
	if err != nil {
		return domain.Organization{}, wrapErr(err)
	}
	return mapOrganization(row), nil
}
