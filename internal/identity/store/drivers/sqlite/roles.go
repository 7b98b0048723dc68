package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
)

type rolesRepo struct {
	ext sqlx.ExtContext
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	now := time.Now().UTC()
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO roles (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		role.ID, role.Name, now, now,
	)
	return wrapErr(err)
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	var row roleRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT id, name, created_at, updated_at FROM roles WHERE name = ?`, name)
	if err != nil {
		return domain.Role{}, wrapErr(err)
	}
	return mapRole(row), nil
}

func (r *rolesRepo) AssignRole(ctx context.Context, accountID, roleID string) error {
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO account_roles (account_id, role_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (account_id, role_id) DO NOTHING`,
		accountID, roleID, time.Now().UTC(),
	)
	return wrapErr(err)
}
