package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
)

type peopleRepo struct {
	ext sqlx.ExtContext
}

const personColumns = `id, organization_id, first_name, last_name, email, created_at, updated_at`

func (r *peopleRepo) CreatePerson(ctx context.Context, p domain.Person) error {
	now := time.Now().UTC()
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO people (id, organization_id, first_name, last_name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OrganizationID, p.FirstName, p.LastName, p.Email, now, now,
	)
	return wrapErr(err)
}

func (r *peopleRepo) GetPersonByID(ctx context.Context, id string) (domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE id = ?`
	query, args := scoped(ctx, query, []any{id})

	var row personRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, args...); err != nil {
		return domain.Person{}, wrapErr(err)
	}
	return mapPerson(row), nil
}

func (r *peopleRepo) GetPersonByEmail(ctx context.Context, orgID, email string) (domain.Person, error) {
	var row personRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT `+personColumns+` FROM people WHERE organization_id = ? AND lower(email) = lower(?)`,
		orgID, email,
	)
	if err != nil {
		return domain.Person{}, wrapErr(err)
	}
	return mapPerson(row), nil
}
