package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
	"github.com/caitlynl22/homeward-tails/internal/identity/store"
	"github.com/caitlynl22/homeward-tails/internal/identity/tenant"
)

type accountsRepo struct {
	ext sqlx.ExtContext
}

const accountColumns = `id, organization_id, person_id, email, first_name, last_name,
	deactivated_at, provider, uid,
	invitation_token, invitation_sent_at, invitation_accepted_at,
	invitation_limit, invitations_count, invited_by_id, invited_by_type,
	created_at, updated_at`

// scoped appends the tenant filter when the context carries an organization.
// Unbound contexts (administrative scope) read and write unfiltered.
func scoped(ctx context.Context, query string, args []any) (string, []any) {
	if orgID, ok := tenant.OrganizationID(ctx); ok {
		query += ` AND organization_id = ?`
		args = append(args, orgID)
	}
	return query, args
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO accounts (
			id, organization_id, person_id, email, first_name, last_name,
			deactivated_at, provider, uid,
			invitation_token, invitation_sent_at, invitation_accepted_at,
			invitation_limit, invitations_count, invited_by_id, invited_by_type,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OrganizationID, a.PersonID, a.Email, a.FirstName, a.LastName,
		mapOptionalTime(a.DeactivatedAt), mapStringNull(a.Provider), mapStringNull(a.UID),
		mapStringNull(a.InvitationToken), mapOptionalTime(a.InvitationSentAt),
		mapOptionalTime(a.InvitationAcceptedAt),
		mapOptionalInt64(a.InvitationLimit), a.InvitationsCount,
		mapStringNull(a.InvitedByID), mapStringNull(a.InvitedByType),
		now, now,
	)
	return wrapErr(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	query, args := scoped(ctx, query, []any{id})

	var row accountRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, args...); err != nil {
		return domain.Account{}, wrapErr(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	// Case-insensitive so an upper-cased variant of a stored address is seen
	// as the same account at write time.
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower(?)`
	query, args := scoped(ctx, query, []any{email})

	var row accountRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, args...); err != nil {
		return domain.Account{}, wrapErr(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) GetAccountByInvitationToken(ctx context.Context, token string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE invitation_token = ?`
	query, args := scoped(ctx, query, []any{token})

	var row accountRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, args...); err != nil {
		return domain.Account{}, wrapErr(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) UpdateAccountName(ctx context.Context, id, firstName, lastName string) error {
	query := `UPDATE accounts SET first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`
	query, args := scoped(ctx, query, []any{firstName, lastName, time.Now().UTC(), id})

	return r.exec(ctx, query, args)
}

func (r *accountsRepo) SetDeactivatedAt(ctx context.Context, id string, at *time.Time) error {
	query := `UPDATE accounts SET deactivated_at = ?, updated_at = ? WHERE id = ?`
	query, args := scoped(ctx, query, []any{mapOptionalTime(at), time.Now().UTC(), id})

	return r.exec(ctx, query, args)
}

func (r *accountsRepo) AcceptInvitation(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE accounts
		SET invitation_accepted_at = ?, invitation_token = NULL, updated_at = ?
		WHERE id = ? AND invitation_accepted_at IS NULL`
	query, args := scoped(ctx, query, []any{at, time.Now().UTC(), id})

	return r.exec(ctx, query, args)
}

func (r *accountsRepo) ConsumeInvitation(ctx context.Context, id string) error {
	// The guard keeps invitations_count from ever exceeding invitation_limit,
	// even under concurrent inviters.
	query := `UPDATE accounts
		SET invitations_count = invitations_count + 1, updated_at = ?
		WHERE id = ? AND (invitation_limit IS NULL OR invitations_count < invitation_limit)`
	query, args := scoped(ctx, query, []any{time.Now().UTC(), id})

	return r.exec(ctx, query, args)
}

func (r *accountsRepo) ListStaff(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id IN (
			SELECT ar.account_id FROM account_roles ar
			JOIN roles ro ON ro.id = ar.role_id
			WHERE ro.name IN (?, ?)
		)`
	query, args := scoped(ctx, query, []any{domain.RoleAdmin, domain.RoleSuperAdmin})
	query += ` ORDER BY created_at`

	var rows []accountRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, args...); err != nil {
		return nil, wrapErr(err)
	}

	accounts := make([]domain.Account, len(rows))
	for i, row := range rows {
		accounts[i] = mapAccount(row)
	}
	return accounts, nil
}

// exec runs a mutation and maps "no rows touched" to ErrNotFound so callers
// can distinguish a refused guard or out-of-scope id from success.
func (r *accountsRepo) exec(ctx context.Context, query string, args []any) error {
	res, err := r.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
