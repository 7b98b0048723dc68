package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
	"github.com/caitlynl22/homeward-tails/internal/identity/store"
)

type Store struct {
	db  *sqlx.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; one pooled connection also keeps
	// :memory: databases coherent across goroutines.
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	return tx.Commit()
}

func (s *Store) Organizations() store.Organizations { return &organizationsRepo{ext: s.db} }
func (s *Store) People() store.People               { return &peopleRepo{ext: s.db} }
func (s *Store) Accounts() store.Accounts           { return &accountsRepo{ext: s.db} }
func (s *Store) Roles() store.Roles                 { return &rolesRepo{ext: s.db} }

// wrapErr maps driver errors onto the store sentinels so callers can tell a
// missing row or a lost uniqueness race apart from a generic failure.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return store.ErrDuplicate
		}
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func mapNullInt64Ptr(ni sql.NullInt64) *int64 {
	if ni.Valid {
		val := ni.Int64
		return &val
	}
	return nil
}

func mapOptionalInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

type accountRow struct {
	ID                   string         `db:"id"`
	OrganizationID       string         `db:"organization_id"`
	PersonID             string         `db:"person_id"`
	Email                string         `db:"email"`
	FirstName            string         `db:"first_name"`
	LastName             string         `db:"last_name"`
	DeactivatedAt        sql.NullTime   `db:"deactivated_at"`
	Provider             sql.NullString `db:"provider"`
	UID                  sql.NullString `db:"uid"`
	InvitationToken      sql.NullString `db:"invitation_token"`
	InvitationSentAt     sql.NullTime   `db:"invitation_sent_at"`
	InvitationAcceptedAt sql.NullTime   `db:"invitation_accepted_at"`
	InvitationLimit      sql.NullInt64  `db:"invitation_limit"`
	InvitationsCount     int64          `db:"invitations_count"`
	InvitedByID          sql.NullString `db:"invited_by_id"`
	InvitedByType        sql.NullString `db:"invited_by_type"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func mapAccount(row accountRow) domain.Account {
	return domain.Account{
		ID:                   row.ID,
		OrganizationID:       row.OrganizationID,
		PersonID:             row.PersonID,
		Email:                row.Email,
		FirstName:            row.FirstName,
		LastName:             row.LastName,
		DeactivatedAt:        mapNullTimePtr(row.DeactivatedAt),
		Provider:             mapNullString(row.Provider),
		UID:                  mapNullString(row.UID),
		InvitationToken:      mapNullString(row.InvitationToken),
		InvitationSentAt:     mapNullTimePtr(row.InvitationSentAt),
		InvitationAcceptedAt: mapNullTimePtr(row.InvitationAcceptedAt),
		InvitationLimit:      mapNullInt64Ptr(row.InvitationLimit),
		InvitationsCount:     row.InvitationsCount,
		InvitedByID:          mapNullString(row.InvitedByID),
		InvitedByType:        mapNullString(row.InvitedByType),
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
}

type personRow struct {
	ID             string    `db:"id"`
	OrganizationID string    `db:"organization_id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Email          string    `db:"email"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func mapPerson(row personRow) domain.Person {
	return domain.Person{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Email:          row.Email,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

type organizationRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func mapOrganization(row organizationRow) domain.Organization {
	return domain.Organization{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type roleRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func mapRole(row roleRow) domain.Role {
	return domain.Role{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
