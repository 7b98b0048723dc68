package store

import (
	"context"
	"errors"
	"time"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicate is the storage-level uniqueness conflict. Drivers must
	// map their constraint-violation errors onto it so callers can tell a
	// lost uniqueness race apart from a generic storage failure.
	ErrDuplicate = errors.New("store: duplicate")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. Account and person reads are scoped to the organization
// bound to the request context (see the tenant package); an unbound context
// reads unfiltered, which is reserved for administrative callers.
type Store interface {
	Organizations() Organizations
	People() People
	Accounts() Accounts
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step writes such as account creation.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Organizations interface {
	// CreateOrganization inserts a new organization (id provided via ULID).
	CreateOrganization(ctx context.Context, org domain.Organization) error

	// GetOrganizationByID returns an organization by id.
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)
}

type People interface {
	// CreatePerson inserts a new person.
	CreatePerson(ctx context.Context, p domain.Person) error

	// GetPersonByID returns a person by id, tenant-scoped.
	GetPersonByID(ctx context.Context, id string) (domain.Person, error)

	// GetPersonByEmail matches case-insensitively within the organization.
	// This is the dedup lookup used during account creation.
	GetPersonByEmail(ctx context.Context, orgID, email string) (domain.Person, error)
}

type Accounts interface {
	// CreateAccount inserts a new account. A (organization, email) collision
	// surfaces as ErrDuplicate.
	CreateAccount(ctx context.Context, a domain.Account) error

	// GetAccountByID returns an account by id, tenant-scoped.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail matches case-insensitively within the current
	// organization scope. Used for the uniqueness check and login.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetAccountByInvitationToken returns the pending account holding the
	// given invitation token fingerprint.
	GetAccountByInvitationToken(ctx context.Context, token string) (domain.Account, error)

	// UpdateAccountName mutates first/last name and bumps updated_at.
	UpdateAccountName(ctx context.Context, id, firstName, lastName string) error

	// SetDeactivatedAt writes the activation state. A nil value reactivates.
	SetDeactivatedAt(ctx context.Context, id string, at *time.Time) error

	// AcceptInvitation stamps invitation_accepted_at and clears the token.
	AcceptInvitation(ctx context.Context, id string, at time.Time) error

	// ConsumeInvitation increments invitations_count by one, guarded so the
	// counter never exceeds invitation_limit. Returns ErrNotFound when the
	// guard refuses (limit reached or no such account).
	ConsumeInvitation(ctx context.Context, id string) error

	// ListStaff returns accounts holding a staff role, tenant-scoped.
	ListStaff(ctx context.Context) ([]domain.Account, error)
}

type Roles interface {
	// CreateRole inserts a role (administrative path only).
	CreateRole(ctx context.Context, r domain.Role) error

	// GetRoleByName returns a role by its unique name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// AssignRole links an account to a role. Idempotent per pair.
	AssignRole(ctx context.Context, accountID, roleID string) error
}
