package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/caitlynl22/homeward-tails/internal/identity/domain"
	"github.com/caitlynl22/homeward-tails/internal/identity/store"
	"github.com/caitlynl22/homeward-tails/internal/identity/tenant"
	"github.com/caitlynl22/homeward-tails/pkg/idx"
	"github.com/caitlynl22/homeward-tails/pkg/slogx"
)

var (
	ErrNoOrganization     = errors.New("no organization bound to context")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
)

// Credentials is the external credential subsystem. This service never sees
// password material beyond passing it through for verification.
type Credentials interface {
	Verify(ctx context.Context, accountID, password string) error
}

// CredentialsFunc adapts a plain function to the Credentials interface.
type CredentialsFunc func(ctx context.Context, accountID, password string) error

func (f CredentialsFunc) Verify(ctx context.Context, accountID, password string) error {
	return f(ctx, accountID, password)
}

type AccountService struct {
	Store       store.Store
	Credentials Credentials

	// DefaultInvitationLimit caps how many invitations a newly registered
	// account may send. Zero means unlimited.
	DefaultInvitationLimit int64
}

type RegisterParams struct {
	FirstName string
	LastName  string
	Email     string
	PersonID  string // optional: bind to an already-known identity
	Provider  string
	UID       string

	// TOSAgreement is acceptance-only input; it gates creation and is never
	// persisted.
	TOSAgreement bool
}

// Register creates an account in the organization bound to ctx. The order is
// fixed: validation, person resolution, email normalization, persistence.
// Format and uniqueness checks run against the caller-supplied email; the
// lower-cased form is what gets written.
func (s *AccountService) Register(ctx context.Context, p RegisterParams) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	orgID, ok := tenant.OrganizationID(ctx)
	if !ok {
		return domain.Account{}, ErrNoOrganization
	}

	// 1. Validate.
	verr := newValidationError()
	validateName(verr, p.FirstName, p.LastName)
	validateEmail(verr, p.Email)
	if !p.TOSAgreement {
		verr.add("tos_agreement", msgMustAccept)
	}
	if p.Email != "" {
		if err := checkEmailFree(ctx, s.Store, p.Email, verr); err != nil {
			return domain.Account{}, err
		}
	}
	if err := verr.orNil(); err != nil {
		log.Warn("registration rejected", slog.Any("fields", verr.Fields))
		return domain.Account{}, err
	}

	account := domain.Account{
		ID:             idx.New().String(),
		OrganizationID: orgID,
		PersonID:       p.PersonID,
		Email:          p.Email,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Provider:       p.Provider,
		UID:            p.UID,
	}
	if s.DefaultInvitationLimit > 0 {
		limit := s.DefaultInvitationLimit
		account.InvitationLimit = &limit
	}

	// Person resolution and the insert share one transaction so a partial
	// binding (account without person, or vice versa) is never observable.
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 2. Resolve or create the canonical person. An explicit binding must
		// name a person inside the organization bound to ctx; the scoped
		// lookup makes a cross-tenant id indistinguishable from an unknown
		// one.
		if account.PersonID != "" {
			if _, err := tx.People().GetPersonByID(ctx, account.PersonID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					verr := newValidationError()
					verr.add("person_id", msgInvalid)
					return verr
				}
				return err
			}
		} else {
			personID, err := resolvePerson(ctx, tx, domain.Person{
				OrganizationID: orgID,
				FirstName:      p.FirstName,
				LastName:       p.LastName,
				Email:          p.Email,
			})
			if err != nil {
				return err
			}
			account.PersonID = personID
		}

		// 3. Canonicalize the email immediately before persistence.
		account.Email = strings.ToLower(account.Email)

		// 4. Persist.
		return tx.Accounts().CreateAccount(ctx, account)
	})
	if err != nil {
		// The unique index is authoritative when a concurrent writer won the
		// race between the check above and the insert. Surfaced as a
		// conflict, never silently merged.
		if errors.Is(err, store.ErrDuplicate) {
			log.Warn("registration lost uniqueness race",
				slog.String("organization_id", orgID),
			)
			return domain.Account{}, ErrEmailTaken
		}
		var bindErr *ValidationError
		if errors.As(err, &bindErr) {
			log.Warn("registration rejected", slog.Any("fields", bindErr.Fields))
			return domain.Account{}, err
		}
		log.Error("failed to register account", slog.Any("error", err))
		return domain.Account{}, err
	}

	log.Info("account registered",
		slog.String("account_id", account.ID),
		slog.String("person_id", account.PersonID),
		slog.String("organization_id", orgID),
	)

	return s.Store.Accounts().GetAccountByID(ctx, account.ID)
}

type UpdateProfileParams struct {
	FirstName string
	LastName  string
	Email     string // must equal the persisted value when supplied
}

// UpdateProfile mutates the account holder's name. Email is immutable after
// creation: any differing value fails with a field error, independent of
// format or uniqueness checks.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, p UpdateProfileParams) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}

	verr := newValidationError()
	if p.Email != "" && p.Email != account.Email {
		verr.add("email", msgEmailImmutable)
	}
	validateName(verr, p.FirstName, p.LastName)
	if err := verr.orNil(); err != nil {
		return domain.Account{}, err
	}

	if err := s.Store.Accounts().UpdateAccountName(ctx, id, p.FirstName, p.LastName); err != nil {
		return domain.Account{}, err
	}
	return s.Store.Accounts().GetAccountByID(ctx, id)
}

// Get fetches an account by id within the current tenant scope.
func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrAccountNotFound
	}
	return account, err
}

// Deactivate moves the account to the Deactivated state. Already-deactivated
// accounts are a no-op; the original timestamp is preserved.
func (s *AccountService) Deactivate(ctx context.Context, id string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	if !account.Active() {
		return account, nil
	}

	now := time.Now().UTC()
	if err := s.Store.Accounts().SetDeactivatedAt(ctx, id, &now); err != nil {
		return domain.Account{}, err
	}

	log.Info("account deactivated", slog.String("account_id", id))
	return s.Store.Accounts().GetAccountByID(ctx, id)
}

// Activate clears the deactivation timestamp, restoring authentication
// eligibility. Already-active accounts are a no-op.
func (s *AccountService) Activate(ctx context.Context, id string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	if account.Active() {
		return account, nil
	}

	if err := s.Store.Accounts().SetDeactivatedAt(ctx, id, nil); err != nil {
		return domain.Account{}, err
	}

	log.Info("account reactivated", slog.String("account_id", id))
	return s.Store.Accounts().GetAccountByID(ctx, id)
}

// Authenticate gates login. Secret verification is delegated to the external
// credential subsystem; a correctly-credentialed but deactivated account
// fails with ErrAccountDeactivated so the boundary can render a reason
// distinguishable from a wrong password.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	if err := s.Credentials.Verify(ctx, account.ID, password); err != nil {
		log.Warn("authentication failed", slog.String("account_id", account.ID))
		return domain.Account{}, ErrInvalidCredentials
	}

	// Checked after credential verification so the specific reason is only
	// disclosed to a caller holding valid credentials.
	if !account.Active() {
		log.Warn("authentication attempt on deactivated account",
			slog.String("account_id", account.ID),
		)
		return domain.Account{}, ErrAccountDeactivated
	}

	return account, nil
}

// checkEmailFree records a uniqueness failure on verr when the email is
// already held by an account in the current organization. The comparison is
// case-insensitive so case variants cannot slip past.
func checkEmailFree(ctx context.Context, st store.Store, email string, verr *ValidationError) error {
	_, err := st.Accounts().GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		verr.add("email", msgTaken)
		return nil
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return err
	}
}

func validateName(verr *ValidationError, firstName, lastName string) {
	if strings.TrimSpace(firstName) == "" {
		verr.add("first_name", msgBlank)
	}
	if strings.TrimSpace(lastName) == "" {
		verr.add("last_name", msgBlank)
	}
}

func validateEmail(verr *ValidationError, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		verr.add("email", msgBlank)
	case !validEmailFormat(email):
		verr.add("email", msgInvalid)
	}
}

// resolvePerson binds the account being created to its canonical person: an
// existing person with the same organization and email wins, otherwise a new
// one is seeded from the account's attributes. The found record is never
// mutated.
func resolvePerson(ctx context.Context, tx store.Tx, seed domain.Person) (string, error) {
	existing, err := tx.People().GetPersonByEmail(ctx, seed.OrganizationID, seed.Email)
	switch {
	case err == nil:
		return existing.ID, nil
	case errors.Is(err, store.ErrNotFound):
		seed.ID = idx.New().String()
		if err := tx.People().CreatePerson(ctx, seed); err != nil {
			return "", err
		}
		return seed.ID, nil
	default:
		return "", err
	}
}
