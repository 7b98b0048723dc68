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
	"github.com/caitlynl22/homeward-tails/pkg/cryptox"
	"github.com/caitlynl22/homeward-tails/pkg/idx"
	"github.com/caitlynl22/homeward-tails/pkg/slogx"
)

var (
	ErrInviteNotFound     = errors.New("invite not found or already accepted")
	ErrInviterNotFound    = errors.New("inviter not found")
	ErrInviteLimitReached = errors.New("invitation limit reached")
)

// InvitedByType records what kind of actor issued an invitation. Only
// accounts invite today, but the column is polymorphic in the data contract.
const InvitedByAccount = "Account"

type InviteService struct {
	Store store.Store

	// DefaultInvitationLimit caps how many invitations an invited account may
	// itself send once accepted. Zero means unlimited.
	DefaultInvitationLimit int64
}

type InviteParams struct {
	Email       string
	FirstName   string
	LastName    string
	InvitedByID string
}

// Invite creates a pre-activation account for the invitee and hands the raw
// invitation token back to the caller for delivery. Email rules and person
// resolution match registration; there is no terms-of-service gate since the
// invitee has not seen anything to accept yet. The inviter's counter is
// incremented atomically with the insert and can never exceed the limit.
func (s *InviteService) Invite(ctx context.Context, p InviteParams) (domain.Account, string, error) {
	log := slogx.FromContext(ctx)

	orgID, ok := tenant.OrganizationID(ctx)
	if !ok {
		return domain.Account{}, "", ErrNoOrganization
	}

	// 1. Validate invitee fields.
	verr := newValidationError()
	validateName(verr, p.FirstName, p.LastName)
	validateEmail(verr, p.Email)
	if p.Email != "" {
		if err := checkEmailFree(ctx, s.Store, p.Email, verr); err != nil {
			return domain.Account{}, "", err
		}
	}
	if err := verr.orNil(); err != nil {
		log.Warn("invitation rejected", slog.Any("fields", verr.Fields))
		return domain.Account{}, "", err
	}

	// 2. The inviter must exist inside the same organization and have
	// invitations left.
	inviter, err := s.Store.Accounts().GetAccountByID(ctx, p.InvitedByID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, "", ErrInviterNotFound
		}
		return domain.Account{}, "", err
	}
	if inviter.InvitationLimit != nil && inviter.InvitationsCount >= *inviter.InvitationLimit {
		log.Warn("invitation limit reached",
			slog.String("inviter_id", inviter.ID),
			slog.Int64("limit", *inviter.InvitationLimit),
		)
		return domain.Account{}, "", ErrInviteLimitReached
	}

	// 3. Generate the opaque token handed to the invitee. Only its
	// fingerprint is persisted.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Account{}, "", err
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:               idx.New().String(),
		OrganizationID:   orgID,
		Email:            p.Email,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		InvitationToken:  cryptox.FingerprintToken(token),
		InvitationSentAt: &now,
		InvitedByID:      inviter.ID,
		InvitedByType:    InvitedByAccount,
	}
	if s.DefaultInvitationLimit > 0 {
		limit := s.DefaultInvitationLimit
		account.InvitationLimit = &limit
	}

	// 4. Person resolution, insert, and counter consumption are one atomic
	// unit. The counter guard re-checks the limit inside the transaction so
	// concurrent inviters cannot overshoot it.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
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

		account.Email = strings.ToLower(account.Email)
		if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
			return err
		}

		if err := tx.Accounts().ConsumeInvitation(ctx, inviter.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteLimitReached
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.Account{}, "", ErrEmailTaken
		}
		if errors.Is(err, ErrInviteLimitReached) {
			return domain.Account{}, "", err
		}
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.Account{}, "", err
	}

	log.Info("invitation issued",
		slog.String("account_id", account.ID),
		slog.String("inviter_id", inviter.ID),
		slog.String("organization_id", orgID),
	)

	created, err := s.Store.Accounts().GetAccountByID(ctx, account.ID)
	if err != nil {
		return domain.Account{}, "", err
	}
	return created, token, nil
}

// Accept records the invitee's acceptance: invitation_accepted_at is the
// signal that turns an invited-but-not-yet-credentialed account into a fully
// registered one. Credential setup happens in the external subsystem.
// Unknown or already-accepted tokens fail alike, so a token cannot be probed.
func (s *InviteService) Accept(ctx context.Context, token string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.Account{}, ErrInviteNotFound
	}

	fingerprint := cryptox.FingerprintToken(token)
	account, err := s.Store.Accounts().GetAccountByInvitationToken(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInviteNotFound
		}
		return domain.Account{}, err
	}

	if err := s.Store.Accounts().AcceptInvitation(ctx, account.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInviteNotFound
		}
		return domain.Account{}, err
	}

	log.Info("invitation accepted", slog.String("account_id", account.ID))
	return s.Store.Accounts().GetAccountByID(ctx, account.ID)
}
