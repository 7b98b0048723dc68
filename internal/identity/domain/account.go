package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// GoogleProvider tags accounts created through the Google OAuth handshake.
// The handshake itself happens in an external subsystem; this package only
// derives the capability flag from the recorded provider/uid pair.
const GoogleProvider = "google_oauth2"

// FilterableFields lists the account attributes that are safe to expose to
// the ad-hoc search/filter subsystem.
var FilterableFields = []string{"first_name", "last_name"}

// FilterableRelations lists the relations the search/filter subsystem may
// traverse from an account.
var FilterableRelations = []string{"matches"}

// NameMode selects a rendering for FullName.
type NameMode string

const (
	NameDefault   NameMode = "default"    // "First Last"
	NameLastFirst NameMode = "last_first" // "Last, First"
)

// ErrUnknownNameMode reports an unsupported FullName mode. Always a caller
// error, never retried.
var ErrUnknownNameMode = errors.New("domain: unknown name mode")

// Account is an authentication-capable account bound to exactly one person
// within an organization. Credential material lives in an external subsystem
// and never appears here.
type Account struct {
	ID             string
	OrganizationID string
	PersonID       string // exactly one non-empty person after creation
	Email          string // unique per organization, immutable after creation
	FirstName      string
	LastName       string
	DeactivatedAt  *time.Time // nil means the account may authenticate

	// External-identity tag set after a successful provider handshake.
	Provider string
	UID      string

	// Invitation bookkeeping. The token and sent/accepted timestamps belong
	// to the account being invited; the limit/count pair belongs to the
	// account doing the inviting.
	InvitationToken      string
	InvitationSentAt     *time.Time
	InvitationAcceptedAt *time.Time
	InvitationLimit      *int64 // nil means unlimited
	InvitationsCount     int64
	InvitedByID          string
	InvitedByType        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the account is eligible for authentication.
func (a Account) Active() bool { return a.DeactivatedAt == nil }

// FullName renders the account holder's name in the requested mode.
func (a Account) FullName(mode NameMode) (string, error) {
	switch mode {
	case NameDefault:
		return a.FirstName + " " + a.LastName, nil
	case NameLastFirst:
		return a.LastName + ", " + a.FirstName, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNameMode, mode)
	}
}

// NameInitials returns the upper-cased initial of each space-separated token
// of the default full name rendering.
func (a Account) NameInitials() string {
	full, _ := a.FullName(NameDefault)

	var b strings.Builder
	for _, token := range strings.Fields(full) {
		r := []rune(token)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

// ExternalIdentity reports whether the account is recognised as belonging to
// an external login provider.
func (a Account) ExternalIdentity() bool {
	return a.Provider == GoogleProvider && a.UID != ""
}

// Invited reports whether the account originated from an invitation.
func (a Account) Invited() bool { return a.InvitationSentAt != nil }

// InvitePending reports whether the account was invited and has not yet
// accepted.
func (a Account) InvitePending() bool {
	return a.InvitationToken != "" && a.InvitationAcceptedAt == nil
}
