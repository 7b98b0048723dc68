package domain

import "time"

// Person is the durable identity inside an organization, independent of
// login capability. Accounts reference a person; a person may exist with no
// account at all (for example, created through an intake flow).
type Person struct {
	ID             string
	OrganizationID string
	FirstName      string
	LastName       string
	Email          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
