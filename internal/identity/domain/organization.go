package domain

import "time"

// Organization is the root of tenant scoping. Every person and account
// belongs to exactly one organization, and requests operate inside a single
// organization boundary.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
