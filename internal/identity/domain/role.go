package domain

import "time"

// Staff role names. An account holding either of these is considered staff.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Role is owned by the external role subsystem. This service reads the
// account-role relation for the staff query and writes it only through the
// administrative path.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StaffRoleNames returns the role names recognised by the staff query.
func StaffRoleNames() []string {
	return []string{RoleAdmin, RoleSuperAdmin}
}
