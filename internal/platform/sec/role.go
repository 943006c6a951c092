// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access: can manage fandoms, promote admins,
	// and mutate any taxonomy or rule set.
	RoleProjectAdmin UserRole = "project_admin"

	// Can manage tags, tag classes, plot blocks, and validation rules
	// within the fandoms they have been granted.
	RoleFandomAdmin UserRole = "fandom_admin"

	// Default role for standard registered users. Read-only discovery access.
	RoleMember UserRole = "member"
)

// IsValid reports whether r is a recognised [UserRole] value.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleProjectAdmin, RoleFandomAdmin, RoleMember:
		return true
	}
	return false
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleProjectAdmin:
		return 40
	case RoleFandomAdmin:
		return 30
	case RoleMember:
		return 10
	default:
		return 0
	}
}
