// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package sec

// # User Roles

// UserRole represents the authorization level granted by a verified token.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can review wage reports, override statuses and restore deletions
	RoleModerator UserRole = "moderator"

	// Default role for attributed submitters
	RoleMember UserRole = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleModerator:
		return 30
	case RoleMember:
		return 10
	default:
		return 0
	}
}
