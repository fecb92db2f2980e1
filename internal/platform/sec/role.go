// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole is the authorization level carried in the access token.
type UserRole string

const (
	// RoleAdmin manages accounts, balances and the order ledger.
	RoleAdmin UserRole = "admin"

	// RoleEditor publishes comics, chapters and pages.
	RoleEditor UserRole = "editor"

	// RoleMember reads and buys content.
	RoleMember UserRole = "member"
)

// Roles lists every assignable role, highest first.
func Roles() []string {
	return []string{string(RoleAdmin), string(RoleEditor), string(RoleMember)}
}

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	return r.level() > 0
}

// AtLeast reports whether r meets or exceeds target. Unknown roles never do.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.IsValid() && r.level() >= target.level()
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}
