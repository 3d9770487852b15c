// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package sec

// # User Roles

// Role represents the authorization level granted to an account.
//
// The set is closed: every role the platform knows about is enumerated
// below, and route guards always name an explicit permitted set instead of
// comparing raw strings.
type Role string

const (
	// Unrestricted system access
	RoleAdmin Role = "admin"

	// Owns and manages one or more school listings
	RoleSchoolOwner Role = "school_owner"

	// Default role for registered parents browsing and reviewing schools
	RoleParent Role = "parent"
)

// AllRoles is the full closed set, used for endpoints open to any active account.
var AllRoles = []Role{RoleAdmin, RoleSchoolOwner, RoleParent}

// ParseRole maps a raw string onto the closed role set.
// The boolean is false for anything outside the enumeration.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSchoolOwner:
		return RoleSchoolOwner, true
	case RoleParent:
		return RoleParent, true
	default:
		return "", false
	}
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// In reports whether the role belongs to the given permitted set.
//
// An empty permitted set matches nothing: a guard that forgets to name its
// roles denies everyone rather than allowing everyone.
func (r Role) In(permitted ...Role) bool {
	for _, p := range permitted {
		if r == p {
			return true
		}
	}
	return false
}
