package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Authorization decisions are
// expressed through the capability methods below rather than ad-hoc string
// comparisons so the whole policy is auditable in one place.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleHR    Role = "hr"
	RoleUser  Role = "user"
)

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleHR, RoleUser:
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

func (r Role) String() string { return string(r) }

// CanManageUsers reports whether the role may create, list, update, or
// deactivate accounts.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin || r == RoleHR
}

// CanTriageMessages reports whether the role may list and resolve inbox
// messages.
func (r Role) CanTriageMessages() bool {
	return r == RoleAdmin || r == RoleHR
}

// assignable is the capability table for account creation and role grants.
// HR may provision regular and HR accounts but never admins.
var assignable = map[Role]map[Role]bool{
	RoleAdmin: {RoleAdmin: true, RoleHR: true, RoleUser: true},
	RoleHR:    {RoleHR: true, RoleUser: true},
}

// CanAssign reports whether the role may create or grant an account with the
// target role.
func (r Role) CanAssign(target Role) bool {
	return assignable[r][target]
}
