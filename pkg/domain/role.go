package domain

import dErrors "scriptorium/pkg/domain-errors"

// Role is the access level granted to a user account.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries to enforce the allowlist;
// direct casting bypasses validation.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

var validRoles = map[Role]bool{
	RoleMember: true,
	RoleAdmin:  true,
}

// ParseRole constructs a Role from external input. An empty string yields
// RoleMember.
//
// Errors: returns CodeInvalidInput when the value is unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleMember, nil
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}
