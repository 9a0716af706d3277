package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRole = errors.New("domain: invalid role")

// Role is the closed set of account roles. Authorization is a plain
// allow-list check against it; there is no hierarchy.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
)

// DefaultRole is assigned when registration does not name one.
const DefaultRole = RoleStudent

var allRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin, RoleFaculty}

func AllRoles() []Role {
	return append([]Role(nil), allRoles...)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleFaculty:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts any casing and surrounding whitespace.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// SelfAssignable reports whether a user may pick r for themselves at
// registration. Admins are only created by other admins or at bootstrap.
func (r Role) SelfAssignable() bool {
	return r.IsValid() && r != RoleAdmin
}

// RoleNames converts roles to the strings carried in tokens.
func RoleNames(roles ...Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
