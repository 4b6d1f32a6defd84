package access

import (
	"fmt"
	"strings"
)

// Role determines which sections of the portal a profile may see or operate.
type Role string

const (
	RoleTenant Role = "tenant"
	RoleOwner  Role = "owner"
	RoleSyndic Role = "syndic"
	RoleAdmin  Role = "admin"
)

// AllRoles lists every role in ascending order of privilege.
var AllRoles = []Role{RoleTenant, RoleOwner, RoleSyndic, RoleAdmin}

// ParseRole converts user input into a Role, rejecting unknown values.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("access: unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleOwner, RoleSyndic, RoleAdmin:
		return true
	}
	return false
}

// Label returns the display label shown to residents.
func (r Role) Label() string {
	switch r {
	case RoleTenant:
		return "Locatário"
	case RoleOwner:
		return "Proprietário"
	case RoleSyndic:
		return "Síndico"
	case RoleAdmin:
		return "Administrador"
	}
	return ""
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is an ordered, de-duplicated collection of roles. A nil or empty
// set means "any authenticated user" for Guard.
type RoleSet struct {
	roles []Role
}

// Roles builds a RoleSet, dropping duplicates and invalid entries.
func Roles(roles ...Role) RoleSet {
	if len(roles) == 0 {
		return RoleSet{}
	}
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, role := range roles {
		if !role.Valid() {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return RoleSet{roles: out}
}

// ParseRoles builds a RoleSet from a comma separated list.
func ParseRoles(csv string) (RoleSet, error) {
	if strings.TrimSpace(csv) == "" {
		return RoleSet{}, nil
	}
	parts := strings.Split(csv, ",")
	roles := make([]Role, 0, len(parts))
	for _, part := range parts {
		role, err := ParseRole(part)
		if err != nil {
			return RoleSet{}, err
		}
		roles = append(roles, role)
	}
	return Roles(roles...), nil
}

// Contains reports whether role is a member of the set.
func (s RoleSet) Contains(role Role) bool {
	for _, candidate := range s.roles {
		if candidate == role {
			return true
		}
	}
	return false
}

// Empty reports whether the set has no members.
func (s RoleSet) Empty() bool {
	return len(s.roles) == 0
}

// Slice returns a copy of the members in insertion order.
func (s RoleSet) Slice() []Role {
	if len(s.roles) == 0 {
		return nil
	}
	out := make([]Role, len(s.roles))
	copy(out, s.roles)
	return out
}

func (s RoleSet) String() string {
	names := make([]string, len(s.roles))
	for i, role := range s.roles {
		names[i] = string(role)
	}
	return strings.Join(names, ",")
}
