package auth

import (
	"errors"
	"slices"
)

// Role represents an authorisation tier of an API token.
type Role string

const (
	// RoleViewer can read state and follow events.
	RoleViewer Role = "viewer"

	// RoleOperator can also change state and provision nodes.
	RoleOperator Role = "operator"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RoleOperator}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return slices.Contains(ValidRoles, r)
}

// ParseRole converts a role name, rejecting unknown names.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Auth errors.
var (
	ErrTokenInvalid   = errors.New("auth: invalid token")
	ErrTokenExpired   = errors.New("auth: token has expired")
	ErrInvalidRole    = errors.New("auth: unknown role")
	ErrSecretTooShort = errors.New("auth: secret too short")
	ErrForbidden      = errors.New("auth: insufficient permissions")
)
