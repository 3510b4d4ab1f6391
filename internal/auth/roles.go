// Package auth implements HTTP Basic authentication and role based access
// control for the catalog API.
package auth

import (
	"fmt"
	"slices"
	"strings"

	cerrors "github.com/abgdnv/storecatalog/internal/errors"
)

// Role is the single authority granted to a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

// Permission is derived from a role and never stored per user.
type Permission string

const (
	PermissionRead  Permission = "READ"
	PermissionWrite Permission = "WRITE"
)

var rolePermissions = map[Role][]Permission{
	RoleUser:  {PermissionRead},
	RoleAdmin: {PermissionRead, PermissionWrite},
	RoleOwner: {PermissionRead, PermissionWrite},
}

// ParseRole converts s to a Role ignoring case and surrounding spaces.
// Returns ErrInvalidRole for anything but USER, ADMIN or OWNER.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rolePermissions[role]; !ok {
		return "", fmt.Errorf("%w: %q", cerrors.ErrInvalidRole, s)
	}
	return role, nil
}

// Valid reports whether r is one of the known roles. Stored roles are
// already canonical, so no case folding happens here.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

func (r Role) Has(p Permission) bool {
	return slices.Contains(rolePermissions[r], p)
}

func (r Role) String() string {
	return string(r)
}
