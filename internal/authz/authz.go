// Package authz holds the caller identity and the single role check every
// gated operation goes through.
package authz

import (
	"fitbook/pkg/utils"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller as resolved from storage for the
// current request. The zero value is an anonymous caller.
type Actor struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

func Anonymous() Actor { return Actor{} }

func (a Actor) Authenticated() bool { return a.UserID != "" }

func (a Actor) IsAdmin() bool { return a.Authenticated() && a.Role == RoleAdmin }

func RequireAuthenticated(a Actor) error {
	if !a.Authenticated() {
		return utils.NewError(utils.ErrAuthentication, "sign in required")
	}
	return nil
}

// RequireRole fails unless the caller is authenticated and holds one of roles.
func RequireRole(a Actor, roles ...Role) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return utils.Forbidden("insufficient permissions")
}

// RequireOwnerOrAdmin fails unless the caller is ownerID or an admin.
func RequireOwnerOrAdmin(a Actor, ownerID *string) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.IsAdmin() || (ownerID != nil && *ownerID == a.UserID) {
		return nil
	}
	return utils.Forbidden("not the owner")
}
