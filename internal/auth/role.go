package auth

import (
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// Role is the access tier of an authenticated caller. It is derived once
// from the user record when the request is authenticated and carried on
// the request context from then on.
type Role int

const (
	// RoleMember is a regular user scoped to one company.
	RoleMember Role = iota
	// RoleCompanyAdmin administers a single company.
	RoleCompanyAdmin
	// RoleSuperAdmin operates across all companies and has no company of
	// its own.
	RoleSuperAdmin
)

// String returns the wire name of the role
func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "super_admin"
	case RoleCompanyAdmin:
		return "company_admin"
	default:
		return "member"
	}
}

// DeriveRole classifies a user into its role tier
func DeriveRole(user *models.User) Role {
	switch {
	case user.IsAdmin && user.CompanyID == nil:
		return RoleSuperAdmin
	case user.IsAdmin:
		return RoleCompanyAdmin
	default:
		return RoleMember
	}
}

// Principal is the authenticated caller as seen by handlers and services.
type Principal struct {
	UserID    uuid.UUID
	CompanyID *uuid.UUID
	Role      Role
	TokenID   string
}

// IsAdmin reports whether the principal has any admin tier
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleCompanyAdmin || p.Role == RoleSuperAdmin
}

// CanAccessCompany reports whether the principal may act on resources of
// the given company. Super admins may act on any company; everyone else
// only on their own.
func (p *Principal) CanAccessCompany(companyID uuid.UUID) bool {
	if p.Role == RoleSuperAdmin {
		return true
	}
	return p.CompanyID != nil && *p.CompanyID == companyID
}
