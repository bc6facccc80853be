package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

func TestDeriveRole(t *testing.T) {
	companyID := uuid.New()

	tests := []struct {
		name string
		user *models.User
		want Role
	}{
		{
			name: "admin without company is super admin",
			user: &models.User{IsAdmin: true},
			want: RoleSuperAdmin,
		},
		{
			name: "admin with company is company admin",
			user: &models.User{IsAdmin: true, CompanyID: &companyID},
			want: RoleCompanyAdmin,
		},
		{
			name: "non-admin with company is member",
			user: &models.User{CompanyID: &companyID},
			want: RoleMember,
		},
		{
			name: "non-admin without company is member",
			user: &models.User{},
			want: RoleMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveRole(tt.user))
		})
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "super_admin", RoleSuperAdmin.String())
	assert.Equal(t, "company_admin", RoleCompanyAdmin.String())
	assert.Equal(t, "member", RoleMember.String())
}

func TestPrincipalIsAdmin(t *testing.T) {
	assert.True(t, (&Principal{Role: RoleSuperAdmin}).IsAdmin())
	assert.True(t, (&Principal{Role: RoleCompanyAdmin}).IsAdmin())
	assert.False(t, (&Principal{Role: RoleMember}).IsAdmin())
}

func TestPrincipalCanAccessCompany(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	superAdmin := &Principal{Role: RoleSuperAdmin}
	assert.True(t, superAdmin.CanAccessCompany(own))
	assert.True(t, superAdmin.CanAccessCompany(other))

	member := &Principal{Role: RoleMember, CompanyID: &own}
	assert.True(t, member.CanAccessCompany(own))
	assert.False(t, member.CanAccessCompany(other))

	// A principal with no company and no super admin tier can access nothing.
	orphan := &Principal{Role: RoleCompanyAdmin}
	assert.False(t, orphan.CanAccessCompany(own))
}
