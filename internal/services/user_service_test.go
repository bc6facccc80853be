package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

func superAdminPrincipal() *auth.Principal {
	return &auth.Principal{
		UserID: uuid.New(),
		Role:   auth.RoleSuperAdmin,
	}
}

func companyAdminPrincipal(companyID uuid.UUID) *auth.Principal {
	return &auth.Principal{
		UserID:    uuid.New(),
		CompanyID: &companyID,
		Role:      auth.RoleCompanyAdmin,
	}
}

func TestUserServiceDeleteSelf(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	sink := &recordingSink{}
	svc := NewUserService(nil, &fakeTxRunner{}, users, sessions, sink)

	actor := superAdminPrincipal()

	err := svc.Delete(context.Background(), actor, actor.UserID)

	var conflict *models.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Empty(t, sink.entries)
	users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserServiceDeleteLastAdmin(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	sink := &recordingSink{}
	svc := NewUserService(nil, &fakeTxRunner{}, users, sessions, sink)

	actor := superAdminPrincipal()
	target := &models.User{ID: uuid.New(), IsAdmin: true}

	users.On("GetByID", mock.Anything, mock.Anything, target.ID).Return(target, nil)
	users.On("CountAdmins", mock.Anything, mock.Anything).Return(1, nil)

	err := svc.Delete(context.Background(), actor, target.ID)

	var conflict *models.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Contains(t, err.Error(), "last admin")
	users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserServiceDeleteRevokesSessions(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	sink := &recordingSink{}
	svc := NewUserService(nil, &fakeTxRunner{}, users, sessions, sink)

	companyID := uuid.New()
	actor := superAdminPrincipal()
	target := &models.User{ID: uuid.New(), Email: "member@acme.test", CompanyID: &companyID}

	users.On("GetByID", mock.Anything, mock.Anything, target.ID).Return(target, nil)
	sessions.On("RevokeAllForUser", mock.Anything, mock.Anything, target.ID).Return(nil)
	users.On("Delete", mock.Anything, mock.Anything, target.ID).Return(nil)

	err := svc.Delete(context.Background(), actor, target.ID)

	assert.NoError(t, err)
	sessions.AssertExpectations(t)
	assert.Equal(t, models.ActionDelete, sink.lastAction())
	assert.Equal(t, &companyID, sink.entries[0].CompanyID)
}

func TestUserServiceToggleAdminSelf(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	svc := NewUserService(nil, &fakeTxRunner{}, users, sessions, &recordingSink{})

	actor := superAdminPrincipal()

	_, err := svc.ToggleAdmin(context.Background(), actor, actor.UserID)

	var conflict *models.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestUserServiceToggleAdminDemoteLastAdmin(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	svc := NewUserService(nil, &fakeTxRunner{}, users, sessions, &recordingSink{})

	actor := superAdminPrincipal()
	target := &models.User{ID: uuid.New(), IsAdmin: true}

	users.On("GetByID", mock.Anything, mock.Anything, target.ID).Return(target, nil)
	users.On("CountAdmins", mock.Anything, mock.Anything).Return(1, nil)

	_, err := svc.ToggleAdmin(context.Background(), actor, target.ID)

	var conflict *models.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestUserServiceToggleAdminPromotesAndRevokes(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	sink := &recordingSink{}
	svc := NewUserService(nil, &fakeTxRunner{}, users, sessions, sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	target := &models.User{ID: uuid.New(), CompanyID: &companyID}

	users.On("GetByID", mock.Anything, mock.Anything, target.ID).Return(target, nil)
	users.On("Update", mock.Anything, mock.Anything, target).Return(nil)
	sessions.On("RevokeAllForUser", mock.Anything, mock.Anything, target.ID).Return(nil)

	toggled, err := svc.ToggleAdmin(context.Background(), actor, target.ID)

	assert.NoError(t, err)
	assert.True(t, toggled.IsAdmin)
	sessions.AssertExpectations(t)
	assert.Equal(t, models.ActionToggleAdmin, sink.lastAction())
}

func TestUserServiceCompanyAdminCannotManage(t *testing.T) {
	companyID := uuid.New()
	otherCompany := uuid.New()

	testCases := []struct {
		name   string
		target *models.User
	}{
		{
			name:   "super admin target",
			target: &models.User{ID: uuid.New(), IsAdmin: true},
		},
		{
			name:   "other company target",
			target: &models.User{ID: uuid.New(), CompanyID: &otherCompany},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			users := new(MockUserRepository)
			sessions := new(MockSessionRepository)
			svc := NewUserService(nil, &fakeTxRunner{}, users, sessions, &recordingSink{})

			actor := companyAdminPrincipal(companyID)
			users.On("GetByID", mock.Anything, mock.Anything, tc.target.ID).Return(tc.target, nil)

			_, err := svc.Get(context.Background(), actor, tc.target.ID)

			var forbidden *models.ForbiddenError
			assert.ErrorAs(t, err, &forbidden)
		})
	}
}

func TestUserServiceCreatePinsCompanyAdminToOwnCompany(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	sink := &recordingSink{}
	svc := NewUserService(nil, &fakeTxRunner{}, users, sessions, sink)

	companyID := uuid.New()
	otherCompany := uuid.New()
	actor := companyAdminPrincipal(companyID)

	users.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.CompanyID != nil && *u.CompanyID == companyID
	})).Return(nil)

	created, err := svc.Create(context.Background(), actor, CreateUserInput{
		Name:      "New Member",
		Email:     "new@acme.test",
		Password:  "password123",
		CompanyID: &otherCompany,
	})

	assert.NoError(t, err)
	assert.Equal(t, companyID, *created.CompanyID)
	assert.Equal(t, models.ActionCreate, sink.lastAction())
}

func TestUserServiceCreateMemberWithoutCompany(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	svc := NewUserService(nil, &fakeTxRunner{}, users, sessions, &recordingSink{})

	actor := superAdminPrincipal()

	_, err := svc.Create(context.Background(), actor, CreateUserInput{
		Name:     "Floating Member",
		Email:    "floating@test",
		Password: "password123",
		IsAdmin:  false,
	})

	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
}
