package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

func TestCategoryServiceMoveToSelf(t *testing.T) {
	categories := new(MockCategoryRepository)
	svc := NewCategoryService(nil, &fakeTxRunner{}, categories, &recordingSink{})

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	category := &models.Category{ID: uuid.New(), Name: "FAQ", CompanyID: companyID}

	categories.On("GetByID", mock.Anything, mock.Anything, category.ID).Return(category, nil)

	_, err := svc.Move(context.Background(), actor, companyID, category.ID, MoveCategoryInput{ParentID: &category.ID})

	var badRequest *models.BadRequestError
	assert.ErrorAs(t, err, &badRequest)
	assert.Contains(t, err.Error(), "its own parent")
}

func TestCategoryServiceMoveCycle(t *testing.T) {
	categories := new(MockCategoryRepository)
	svc := NewCategoryService(nil, &fakeTxRunner{}, categories, &recordingSink{})

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	category := &models.Category{ID: uuid.New(), Name: "Parent", CompanyID: companyID}
	child := &models.Category{ID: uuid.New(), Name: "Child", CompanyID: companyID, ParentID: &category.ID}

	categories.On("GetByID", mock.Anything, mock.Anything, category.ID).Return(category, nil)
	categories.On("GetByID", mock.Anything, mock.Anything, child.ID).Return(child, nil)

	_, err := svc.Move(context.Background(), actor, companyID, category.ID, MoveCategoryInput{ParentID: &child.ID})

	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "cycle")
}

func TestCategoryServiceMoveToRoot(t *testing.T) {
	categories := new(MockCategoryRepository)
	sink := &recordingSink{}
	svc := NewCategoryService(nil, &fakeTxRunner{}, categories, sink)

	companyID := uuid.New()
	parentID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	category := &models.Category{ID: uuid.New(), Name: "Nested", CompanyID: companyID, ParentID: &parentID}

	categories.On("GetByID", mock.Anything, mock.Anything, category.ID).Return(category, nil)
	categories.On("Update", mock.Anything, mock.Anything, category).Return(nil)

	moved, err := svc.Move(context.Background(), actor, companyID, category.ID, MoveCategoryInput{})

	assert.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, models.ActionMove, sink.lastAction())
}

func TestCategoryServiceDeleteWithQAPairs(t *testing.T) {
	categories := new(MockCategoryRepository)
	svc := NewCategoryService(nil, &fakeTxRunner{}, categories, &recordingSink{})

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	category := &models.Category{ID: uuid.New(), Name: "FAQ", CompanyID: companyID}

	categories.On("GetByID", mock.Anything, mock.Anything, category.ID).Return(category, nil)
	categories.On("CountQAPairs", mock.Anything, mock.Anything, category.ID).Return(4, nil)

	err := svc.Delete(context.Background(), actor, companyID, category.ID)

	var conflict *models.ConflictError
	assert.ErrorAs(t, err, &conflict)
	categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestCategoryServiceDeleteWithChildren(t *testing.T) {
	categories := new(MockCategoryRepository)
	svc := NewCategoryService(nil, &fakeTxRunner{}, categories, &recordingSink{})

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	category := &models.Category{ID: uuid.New(), Name: "FAQ", CompanyID: companyID}

	categories.On("GetByID", mock.Anything, mock.Anything, category.ID).Return(category, nil)
	categories.On("CountQAPairs", mock.Anything, mock.Anything, category.ID).Return(0, nil)
	categories.On("CountChildren", mock.Anything, mock.Anything, category.ID).Return(2, nil)

	err := svc.Delete(context.Background(), actor, companyID, category.ID)

	var conflict *models.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestCategoryServiceCrossTenantReadsAsNotFound(t *testing.T) {
	categories := new(MockCategoryRepository)
	svc := NewCategoryService(nil, &fakeTxRunner{}, categories, &recordingSink{})

	companyID := uuid.New()
	otherCompany := uuid.New()
	category := &models.Category{ID: uuid.New(), Name: "Foreign", CompanyID: otherCompany}

	categories.On("GetByID", mock.Anything, mock.Anything, category.ID).Return(category, nil)

	_, err := svc.Get(context.Background(), companyID, category.ID)

	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestCategoryServiceCreateWithMissingParent(t *testing.T) {
	categories := new(MockCategoryRepository)
	svc := NewCategoryService(nil, &fakeTxRunner{}, categories, &recordingSink{})

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	parentID := uuid.New()

	categories.On("GetByID", mock.Anything, mock.Anything, parentID).Return(nil, data.ErrNotFound)

	_, err := svc.Create(context.Background(), actor, companyID, CreateCategoryInput{
		Name:     "Orphan",
		ParentID: &parentID,
	})

	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "parent category not found")
}
