package services

import (
	"context"
	"fmt"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// CategoryService handles business logic for categories.
type CategoryService struct {
	db         orm.DB
	tx         data.TxRunner
	categories data.CategoryRepositoryInterface
	sink       activity.Sink
}

// NewCategoryService creates a new category service
func NewCategoryService(
	db orm.DB,
	tx data.TxRunner,
	categories data.CategoryRepositoryInterface,
	sink activity.Sink,
) *CategoryService {
	return &CategoryService{
		db:         db,
		tx:         tx,
		categories: categories,
		sink:       sink,
	}
}

// CreateCategoryInput carries the fields for creating a category.
type CreateCategoryInput struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	IsActive    *bool      `json:"is_active"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryInput carries the updatable category fields.
type UpdateCategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// MoveCategoryInput carries the new parent for a move. A nil parent makes
// the category a root.
type MoveCategoryInput struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// List returns categories of the actor's company with QA pair counts
func (s *CategoryService) List(ctx context.Context, companyID uuid.UUID, q data.CategoryQuery) ([]*models.Category, error) {
	q.CompanyID = companyID
	return s.categories.List(ctx, s.db, q)
}

// Tree returns the category hierarchy of a company: roots with their
// children, each carrying QA pair counts.
func (s *CategoryService) Tree(ctx context.Context, companyID uuid.UUID) ([]*models.Category, error) {
	return s.categories.Tree(ctx, s.db, companyID)
}

// Get returns one category of the given company
func (s *CategoryService) Get(ctx context.Context, companyID, id uuid.UUID) (*models.Category, error) {
	category, err := s.scopedGet(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	count, err := s.categories.CountQAPairs(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	category.QAPairCount = count
	return category, nil
}

// Create adds a category to the actor's company. A parent, when given,
// must belong to the same company.
func (s *CategoryService) Create(ctx context.Context, actor *auth.Principal, companyID uuid.UUID, in CreateCategoryInput) (*models.Category, error) {
	category := &models.Category{
		Name:        in.Name,
		Description: in.Description,
		IsActive:    true,
		ParentID:    in.ParentID,
		CompanyID:   companyID,
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	if in.ParentID != nil {
		if _, err := s.scopedGet(ctx, companyID, *in.ParentID); err != nil {
			return nil, models.NewValidationError("parent category not found")
		}
	}

	err := s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.categories.Insert(ctx, db, category); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionCreate,
			EntityType: "category",
			EntityID:   &category.ID,
			Details:    map[string]interface{}{"name": category.Name},
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Update modifies a category's fields
func (s *CategoryService) Update(ctx context.Context, actor *auth.Principal, companyID, id uuid.UUID, in UpdateCategoryInput) (*models.Category, error) {
	category, err := s.scopedGet(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		category.Name = *in.Name
	}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.categories.Update(ctx, db, category); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionUpdate,
			EntityType: "category",
			EntityID:   &category.ID,
			Details:    map[string]interface{}{"name": category.Name},
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Move reparents a category. A category cannot become its own parent, and
// the new parent must be in the same company. The cycle check covers one
// level of the parent chain.
func (s *CategoryService) Move(ctx context.Context, actor *auth.Principal, companyID, id uuid.UUID, in MoveCategoryInput) (*models.Category, error) {
	category, err := s.scopedGet(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		if *in.ParentID == id {
			return nil, models.NewBadRequestError("a category cannot be its own parent")
		}
		parent, err := s.scopedGet(ctx, companyID, *in.ParentID)
		if err != nil {
			return nil, models.NewValidationError("parent category not found")
		}
		if parent.ParentID != nil && *parent.ParentID == id {
			return nil, models.NewValidationError("move would create a cycle")
		}
	}

	category.ParentID = in.ParentID

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.categories.Update(ctx, db, category); err != nil {
			return err
		}
		details := map[string]interface{}{"name": category.Name}
		if in.ParentID != nil {
			details["parent_id"] = in.ParentID.String()
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionMove,
			EntityType: "category",
			EntityID:   &category.ID,
			Details:    details,
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ToggleActive flips a category's active flag
func (s *CategoryService) ToggleActive(ctx context.Context, actor *auth.Principal, companyID, id uuid.UUID) (*models.Category, error) {
	category, err := s.scopedGet(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	category.IsActive = !category.IsActive

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.categories.Update(ctx, db, category); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionToggle,
			EntityType: "category",
			EntityID:   &category.ID,
			Details:    map[string]interface{}{"is_active": category.IsActive},
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category. Categories that still hold QA pairs or child
// categories cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, actor *auth.Principal, companyID, id uuid.UUID) error {
	category, err := s.scopedGet(ctx, companyID, id)
	if err != nil {
		return err
	}

	pairCount, err := s.categories.CountQAPairs(ctx, s.db, id)
	if err != nil {
		return err
	}
	if pairCount > 0 {
		return models.NewConflictError(fmt.Sprintf("category still has %d QA pair(s)", pairCount))
	}

	childCount, err := s.categories.CountChildren(ctx, s.db, id)
	if err != nil {
		return err
	}
	if childCount > 0 {
		return models.NewConflictError(fmt.Sprintf("category still has %d child categor(ies)", childCount))
	}

	return s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.categories.Delete(ctx, db, id); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionDelete,
			EntityType: "category",
			EntityID:   &id,
			Details:    map[string]interface{}{"name": category.Name},
			CompanyID:  &companyID,
		})
	})
}

// scopedGet loads a category and verifies it belongs to the company. A
// category of another tenant is indistinguishable from a missing one.
func (s *CategoryService) scopedGet(ctx context.Context, companyID, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if category.CompanyID != companyID {
		return nil, data.ErrNotFound
	}
	return category, nil
}
