package data

import (
	"context"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// CategoryQuery holds filters for listing categories within a company.
type CategoryQuery struct {
	CompanyID    uuid.UUID
	IsActive     *bool
	ParentID     *uuid.UUID
	RootOnly     bool
	WithChildren bool
}

// CategoryRepositoryInterface defines database operations for categories.
type CategoryRepositoryInterface interface {
	GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, db orm.DB, q CategoryQuery) ([]*models.Category, error)
	Tree(ctx context.Context, db orm.DB, companyID uuid.UUID) ([]*models.Category, error)
	Insert(ctx context.Context, db orm.DB, category *models.Category) error
	Update(ctx context.Context, db orm.DB, category *models.Category) error
	Delete(ctx context.Context, db orm.DB, id uuid.UUID) error
	CountQAPairs(ctx context.Context, db orm.DB, id uuid.UUID) (int, error)
	CountChildren(ctx context.Context, db orm.DB, id uuid.UUID) (int, error)
}

// CategoryRepository is the go-pg implementation of CategoryRepositoryInterface.
type CategoryRepository struct{}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{}
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Category, error) {
	category := new(models.Category)
	err := db.ModelContext(ctx, category).
		Where("category.id = ?", id).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return category, nil
}

// List retrieves categories for a company with QA pair counts
func (r *CategoryRepository) List(ctx context.Context, db orm.DB, q CategoryQuery) ([]*models.Category, error) {
	var categories []*models.Category

	query := db.ModelContext(ctx, &categories).
		Where("category.company_id = ?", q.CompanyID)
	if q.IsActive != nil {
		query = query.Where("category.is_active = ?", *q.IsActive)
	}
	if q.ParentID != nil {
		query = query.Where("category.parent_id = ?", *q.ParentID)
	}
	if q.RootOnly {
		query = query.Where("category.parent_id IS NULL")
	}
	if q.WithChildren {
		query = query.Relation("Children")
	}

	err := query.Order("name ASC").Select()
	if err != nil {
		return nil, wrapError(err)
	}

	if err := r.loadQAPairCounts(ctx, db, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Tree retrieves root categories with their children, both carrying QA pair
// counts.
func (r *CategoryRepository) Tree(ctx context.Context, db orm.DB, companyID uuid.UUID) ([]*models.Category, error) {
	var roots []*models.Category
	err := db.ModelContext(ctx, &roots).
		Where("category.company_id = ?", companyID).
		Where("category.parent_id IS NULL").
		Relation("Children").
		Order("name ASC").
		Select()
	if err != nil {
		return nil, wrapError(err)
	}

	if err := r.loadQAPairCounts(ctx, db, roots); err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := r.loadQAPairCounts(ctx, db, root.Children); err != nil {
			return nil, err
		}
	}
	return roots, nil
}

func (r *CategoryRepository) loadQAPairCounts(ctx context.Context, db orm.DB, categories []*models.Category) error {
	for _, category := range categories {
		count, err := r.CountQAPairs(ctx, db, category.ID)
		if err != nil {
			return err
		}
		category.QAPairCount = count
	}
	return nil
}

// Insert creates a new category
func (r *CategoryRepository) Insert(ctx context.Context, db orm.DB, category *models.Category) error {
	_, err := db.ModelContext(ctx, category).Insert()
	return wrapError(err)
}

// Update saves changes to an existing category
func (r *CategoryRepository) Update(ctx context.Context, db orm.DB, category *models.Category) error {
	_, err := db.ModelContext(ctx, category).WherePK().Update()
	return wrapError(err)
}

// Delete removes a category row
func (r *CategoryRepository) Delete(ctx context.Context, db orm.DB, id uuid.UUID) error {
	res, err := db.ModelContext(ctx, (*models.Category)(nil)).
		Where("id = ?", id).
		Delete()
	if err != nil {
		return wrapError(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountQAPairs returns the number of QA pairs owned by the category
func (r *CategoryRepository) CountQAPairs(ctx context.Context, db orm.DB, id uuid.UUID) (int, error) {
	count, err := db.ModelContext(ctx, (*models.QAPair)(nil)).
		Where("category_id = ?", id).
		Count()
	return count, wrapError(err)
}

// CountChildren returns the number of direct child categories
func (r *CategoryRepository) CountChildren(ctx context.Context, db orm.DB, id uuid.UUID) (int, error) {
	count, err := db.ModelContext(ctx, (*models.Category)(nil)).
		Where("parent_id = ?", id).
		Count()
	return count, wrapError(err)
}
