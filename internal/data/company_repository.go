package data

import (
	"context"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// CompanyQuery holds filters for listing companies.
type CompanyQuery struct {
	IsActive *bool
	Search   string
	Sort     Sort
	Page     Page
}

// CompanyRepositoryInterface defines database operations for companies.
type CompanyRepositoryInterface interface {
	GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Company, error)
	GetActiveByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Company, error)
	GetActiveBySlug(ctx context.Context, db orm.DB, slug string) (*models.Company, error)
	GetActiveByDomain(ctx context.Context, db orm.DB, domain string) (*models.Company, error)
	List(ctx context.Context, db orm.DB, q CompanyQuery) ([]*models.Company, int, error)
	Insert(ctx context.Context, db orm.DB, company *models.Company) error
	Update(ctx context.Context, db orm.DB, company *models.Company) error
	Delete(ctx context.Context, db orm.DB, id uuid.UUID) error
	CountUsers(ctx context.Context, db orm.DB, id uuid.UUID) (int, error)
	LoadCounts(ctx context.Context, db orm.DB, company *models.Company) error
}

// CompanyRepository is the go-pg implementation of CompanyRepositoryInterface.
type CompanyRepository struct{}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository() *CompanyRepository {
	return &CompanyRepository{}
}

// GetByID retrieves a company by its ID
func (r *CompanyRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Company, error) {
	company := new(models.Company)
	err := db.ModelContext(ctx, company).
		Where("id = ?", id).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return company, nil
}

// GetActiveByID retrieves an active company by ID
func (r *CompanyRepository) GetActiveByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Company, error) {
	company := new(models.Company)
	err := db.ModelContext(ctx, company).
		Where("id = ? AND is_active = TRUE", id).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return company, nil
}

// GetActiveBySlug retrieves an active company by slug
func (r *CompanyRepository) GetActiveBySlug(ctx context.Context, db orm.DB, slug string) (*models.Company, error) {
	company := new(models.Company)
	err := db.ModelContext(ctx, company).
		Where("slug = ? AND is_active = TRUE", slug).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return company, nil
}

// GetActiveByDomain retrieves an active company by its public domain
func (r *CompanyRepository) GetActiveByDomain(ctx context.Context, db orm.DB, domain string) (*models.Company, error) {
	company := new(models.Company)
	err := db.ModelContext(ctx, company).
		Where("domain = ? AND is_active = TRUE", domain).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return company, nil
}

// List retrieves a filtered, paginated list of companies with user counts
func (r *CompanyRepository) List(ctx context.Context, db orm.DB, q CompanyQuery) ([]*models.Company, int, error) {
	var companies []*models.Company
	page := q.Page.Normalize()

	query := db.ModelContext(ctx, &companies)
	if q.IsActive != nil {
		query = query.Where("is_active = ?", *q.IsActive)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.WhereGroup(func(sub *orm.Query) (*orm.Query, error) {
			return sub.WhereOr("name ILIKE ?", pattern).
				WhereOr("domain ILIKE ?", pattern), nil
		})
	}

	total, err := query.Count()
	if err != nil {
		return nil, 0, wrapError(err)
	}

	err = query.
		Order(q.Sort.OrderExpr("created_at")).
		Limit(page.PerPage).
		Offset(page.Offset()).
		Select()
	if err != nil {
		return nil, 0, wrapError(err)
	}

	for _, company := range companies {
		count, err := db.ModelContext(ctx, (*models.User)(nil)).
			Where("company_id = ?", company.ID).
			Count()
		if err != nil {
			return nil, 0, wrapError(err)
		}
		company.UserCount = count
	}

	return companies, total, nil
}

// Insert creates a new company
func (r *CompanyRepository) Insert(ctx context.Context, db orm.DB, company *models.Company) error {
	_, err := db.ModelContext(ctx, company).Insert()
	return wrapError(err)
}

// Update saves changes to an existing company
func (r *CompanyRepository) Update(ctx context.Context, db orm.DB, company *models.Company) error {
	_, err := db.ModelContext(ctx, company).WherePK().Update()
	return wrapError(err)
}

// Delete removes a company row
func (r *CompanyRepository) Delete(ctx context.Context, db orm.DB, id uuid.UUID) error {
	res, err := db.ModelContext(ctx, (*models.Company)(nil)).
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

// CountUsers returns the number of users belonging to the company
func (r *CompanyRepository) CountUsers(ctx context.Context, db orm.DB, id uuid.UUID) (int, error) {
	count, err := db.ModelContext(ctx, (*models.User)(nil)).
		Where("company_id = ?", id).
		Count()
	return count, wrapError(err)
}

// LoadCounts populates the user, QA pair and category counts on the company
func (r *CompanyRepository) LoadCounts(ctx context.Context, db orm.DB, company *models.Company) error {
	users, err := r.CountUsers(ctx, db, company.ID)
	if err != nil {
		return err
	}
	pairs, err := db.ModelContext(ctx, (*models.QAPair)(nil)).
		Where("company_id = ?", company.ID).
		Count()
	if err != nil {
		return wrapError(err)
	}
	categories, err := db.ModelContext(ctx, (*models.Category)(nil)).
		Where("company_id = ?", company.ID).
		Count()
	if err != nil {
		return wrapError(err)
	}
	company.UserCount = users
	company.QAPairCount = pairs
	company.CategoryCount = categories
	return nil
}
