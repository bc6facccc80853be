package data

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// ImportQuery holds filters for listing import ledger rows.
type ImportQuery struct {
	ImportedBy *uuid.UUID
	Status     *models.ImportStatus
	From       *time.Time
	To         *time.Time
	Sort       Sort
	Page       Page
}

// ImportRepositoryInterface defines database operations for the QA import ledger.
type ImportRepositoryInterface interface {
	GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.QAImport, error)
	List(ctx context.Context, db orm.DB, q ImportQuery) ([]*models.QAImport, int, error)
	Insert(ctx context.Context, db orm.DB, imp *models.QAImport) error
	Update(ctx context.Context, db orm.DB, imp *models.QAImport) error
}

// ImportRepository is the go-pg implementation of ImportRepositoryInterface.
type ImportRepository struct{}

// NewImportRepository creates a new import repository
func NewImportRepository() *ImportRepository {
	return &ImportRepository{}
}

// GetByID retrieves an import row with the importing user
func (r *ImportRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.QAImport, error) {
	imp := new(models.QAImport)
	err := db.ModelContext(ctx, imp).
		Where("qa_import.id = ?", id).
		Relation("ImportedByUser").
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return imp, nil
}

// List retrieves a filtered, paginated list of import rows
func (r *ImportRepository) List(ctx context.Context, db orm.DB, q ImportQuery) ([]*models.QAImport, int, error) {
	var imports []*models.QAImport
	page := q.Page.Normalize()

	query := db.ModelContext(ctx, &imports).
		Relation("ImportedByUser")
	if q.ImportedBy != nil {
		query = query.Where("imported_by = ?", *q.ImportedBy)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.From != nil {
		query = query.Where("imported_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("imported_at <= ?", *q.To)
	}

	total, err := query.Count()
	if err != nil {
		return nil, 0, wrapError(err)
	}

	err = query.
		Order(q.Sort.OrderExpr("imported_at")).
		Limit(page.PerPage).
		Offset(page.Offset()).
		Select()
	if err != nil {
		return nil, 0, wrapError(err)
	}

	return imports, total, nil
}

// Insert creates a new import row
func (r *ImportRepository) Insert(ctx context.Context, db orm.DB, imp *models.QAImport) error {
	_, err := db.ModelContext(ctx, imp).Insert()
	return wrapError(err)
}

// Update saves changes to an import row
func (r *ImportRepository) Update(ctx context.Context, db orm.DB, imp *models.QAImport) error {
	_, err := db.ModelContext(ctx, imp).WherePK().Update()
	return wrapError(err)
}
