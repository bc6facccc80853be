package data

import (
	"context"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// QA pair list sorting is restricted to these fields.
var qaPairSortFields = map[string]bool{
	"question":   true,
	"priority":   true,
	"is_active":  true,
	"created_at": true,
	"updated_at": true,
}

// AllowedQAPairSortField reports whether field may be used to sort QA pair lists.
func AllowedQAPairSortField(field string) bool {
	return qaPairSortFields[field]
}

// QAPairQuery holds filters for listing QA pairs within a company.
type QAPairQuery struct {
	CompanyID  uuid.UUID
	CategoryID *uuid.UUID
	IsActive   *bool
	TagID      *uuid.UUID
	Search     string
	Sort       Sort
	Page       Page
}

// PublicQAPairQuery holds filters for the unauthenticated chatbot surface.
// Only active pairs are ever returned, ordered by descending priority.
type PublicQAPairQuery struct {
	CompanyID  uuid.UUID
	CategoryID *uuid.UUID
	Search     string
}

// QAPairRepositoryInterface defines database operations for QA pairs, their
// history and their tag associations.
type QAPairRepositoryInterface interface {
	GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.QAPair, error)
	GetByIDs(ctx context.Context, db orm.DB, ids []uuid.UUID) ([]*models.QAPair, error)
	List(ctx context.Context, db orm.DB, q QAPairQuery) ([]*models.QAPair, int, error)
	ListAll(ctx context.Context, db orm.DB, q QAPairQuery) ([]*models.QAPair, error)
	ListPublic(ctx context.Context, db orm.DB, q PublicQAPairQuery) ([]*models.QAPair, error)
	Insert(ctx context.Context, db orm.DB, pair *models.QAPair) error
	Update(ctx context.Context, db orm.DB, pair *models.QAPair) error
	Delete(ctx context.Context, db orm.DB, ids []uuid.UUID) error
	SetActive(ctx context.Context, db orm.DB, ids []uuid.UUID, active bool, updatedBy uuid.UUID) error
	AttachTags(ctx context.Context, db orm.DB, pairID uuid.UUID, tagIDs []uuid.UUID) error
	ReplaceTags(ctx context.Context, db orm.DB, pairID uuid.UUID, tagIDs []uuid.UUID) error
	DetachTags(ctx context.Context, db orm.DB, pairID uuid.UUID) error
	InsertHistory(ctx context.Context, db orm.DB, history *models.QAPairHistory) error
	ListHistory(ctx context.Context, db orm.DB, pairID uuid.UUID) ([]*models.QAPairHistory, error)
	GetHistoryByID(ctx context.Context, db orm.DB, historyID uuid.UUID) (*models.QAPairHistory, error)
}

// QAPairRepository is the go-pg implementation of QAPairRepositoryInterface.
type QAPairRepository struct{}

// NewQAPairRepository creates a new QA pair repository
func NewQAPairRepository() *QAPairRepository {
	return &QAPairRepository{}
}

// GetByID retrieves a QA pair with its category and tags
func (r *QAPairRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.QAPair, error) {
	pair := new(models.QAPair)
	err := db.ModelContext(ctx, pair).
		Where("qa_pair.id = ?", id).
		Relation("Category").
		Relation("Tags").
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return pair, nil
}

// GetByIDs retrieves QA pairs by ID list
func (r *QAPairRepository) GetByIDs(ctx context.Context, db orm.DB, ids []uuid.UUID) ([]*models.QAPair, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var pairs []*models.QAPair
	err := db.ModelContext(ctx, &pairs).
		WhereIn("qa_pair.id IN (?)", ids).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return pairs, nil
}

func applyQAPairFilters(query *orm.Query, q QAPairQuery) *orm.Query {
	query = query.Where("qa_pair.company_id = ?", q.CompanyID)
	if q.CategoryID != nil {
		query = query.Where("qa_pair.category_id = ?", *q.CategoryID)
	}
	if q.IsActive != nil {
		query = query.Where("qa_pair.is_active = ?", *q.IsActive)
	}
	if q.TagID != nil {
		query = query.Join("JOIN qa_pair_tags AS qt ON qt.qa_pair_id = qa_pair.id").
			Where("qt.tag_id = ?", *q.TagID)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.WhereGroup(func(sub *orm.Query) (*orm.Query, error) {
			return sub.WhereOr("qa_pair.question ILIKE ?", pattern).
				WhereOr("qa_pair.answer ILIKE ?", pattern), nil
		})
	}
	return query
}

// List retrieves a filtered, paginated list of QA pairs
func (r *QAPairRepository) List(ctx context.Context, db orm.DB, q QAPairQuery) ([]*models.QAPair, int, error) {
	var pairs []*models.QAPair
	page := q.Page.Normalize()

	query := applyQAPairFilters(db.ModelContext(ctx, &pairs), q).
		Relation("Category").
		Relation("Tags")

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

	return pairs, total, nil
}

// ListAll retrieves every QA pair matching the filters, without pagination.
// Used by search and CSV export.
func (r *QAPairRepository) ListAll(ctx context.Context, db orm.DB, q QAPairQuery) ([]*models.QAPair, error) {
	var pairs []*models.QAPair
	err := applyQAPairFilters(db.ModelContext(ctx, &pairs), q).
		Relation("Category").
		Relation("Tags").
		Order("created_at DESC").
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return pairs, nil
}

// ListPublic retrieves active QA pairs for the unauthenticated chatbot
// surface, ordered by descending priority.
func (r *QAPairRepository) ListPublic(ctx context.Context, db orm.DB, q PublicQAPairQuery) ([]*models.QAPair, error) {
	var pairs []*models.QAPair
	query := db.ModelContext(ctx, &pairs).
		Where("qa_pair.company_id = ?", q.CompanyID).
		Where("qa_pair.is_active = TRUE").
		Relation("Category")
	if q.CategoryID != nil {
		query = query.Where("qa_pair.category_id = ?", *q.CategoryID)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.WhereGroup(func(sub *orm.Query) (*orm.Query, error) {
			return sub.WhereOr("qa_pair.question ILIKE ?", pattern).
				WhereOr("qa_pair.answer ILIKE ?", pattern), nil
		})
	}
	err := query.Order("priority DESC").Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return pairs, nil
}

// Insert creates a new QA pair
func (r *QAPairRepository) Insert(ctx context.Context, db orm.DB, pair *models.QAPair) error {
	_, err := db.ModelContext(ctx, pair).Insert()
	return wrapError(err)
}

// Update saves changes to an existing QA pair
func (r *QAPairRepository) Update(ctx context.Context, db orm.DB, pair *models.QAPair) error {
	_, err := db.ModelContext(ctx, pair).WherePK().Update()
	return wrapError(err)
}

// Delete removes the QA pairs with the given IDs
func (r *QAPairRepository) Delete(ctx context.Context, db orm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.ModelContext(ctx, (*models.QAPair)(nil)).
		WhereIn("id IN (?)", ids).
		Delete()
	return wrapError(err)
}

// SetActive updates the active flag on the QA pairs with the given IDs
func (r *QAPairRepository) SetActive(ctx context.Context, db orm.DB, ids []uuid.UUID, active bool, updatedBy uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.ModelContext(ctx, (*models.QAPair)(nil)).
		Set("is_active = ?", active).
		Set("updated_by = ?", updatedBy).
		WhereIn("id IN (?)", ids).
		Update()
	return wrapError(err)
}

// AttachTags adds tag associations to a QA pair
func (r *QAPairRepository) AttachTags(ctx context.Context, db orm.DB, pairID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	joins := make([]*models.QAPairTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		joins = append(joins, &models.QAPairTag{QAPairID: pairID, TagID: tagID})
	}
	_, err := db.ModelContext(ctx, &joins).Insert()
	return wrapError(err)
}

// ReplaceTags overwrites a QA pair's tag associations with the given set
func (r *QAPairRepository) ReplaceTags(ctx context.Context, db orm.DB, pairID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := r.DetachTags(ctx, db, pairID); err != nil {
		return err
	}
	return r.AttachTags(ctx, db, pairID, tagIDs)
}

// DetachTags removes all tag associations from a QA pair
func (r *QAPairRepository) DetachTags(ctx context.Context, db orm.DB, pairID uuid.UUID) error {
	_, err := db.ModelContext(ctx, (*models.QAPairTag)(nil)).
		Where("qa_pair_id = ?", pairID).
		Delete()
	return wrapError(err)
}

// InsertHistory appends a history snapshot
func (r *QAPairRepository) InsertHistory(ctx context.Context, db orm.DB, history *models.QAPairHistory) error {
	_, err := db.ModelContext(ctx, history).Insert()
	return wrapError(err)
}

// ListHistory retrieves a QA pair's history, newest first
func (r *QAPairRepository) ListHistory(ctx context.Context, db orm.DB, pairID uuid.UUID) ([]*models.QAPairHistory, error) {
	var history []*models.QAPairHistory
	err := db.ModelContext(ctx, &history).
		Where("qa_pair_id = ?", pairID).
		Relation("ChangedByUser").
		Order("changed_at DESC").
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return history, nil
}

// GetHistoryByID retrieves a single history row
func (r *QAPairRepository) GetHistoryByID(ctx context.Context, db orm.DB, historyID uuid.UUID) (*models.QAPairHistory, error) {
	history := new(models.QAPairHistory)
	err := db.ModelContext(ctx, history).
		Where("qa_pair_history.id = ?", historyID).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return history, nil
}
