package data

import (
	"context"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// TagRepositoryInterface defines database operations for tags.
type TagRepositoryInterface interface {
	GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Tag, error)
	List(ctx context.Context, db orm.DB) ([]*models.Tag, error)
	Insert(ctx context.Context, db orm.DB, tag *models.Tag) error
	Update(ctx context.Context, db orm.DB, tag *models.Tag) error
	Delete(ctx context.Context, db orm.DB, id uuid.UUID) error
	DetachAll(ctx context.Context, db orm.DB, tagID uuid.UUID) error
	ListQAPairs(ctx context.Context, db orm.DB, tagID uuid.UUID) ([]*models.QAPair, error)
	ExistingIDs(ctx context.Context, db orm.DB, ids []uuid.UUID) ([]uuid.UUID, error)
}

// TagRepository is the go-pg implementation of TagRepositoryInterface.
type TagRepository struct{}

// NewTagRepository creates a new tag repository
func NewTagRepository() *TagRepository {
	return &TagRepository{}
}

// GetByID retrieves a tag by ID
func (r *TagRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Tag, error) {
	tag := new(models.Tag)
	err := db.ModelContext(ctx, tag).
		Where("tag.id = ?", id).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return tag, nil
}

// List retrieves all tags with their QA pair counts
func (r *TagRepository) List(ctx context.Context, db orm.DB) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := db.ModelContext(ctx, &tags).
		Order("name ASC").
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	for _, tag := range tags {
		count, err := db.ModelContext(ctx, (*models.QAPairTag)(nil)).
			Where("tag_id = ?", tag.ID).
			Count()
		if err != nil {
			return nil, wrapError(err)
		}
		tag.QAPairCount = count
	}
	return tags, nil
}

// Insert creates a new tag
func (r *TagRepository) Insert(ctx context.Context, db orm.DB, tag *models.Tag) error {
	_, err := db.ModelContext(ctx, tag).Insert()
	return wrapError(err)
}

// Update saves changes to an existing tag
func (r *TagRepository) Update(ctx context.Context, db orm.DB, tag *models.Tag) error {
	_, err := db.ModelContext(ctx, tag).WherePK().Update()
	return wrapError(err)
}

// Delete removes a tag row
func (r *TagRepository) Delete(ctx context.Context, db orm.DB, id uuid.UUID) error {
	res, err := db.ModelContext(ctx, (*models.Tag)(nil)).
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

// DetachAll removes every QA pair association for the tag
func (r *TagRepository) DetachAll(ctx context.Context, db orm.DB, tagID uuid.UUID) error {
	_, err := db.ModelContext(ctx, (*models.QAPairTag)(nil)).
		Where("tag_id = ?", tagID).
		Delete()
	return wrapError(err)
}

// ListQAPairs retrieves the QA pairs carrying the tag, with their categories
func (r *TagRepository) ListQAPairs(ctx context.Context, db orm.DB, tagID uuid.UUID) ([]*models.QAPair, error) {
	var pairs []*models.QAPair
	err := db.ModelContext(ctx, &pairs).
		Join("JOIN qa_pair_tags AS qt ON qt.qa_pair_id = qa_pair.id").
		Where("qt.tag_id = ?", tagID).
		Relation("Category").
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return pairs, nil
}

// ExistingIDs filters the given tag IDs down to those that exist
func (r *TagRepository) ExistingIDs(ctx context.Context, db orm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var existing []uuid.UUID
	err := db.ModelContext(ctx, (*models.Tag)(nil)).
		Column("id").
		WhereIn("id IN (?)", ids).
		Select(&existing)
	if err != nil {
		return nil, wrapError(err)
	}
	return existing, nil
}
