package services

import (
	"context"
	"errors"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// TagService handles business logic for tags. Tags are global labels; they
// carry no tenant scoping themselves, but the QA pairs reached through
// them are always filtered to the caller's company.
type TagService struct {
	db   orm.DB
	tx   data.TxRunner
	tags data.TagRepositoryInterface
	sink activity.Sink
}

// NewTagService creates a new tag service
func NewTagService(
	db orm.DB,
	tx data.TxRunner,
	tags data.TagRepositoryInterface,
	sink activity.Sink,
) *TagService {
	return &TagService{
		db:   db,
		tx:   tx,
		tags: tags,
		sink: sink,
	}
}

// TagInput carries the fields for creating or renaming a tag.
type TagInput struct {
	Name string `json:"name" binding:"required"`
}

// List returns all tags with usage counts
func (s *TagService) List(ctx context.Context) ([]*models.Tag, error) {
	return s.tags.List(ctx, s.db)
}

// Get returns one tag
func (s *TagService) Get(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	return s.tags.GetByID(ctx, s.db, id)
}

// QAPairs returns the QA pairs of the actor's company carrying the tag
func (s *TagService) QAPairs(ctx context.Context, companyID, tagID uuid.UUID) ([]*models.QAPair, error) {
	if _, err := s.tags.GetByID(ctx, s.db, tagID); err != nil {
		return nil, err
	}
	pairs, err := s.tags.ListQAPairs(ctx, s.db, tagID)
	if err != nil {
		return nil, err
	}

	scoped := make([]*models.QAPair, 0, len(pairs))
	for _, pair := range pairs {
		if pair.CompanyID == companyID {
			scoped = append(scoped, pair)
		}
	}
	return scoped, nil
}

// Create adds a tag
func (s *TagService) Create(ctx context.Context, actor *auth.Principal, in TagInput) (*models.Tag, error) {
	tag := &models.Tag{Name: in.Name}

	err := s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.tags.Insert(ctx, db, tag); err != nil {
			if errors.Is(err, data.ErrDuplicateRecord) {
				return models.NewConflictError("a tag with this name already exists")
			}
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionCreate,
			EntityType: "tag",
			EntityID:   &tag.ID,
			Details:    map[string]interface{}{"name": tag.Name},
			CompanyID:  actor.CompanyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// Update renames a tag
func (s *TagService) Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in TagInput) (*models.Tag, error) {
	tag, err := s.tags.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	tag.Name = in.Name

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.tags.Update(ctx, db, tag); err != nil {
			if errors.Is(err, data.ErrDuplicateRecord) {
				return models.NewConflictError("a tag with this name already exists")
			}
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionUpdate,
			EntityType: "tag",
			EntityID:   &tag.ID,
			Details:    map[string]interface{}{"name": tag.Name},
			CompanyID:  actor.CompanyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag. Its QA pair associations are detached first in the
// same transaction, so the pairs themselves are untouched.
func (s *TagService) Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error {
	tag, err := s.tags.GetByID(ctx, s.db, id)
	if err != nil {
		return err
	}

	return s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.tags.DetachAll(ctx, db, id); err != nil {
			return err
		}
		if err := s.tags.Delete(ctx, db, id); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionDelete,
			EntityType: "tag",
			EntityID:   &id,
			Details:    map[string]interface{}{"name": tag.Name},
			CompanyID:  actor.CompanyID,
		})
	})
}
