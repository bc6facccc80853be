package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/observability"
)

// Answers may carry formatting; questions are plain text.
var (
	answerPolicy   = bluemonday.UGCPolicy()
	questionPolicy = bluemonday.StrictPolicy()
)

// MinSearchLength is the shortest accepted search term.
const MinSearchLength = 2

// QAPairService handles business logic for QA pairs, their history, tags
// and bulk operations.
type QAPairService struct {
	db         orm.DB
	tx         data.TxRunner
	pairs      data.QAPairRepositoryInterface
	categories data.CategoryRepositoryInterface
	tags       data.TagRepositoryInterface
	imports    data.ImportRepositoryInterface
	sink       activity.Sink
	metrics    *observability.Metrics
}

// NewQAPairService creates a new QA pair service
func NewQAPairService(
	db orm.DB,
	tx data.TxRunner,
	pairs data.QAPairRepositoryInterface,
	categories data.CategoryRepositoryInterface,
	tags data.TagRepositoryInterface,
	imports data.ImportRepositoryInterface,
	sink activity.Sink,
	metrics *observability.Metrics,
) *QAPairService {
	return &QAPairService{
		db:         db,
		tx:         tx,
		pairs:      pairs,
		categories: categories,
		tags:       tags,
		imports:    imports,
		sink:       sink,
		metrics:    metrics,
	}
}

// CreateQAPairInput carries the fields for creating a QA pair.
type CreateQAPairInput struct {
	Question   string                 `json:"question" binding:"required"`
	Answer     string                 `json:"answer" binding:"required"`
	CategoryID *uuid.UUID             `json:"category_id"`
	IsActive   *bool                  `json:"is_active"`
	Priority   int                    `json:"priority"`
	Metadata   map[string]interface{} `json:"metadata"`
	TagIDs     []uuid.UUID            `json:"tag_ids"`
}

// UpdateQAPairInput carries the updatable QA pair fields. A non-nil TagIDs
// replaces the full tag set.
type UpdateQAPairInput struct {
	Question   *string                `json:"question"`
	Answer     *string                `json:"answer"`
	CategoryID *uuid.UUID             `json:"category_id"`
	IsActive   *bool                  `json:"is_active"`
	Priority   *int                   `json:"priority"`
	Metadata   map[string]interface{} `json:"metadata"`
	TagIDs     []uuid.UUID            `json:"tag_ids"`
}

// BulkIDsInput carries the targets of a bulk delete.
type BulkIDsInput struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// BulkToggleInput carries the targets and desired state of a bulk toggle.
type BulkToggleInput struct {
	IDs      []uuid.UUID `json:"ids" binding:"required,min=1"`
	IsActive bool        `json:"is_active"`
}

// ImportItem is one QA pair inside a bulk import payload.
type ImportItem struct {
	Question   string      `json:"question" binding:"required"`
	Answer     string      `json:"answer" binding:"required"`
	CategoryID *uuid.UUID  `json:"category_id"`
	IsActive   *bool       `json:"is_active"`
	Priority   int         `json:"priority"`
	TagIDs     []uuid.UUID `json:"tag_ids"`
}

// BulkImportInput carries a bulk import payload.
type BulkImportInput struct {
	Filename string       `json:"filename"`
	Items    []ImportItem `json:"items" binding:"required,min=1,dive"`
}

// List returns QA pairs of a company, filtered and paginated
func (s *QAPairService) List(ctx context.Context, companyID uuid.UUID, q data.QAPairQuery) ([]*models.QAPair, int, error) {
	q.CompanyID = companyID
	return s.pairs.List(ctx, s.db, q)
}

// Get returns one QA pair of the company with its category and tags
func (s *QAPairService) Get(ctx context.Context, companyID, id uuid.UUID) (*models.QAPair, error) {
	return s.scopedGet(ctx, companyID, id)
}

// Create adds a QA pair. Content is sanitized, the category must belong to
// the same company and all tags must exist.
func (s *QAPairService) Create(ctx context.Context, actor *auth.Principal, companyID uuid.UUID, in CreateQAPairInput) (*models.QAPair, error) {
	question, answer, err := sanitizeContent(in.Question, in.Answer)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, companyID, in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkTags(ctx, in.TagIDs); err != nil {
		return nil, err
	}

	pair := &models.QAPair{
		Question:   question,
		Answer:     answer,
		CategoryID: in.CategoryID,
		IsActive:   true,
		Priority:   in.Priority,
		Metadata:   in.Metadata,
		CreatedBy:  &actor.UserID,
		UpdatedBy:  &actor.UserID,
		CompanyID:  companyID,
	}
	if in.IsActive != nil {
		pair.IsActive = *in.IsActive
	}

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.pairs.Insert(ctx, db, pair); err != nil {
			return err
		}
		if len(in.TagIDs) > 0 {
			if err := s.pairs.AttachTags(ctx, db, pair.ID, in.TagIDs); err != nil {
				return err
			}
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionCreate,
			EntityType: "qa_pair",
			EntityID:   &pair.ID,
			Details:    map[string]interface{}{"question": pair.Question},
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.scopedGet(ctx, companyID, pair.ID)
}

// Update modifies a QA pair. The pre-change content is snapshotted into
// history in the same transaction.
func (s *QAPairService) Update(ctx context.Context, actor *auth.Principal, companyID, id uuid.UUID, in UpdateQAPairInput) (*models.QAPair, error) {
	pair, err := s.scopedGet(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	snapshot := pair.Snapshot(&actor.UserID, models.ChangeTypeUpdate)

	if in.Question != nil {
		question := strings.TrimSpace(questionPolicy.Sanitize(*in.Question))
		if question == "" {
			return nil, models.NewValidationError("question cannot be empty")
		}
		pair.Question = question
	}
	if in.Answer != nil {
		answer := strings.TrimSpace(answerPolicy.Sanitize(*in.Answer))
		if answer == "" {
			return nil, models.NewValidationError("answer cannot be empty")
		}
		pair.Answer = answer
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, companyID, in.CategoryID); err != nil {
			return nil, err
		}
		pair.CategoryID = in.CategoryID
	}
	if in.IsActive != nil {
		pair.IsActive = *in.IsActive
	}
	if in.Priority != nil {
		pair.Priority = *in.Priority
	}
	if in.Metadata != nil {
		pair.Metadata = in.Metadata
	}
	if in.TagIDs != nil {
		if err := s.checkTags(ctx, in.TagIDs); err != nil {
			return nil, err
		}
	}
	pair.UpdatedBy = &actor.UserID

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.pairs.InsertHistory(ctx, db, snapshot); err != nil {
			return err
		}
		if err := s.pairs.Update(ctx, db, pair); err != nil {
			return err
		}
		if in.TagIDs != nil {
			if err := s.pairs.ReplaceTags(ctx, db, pair.ID, in.TagIDs); err != nil {
				return err
			}
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionUpdate,
			EntityType: "qa_pair",
			EntityID:   &pair.ID,
			Details:    map[string]interface{}{"question": pair.Question},
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.scopedGet(ctx, companyID, pair.ID)
}

// Delete removes a QA pair. A delete snapshot is written first; history
// rows survive the pair.
func (s *QAPairService) Delete(ctx context.Context, actor *auth.Principal, companyID, id uuid.UUID) error {
	pair, err := s.scopedGet(ctx, companyID, id)
	if err != nil {
		return err
	}

	return s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.pairs.InsertHistory(ctx, db, pair.Snapshot(&actor.UserID, models.ChangeTypeDelete)); err != nil {
			return err
		}
		if err := s.pairs.DetachTags(ctx, db, pair.ID); err != nil {
			return err
		}
		if err := s.pairs.Delete(ctx, db, []uuid.UUID{pair.ID}); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionDelete,
			EntityType: "qa_pair",
			EntityID:   &pair.ID,
			Details:    map[string]interface{}{"question": pair.Question},
			CompanyID:  &companyID,
		})
	})
}

// ToggleActive flips a QA pair's active flag. Toggles write no history.
func (s *QAPairService) ToggleActive(ctx context.Context, actor *auth.Principal, companyID, id uuid.UUID) (*models.QAPair, error) {
	pair, err := s.scopedGet(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	pair.IsActive = !pair.IsActive
	pair.UpdatedBy = &actor.UserID

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.pairs.Update(ctx, db, pair); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionToggle,
			EntityType: "qa_pair",
			EntityID:   &pair.ID,
			Details:    map[string]interface{}{"is_active": pair.IsActive},
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// BulkDelete removes several QA pairs in one transaction with one
// aggregate activity row. Every pair gets its own delete snapshot. IDs of
// other companies are rejected wholesale.
func (s *QAPairService) BulkDelete(ctx context.Context, actor *auth.Principal, companyID uuid.UUID, in BulkIDsInput) (int, error) {
	targets, err := s.scopedGetMany(ctx, companyID, in.IDs)
	if err != nil {
		return 0, err
	}

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		for _, pair := range targets {
			if err := s.pairs.InsertHistory(ctx, db, pair.Snapshot(&actor.UserID, models.ChangeTypeDelete)); err != nil {
				return err
			}
			if err := s.pairs.DetachTags(ctx, db, pair.ID); err != nil {
				return err
			}
		}
		if err := s.pairs.Delete(ctx, db, in.IDs); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionBulkDelete,
			EntityType: "qa_pair",
			Details:    map[string]interface{}{"count": len(targets)},
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return 0, err
	}
	return len(targets), nil
}

// BulkToggle sets the active flag on several QA pairs in one transaction
// with one aggregate activity row. Like single toggles it writes no
// history.
func (s *QAPairService) BulkToggle(ctx context.Context, actor *auth.Principal, companyID uuid.UUID, in BulkToggleInput) (int, error) {
	targets, err := s.scopedGetMany(ctx, companyID, in.IDs)
	if err != nil {
		return 0, err
	}

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.pairs.SetActive(ctx, db, in.IDs, in.IsActive, actor.UserID); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionBulkToggle,
			EntityType: "qa_pair",
			Details:    map[string]interface{}{"count": len(targets), "is_active": in.IsActive},
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return 0, err
	}
	return len(targets), nil
}

// BulkImport creates QA pairs from a prepared payload. The import is
// tracked in the qa_imports ledger: the row is created as processing, the
// pairs are inserted in one transaction, and the row moves to completed or
// failed. A failed import leaves no pairs behind but keeps its ledger row.
func (s *QAPairService) BulkImport(ctx context.Context, actor *auth.Principal, companyID uuid.UUID, in BulkImportInput) (*models.QAImport, error) {
	filename := in.Filename
	if filename == "" {
		filename = fmt.Sprintf("import_%s.json", time.Now().Format("2006-01-02_150405"))
	}

	imp := &models.QAImport{
		Filename:    filename,
		ImportedBy:  actor.UserID,
		RecordCount: len(in.Items),
		Status:      models.ImportStatusProcessing,
	}
	if err := s.imports.Insert(ctx, s.db, imp); err != nil {
		return nil, err
	}

	err := s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		for i, item := range in.Items {
			question, answer, err := sanitizeContent(item.Question, item.Answer)
			if err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			if err := s.checkCategory(ctx, companyID, item.CategoryID); err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			if err := s.checkTags(ctx, item.TagIDs); err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}

			pair := &models.QAPair{
				Question:   question,
				Answer:     answer,
				CategoryID: item.CategoryID,
				IsActive:   true,
				Priority:   item.Priority,
				CreatedBy:  &actor.UserID,
				UpdatedBy:  &actor.UserID,
				CompanyID:  companyID,
			}
			if item.IsActive != nil {
				pair.IsActive = *item.IsActive
			}

			if err := s.pairs.Insert(ctx, db, pair); err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			if len(item.TagIDs) > 0 {
				if err := s.pairs.AttachTags(ctx, db, pair.ID, item.TagIDs); err != nil {
					return fmt.Errorf("item %d: %w", i+1, err)
				}
			}
		}

		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionBulkImport,
			EntityType: "qa_pair",
			EntityID:   &imp.ID,
			Details:    map[string]interface{}{"filename": filename, "count": len(in.Items)},
			CompanyID:  &companyID,
		})
	})

	if err != nil {
		imp.Status = models.ImportStatusFailed
		imp.ErrorMessage = err.Error()
		if updateErr := s.imports.Update(ctx, s.db, imp); updateErr != nil {
			return nil, updateErr
		}
		s.metrics.RecordImportProcessed(string(models.ImportStatusFailed))
		return imp, err
	}

	imp.Status = models.ImportStatusCompleted
	if err := s.imports.Update(ctx, s.db, imp); err != nil {
		return nil, err
	}
	s.metrics.RecordImportProcessed(string(models.ImportStatusCompleted))
	return imp, nil
}

// ListImports returns the bulk import ledger
func (s *QAPairService) ListImports(ctx context.Context, q data.ImportQuery) ([]*models.QAImport, int, error) {
	return s.imports.List(ctx, s.db, q)
}

// GetImport returns one import ledger row
func (s *QAPairService) GetImport(ctx context.Context, id uuid.UUID) (*models.QAImport, error) {
	return s.imports.GetByID(ctx, s.db, id)
}

// History returns a QA pair's snapshots, newest first
func (s *QAPairService) History(ctx context.Context, companyID, id uuid.UUID) ([]*models.QAPairHistory, error) {
	if _, err := s.scopedGet(ctx, companyID, id); err != nil {
		return nil, err
	}
	return s.pairs.ListHistory(ctx, s.db, id)
}

// Restore copies a history snapshot's content back onto the pair. The
// current content is snapshotted first as update_before_restore, so a
// restore can itself be undone.
func (s *QAPairService) Restore(ctx context.Context, actor *auth.Principal, companyID, pairID, historyID uuid.UUID) (*models.QAPair, error) {
	pair, err := s.scopedGet(ctx, companyID, pairID)
	if err != nil {
		return nil, err
	}

	history, err := s.pairs.GetHistoryByID(ctx, s.db, historyID)
	if err != nil {
		return nil, err
	}
	if history.QAPairID != pairID {
		return nil, data.ErrNotFound
	}

	preRestore := pair.Snapshot(&actor.UserID, models.ChangeTypeUpdateBeforeRestore)

	pair.Question = history.Question
	pair.Answer = history.Answer
	pair.UpdatedBy = &actor.UserID

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.pairs.InsertHistory(ctx, db, preRestore); err != nil {
			return err
		}
		if err := s.pairs.Update(ctx, db, pair); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionRestore,
			EntityType: "qa_pair",
			EntityID:   &pair.ID,
			Details:    map[string]interface{}{"history_id": historyID.String()},
			CompanyID:  &companyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.scopedGet(ctx, companyID, pair.ID)
}

// Search finds QA pairs whose question or answer matches the term. The
// search itself is recorded as an activity with the term and result count.
func (s *QAPairService) Search(ctx context.Context, actor *auth.Principal, companyID uuid.UUID, term string, q data.QAPairQuery) ([]*models.QAPair, error) {
	term = strings.TrimSpace(term)
	if len(term) < MinSearchLength {
		return nil, models.NewValidationError(fmt.Sprintf("search term must be at least %d characters", MinSearchLength))
	}

	q.CompanyID = companyID
	q.Search = term
	results, err := s.pairs.ListAll(ctx, s.db, q)
	if err != nil {
		return nil, err
	}

	err = s.sink.Record(ctx, s.db, activity.Entry{
		UserID:     actor.UserID,
		Action:     models.ActionSearch,
		EntityType: "qa_pair",
		Details:    map[string]interface{}{"query": term, "result_count": len(results)},
		CompanyID:  &companyID,
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Export returns all QA pairs of a company as CSV rows plus the download
// filename. The first row is the header.
func (s *QAPairService) Export(ctx context.Context, actor *auth.Principal, companyID uuid.UUID, q data.QAPairQuery) ([][]string, string, error) {
	q.CompanyID = companyID
	pairs, err := s.pairs.ListAll(ctx, s.db, q)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]string, 0, len(pairs)+1)
	rows = append(rows, []string{
		"id", "question", "answer", "category_id", "category_name",
		"is_active", "priority", "tags", "created_at", "updated_at",
	})
	for _, pair := range pairs {
		categoryID := ""
		categoryName := "Uncategorized"
		if pair.CategoryID != nil {
			categoryID = pair.CategoryID.String()
		}
		if pair.Category != nil {
			categoryName = pair.Category.Name
		}

		tagNames := make([]string, 0, len(pair.Tags))
		for _, tag := range pair.Tags {
			tagNames = append(tagNames, tag.Name)
		}

		rows = append(rows, []string{
			pair.ID.String(),
			pair.Question,
			pair.Answer,
			categoryID,
			categoryName,
			fmt.Sprintf("%t", pair.IsActive),
			fmt.Sprintf("%d", pair.Priority),
			strings.Join(tagNames, ","),
			pair.CreatedAt.Format(time.RFC3339),
			pair.UpdatedAt.Format(time.RFC3339),
		})
	}

	err = s.sink.Record(ctx, s.db, activity.Entry{
		UserID:     actor.UserID,
		Action:     models.ActionExport,
		EntityType: "qa_pair",
		Details:    map[string]interface{}{"count": len(pairs)},
		CompanyID:  &companyID,
	})
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("qa_pairs_export_%s.csv", time.Now().Format("2006-01-02"))
	return rows, filename, nil
}

// PublicList returns the active QA pairs served to the chat widget,
// highest priority first
func (s *QAPairService) PublicList(ctx context.Context, q data.PublicQAPairQuery) ([]*models.QAPair, error) {
	return s.pairs.ListPublic(ctx, s.db, q)
}

func (s *QAPairService) scopedGet(ctx context.Context, companyID, id uuid.UUID) (*models.QAPair, error) {
	pair, err := s.pairs.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if pair.CompanyID != companyID {
		return nil, data.ErrNotFound
	}
	return pair, nil
}

// scopedGetMany loads the pairs and refuses the whole batch if any ID is
// missing or belongs to another company.
func (s *QAPairService) scopedGetMany(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]*models.QAPair, error) {
	pairs, err := s.pairs.GetByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	if len(pairs) != len(ids) {
		return nil, data.ErrNotFound
	}
	for _, pair := range pairs {
		if pair.CompanyID != companyID {
			return nil, data.ErrNotFound
		}
	}
	return pairs, nil
}

func (s *QAPairService) checkCategory(ctx context.Context, companyID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	category, err := s.categories.GetByID(ctx, s.db, *categoryID)
	if err != nil || category.CompanyID != companyID {
		return models.NewValidationError("category not found")
	}
	return nil
}

func (s *QAPairService) checkTags(ctx context.Context, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	existing, err := s.tags.ExistingIDs(ctx, s.db, tagIDs)
	if err != nil {
		return err
	}
	if len(existing) != len(tagIDs) {
		return models.NewValidationError("one or more tags do not exist")
	}
	return nil
}

func sanitizeContent(question, answer string) (string, string, error) {
	question = strings.TrimSpace(questionPolicy.Sanitize(question))
	answer = strings.TrimSpace(answerPolicy.Sanitize(answer))
	if question == "" {
		return "", "", models.NewValidationError("question cannot be empty")
	}
	if answer == "" {
		return "", "", models.NewValidationError("answer cannot be empty")
	}
	return question, answer, nil
}
