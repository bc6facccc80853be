package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

func newQAPairService(pairs *MockQAPairRepository, categories *MockCategoryRepository, tags *MockTagRepository, imports *MockImportRepository, sink *recordingSink) *QAPairService {
	return NewQAPairService(nil, &fakeTxRunner{}, pairs, categories, tags, imports, sink, nil)
}

func TestQAPairServiceCreateSanitizesContent(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)

	var inserted *models.QAPair
	pairs.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.QAPair) bool {
		p.ID = uuid.New()
		inserted = p
		return true
	})).Return(nil)
	pairs.On("GetByID", mock.Anything, mock.Anything, mock.Anything).Return(&models.QAPair{CompanyID: companyID}, nil)

	_, err := svc.Create(context.Background(), actor, companyID, CreateQAPairInput{
		Question: "<script>alert(1)</script>How do I reset my password?",
		Answer:   "Click <b>Forgot password</b> on the login page.",
	})

	assert.NoError(t, err)
	assert.NotContains(t, inserted.Question, "<script>")
	assert.Contains(t, inserted.Answer, "<b>")
	assert.Equal(t, companyID, inserted.CompanyID)
	assert.Equal(t, models.ActionCreate, sink.lastAction())
}

func TestQAPairServiceCreateEmptyAfterSanitizing(t *testing.T) {
	pairs := new(MockQAPairRepository)
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), &recordingSink{})

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)

	_, err := svc.Create(context.Background(), actor, companyID, CreateQAPairInput{
		Question: "<script>only markup</script>",
		Answer:   "An answer",
	})

	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
	pairs.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestQAPairServiceUpdateSnapshotsPreviousContent(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	pair := &models.QAPair{
		ID:        uuid.New(),
		Question:  "Old question",
		Answer:    "Old answer",
		CompanyID: companyID,
	}

	var snapshot *models.QAPairHistory
	pairs.On("GetByID", mock.Anything, mock.Anything, pair.ID).Return(pair, nil)
	pairs.On("InsertHistory", mock.Anything, mock.Anything, mock.MatchedBy(func(h *models.QAPairHistory) bool {
		snapshot = h
		return true
	})).Return(nil)
	pairs.On("Update", mock.Anything, mock.Anything, pair).Return(nil)

	newQuestion := "New question"
	_, err := svc.Update(context.Background(), actor, companyID, pair.ID, UpdateQAPairInput{Question: &newQuestion})

	assert.NoError(t, err)
	// The snapshot holds the content before the change.
	assert.Equal(t, "Old question", snapshot.Question)
	assert.Equal(t, "Old answer", snapshot.Answer)
	assert.Equal(t, models.ChangeTypeUpdate, snapshot.ChangeType)
	assert.Equal(t, "New question", pair.Question)
}

func TestQAPairServiceDeleteWritesDeleteSnapshot(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	pair := &models.QAPair{ID: uuid.New(), Question: "Q", Answer: "A", CompanyID: companyID}

	pairs.On("GetByID", mock.Anything, mock.Anything, pair.ID).Return(pair, nil)
	pairs.On("InsertHistory", mock.Anything, mock.Anything, mock.MatchedBy(func(h *models.QAPairHistory) bool {
		return h.ChangeType == models.ChangeTypeDelete && h.QAPairID == pair.ID
	})).Return(nil)
	pairs.On("DetachTags", mock.Anything, mock.Anything, pair.ID).Return(nil)
	pairs.On("Delete", mock.Anything, mock.Anything, []uuid.UUID{pair.ID}).Return(nil)

	err := svc.Delete(context.Background(), actor, companyID, pair.ID)

	assert.NoError(t, err)
	pairs.AssertExpectations(t)
	assert.Equal(t, models.ActionDelete, sink.lastAction())
}

func TestQAPairServiceToggleWritesNoHistory(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	pair := &models.QAPair{ID: uuid.New(), IsActive: true, CompanyID: companyID}

	pairs.On("GetByID", mock.Anything, mock.Anything, pair.ID).Return(pair, nil)
	pairs.On("Update", mock.Anything, mock.Anything, pair).Return(nil)

	toggled, err := svc.ToggleActive(context.Background(), actor, companyID, pair.ID)

	assert.NoError(t, err)
	assert.False(t, toggled.IsActive)
	pairs.AssertNotCalled(t, "InsertHistory", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, models.ActionToggle, sink.lastAction())
}

func TestQAPairServiceBulkDeleteRejectsCrossCompanyBatch(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	otherCompany := uuid.New()
	actor := companyAdminPrincipal(companyID)

	mine := &models.QAPair{ID: uuid.New(), CompanyID: companyID}
	foreign := &models.QAPair{ID: uuid.New(), CompanyID: otherCompany}
	ids := []uuid.UUID{mine.ID, foreign.ID}

	pairs.On("GetByIDs", mock.Anything, mock.Anything, ids).Return([]*models.QAPair{mine, foreign}, nil)

	deleted, err := svc.BulkDelete(context.Background(), actor, companyID, BulkIDsInput{IDs: ids})

	assert.ErrorIs(t, err, data.ErrNotFound)
	assert.Zero(t, deleted)
	pairs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, sink.entries)
}

func TestQAPairServiceBulkDeleteOneAggregateActivity(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	first := &models.QAPair{ID: uuid.New(), CompanyID: companyID}
	second := &models.QAPair{ID: uuid.New(), CompanyID: companyID}
	ids := []uuid.UUID{first.ID, second.ID}

	pairs.On("GetByIDs", mock.Anything, mock.Anything, ids).Return([]*models.QAPair{first, second}, nil)
	pairs.On("InsertHistory", mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(2)
	pairs.On("DetachTags", mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(2)
	pairs.On("Delete", mock.Anything, mock.Anything, ids).Return(nil)

	deleted, err := svc.BulkDelete(context.Background(), actor, companyID, BulkIDsInput{IDs: ids})

	assert.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Len(t, sink.entries, 1)
	assert.Equal(t, models.ActionBulkDelete, sink.entries[0].Action)
	assert.Equal(t, 2, sink.entries[0].Details["count"])
}

func TestQAPairServiceRestore(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	pair := &models.QAPair{ID: uuid.New(), Question: "Current Q", Answer: "Current A", CompanyID: companyID}
	history := &models.QAPairHistory{
		ID:       uuid.New(),
		QAPairID: pair.ID,
		Question: "Historic Q",
		Answer:   "Historic A",
	}

	var preRestore *models.QAPairHistory
	pairs.On("GetByID", mock.Anything, mock.Anything, pair.ID).Return(pair, nil)
	pairs.On("GetHistoryByID", mock.Anything, mock.Anything, history.ID).Return(history, nil)
	pairs.On("InsertHistory", mock.Anything, mock.Anything, mock.MatchedBy(func(h *models.QAPairHistory) bool {
		preRestore = h
		return true
	})).Return(nil)
	pairs.On("Update", mock.Anything, mock.Anything, pair).Return(nil)

	restored, err := svc.Restore(context.Background(), actor, companyID, pair.ID, history.ID)

	assert.NoError(t, err)
	assert.Equal(t, "Historic Q", restored.Question)
	assert.Equal(t, "Historic A", restored.Answer)
	// The pre-restore snapshot keeps the replaced content recoverable.
	assert.Equal(t, models.ChangeTypeUpdateBeforeRestore, preRestore.ChangeType)
	assert.Equal(t, "Current Q", preRestore.Question)
	assert.Equal(t, models.ActionRestore, sink.lastAction())
}

func TestQAPairServiceRestoreForeignHistory(t *testing.T) {
	pairs := new(MockQAPairRepository)
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), &recordingSink{})

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	pair := &models.QAPair{ID: uuid.New(), CompanyID: companyID}
	history := &models.QAPairHistory{ID: uuid.New(), QAPairID: uuid.New()}

	pairs.On("GetByID", mock.Anything, mock.Anything, pair.ID).Return(pair, nil)
	pairs.On("GetHistoryByID", mock.Anything, mock.Anything, history.ID).Return(history, nil)

	_, err := svc.Restore(context.Background(), actor, companyID, pair.ID, history.ID)

	assert.ErrorIs(t, err, data.ErrNotFound)
	pairs.AssertNotCalled(t, "InsertHistory", mock.Anything, mock.Anything, mock.Anything)
}

func TestQAPairServiceSearchMinimumLength(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)

	testCases := []struct {
		name    string
		term    string
		wantErr bool
	}{
		{name: "empty", term: "", wantErr: true},
		{name: "single character", term: "a", wantErr: true},
		{name: "whitespace padded short", term: "  a  ", wantErr: true},
		{name: "minimum length", term: "ok", wantErr: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.wantErr {
				pairs.On("ListAll", mock.Anything, mock.Anything, mock.MatchedBy(func(q data.QAPairQuery) bool {
					return q.Search == strings.TrimSpace(tc.term) && q.CompanyID == companyID
				})).Return([]*models.QAPair{}, nil)
			}

			_, err := svc.Search(context.Background(), actor, companyID, tc.term, data.QAPairQuery{})

			if tc.wantErr {
				var validation *models.ValidationError
				assert.ErrorAs(t, err, &validation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQAPairServiceSearchRecordsActivity(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	results := []*models.QAPair{{ID: uuid.New(), CompanyID: companyID}}

	pairs.On("ListAll", mock.Anything, mock.Anything, mock.Anything).Return(results, nil)

	_, err := svc.Search(context.Background(), actor, companyID, "password", data.QAPairQuery{})

	assert.NoError(t, err)
	assert.Equal(t, models.ActionSearch, sink.lastAction())
	assert.Equal(t, "password", sink.entries[0].Details["query"])
	assert.Equal(t, 1, sink.entries[0].Details["result_count"])
}

func TestQAPairServiceExportRows(t *testing.T) {
	pairs := new(MockQAPairRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), new(MockImportRepository), sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)
	categoryID := uuid.New()

	exported := []*models.QAPair{
		{
			ID:         uuid.New(),
			Question:   "Categorized question",
			Answer:     "Answer one",
			CategoryID: &categoryID,
			Category:   &models.Category{ID: categoryID, Name: "Billing"},
			IsActive:   true,
			Priority:   5,
			Tags:       []*models.Tag{{Name: "billing"}, {Name: "faq"}},
			CompanyID:  companyID,
		},
		{
			ID:        uuid.New(),
			Question:  "Uncategorized question",
			Answer:    "Answer two",
			CompanyID: companyID,
		},
	}

	pairs.On("ListAll", mock.Anything, mock.Anything, mock.Anything).Return(exported, nil)

	rows, filename, err := svc.Export(context.Background(), actor, companyID, data.QAPairQuery{})

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "qa_pairs_export_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))
	assert.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, []string{
		"id", "question", "answer", "category_id", "category_name",
		"is_active", "priority", "tags", "created_at", "updated_at",
	}, header)

	assert.Equal(t, "Billing", rows[1][4])
	assert.Equal(t, "true", rows[1][5])
	assert.Equal(t, "5", rows[1][6])
	assert.Equal(t, "billing,faq", rows[1][7])

	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "Uncategorized", rows[2][4])
	assert.Equal(t, "false", rows[2][5])

	assert.Equal(t, models.ActionExport, sink.lastAction())
}

func TestQAPairServiceBulkImportFailureKeepsLedgerRow(t *testing.T) {
	pairs := new(MockQAPairRepository)
	imports := new(MockImportRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), imports, sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)

	imports.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(imp *models.QAImport) bool {
		imp.ID = uuid.New()
		return imp.Status == models.ImportStatusProcessing
	})).Return(nil)
	imports.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(imp *models.QAImport) bool {
		return imp.Status == models.ImportStatusFailed && imp.ErrorMessage != ""
	})).Return(nil)

	imp, err := svc.BulkImport(context.Background(), actor, companyID, BulkImportInput{
		Items: []ImportItem{
			{Question: "<script></script>", Answer: "broken item"},
		},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")
	assert.NotNil(t, imp)
	assert.Equal(t, models.ImportStatusFailed, imp.Status)
	imports.AssertExpectations(t)
	pairs.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, sink.entries)
}

func TestQAPairServiceBulkImportCompleted(t *testing.T) {
	pairs := new(MockQAPairRepository)
	imports := new(MockImportRepository)
	sink := &recordingSink{}
	svc := newQAPairService(pairs, new(MockCategoryRepository), new(MockTagRepository), imports, sink)

	companyID := uuid.New()
	actor := companyAdminPrincipal(companyID)

	imports.On("Insert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	imports.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(imp *models.QAImport) bool {
		return imp.Status == models.ImportStatusCompleted
	})).Return(nil)
	pairs.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.QAPair) bool {
		return p.CompanyID == companyID
	})).Return(nil).Times(2)

	imp, err := svc.BulkImport(context.Background(), actor, companyID, BulkImportInput{
		Filename: "faq.json",
		Items: []ImportItem{
			{Question: "First question", Answer: "First answer"},
			{Question: "Second question", Answer: "Second answer"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, models.ImportStatusCompleted, imp.Status)
	assert.Equal(t, 2, imp.RecordCount)
	assert.Equal(t, models.ActionBulkImport, sink.lastAction())
}
