package services

import (
	"context"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// fakeTxRunner runs the transaction body directly. The nil orm.DB stands in
// for the transaction handle; mocked repositories never touch it.
type fakeTxRunner struct {
	err error
}

func (f *fakeTxRunner) RunInTransaction(ctx context.Context, fn func(db orm.DB) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// recordingSink captures activity entries so tests can assert on the audit
// trail without a database.
type recordingSink struct {
	entries []activity.Entry
	err     error
}

func (s *recordingSink) Record(ctx context.Context, db orm.DB, entry activity.Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingSink) lastAction() string {
	if len(s.entries) == 0 {
		return ""
	}
	return s.entries[len(s.entries)-1].Action
}

// MockUserRepository is a mock implementation of data.UserRepositoryInterface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, db orm.DB, email string) (*models.User, error) {
	args := m.Called(ctx, db, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, db orm.DB, q data.UserQuery) ([]*models.User, int, error) {
	args := m.Called(ctx, db, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) Insert(ctx context.Context, db orm.DB, user *models.User) error {
	return m.Called(ctx, db, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, db orm.DB, user *models.User) error {
	return m.Called(ctx, db, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, db orm.DB, id uuid.UUID) error {
	return m.Called(ctx, db, id).Error(0)
}

func (m *MockUserRepository) CountAdmins(ctx context.Context, db orm.DB) (int, error) {
	args := m.Called(ctx, db)
	return args.Int(0), args.Error(1)
}

// MockSessionRepository is a mock implementation of data.SessionRepositoryInterface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) GetByTokenID(ctx context.Context, db orm.DB, tokenID string) (*models.SessionToken, error) {
	args := m.Called(ctx, db, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionToken), args.Error(1)
}

func (m *MockSessionRepository) Insert(ctx context.Context, db orm.DB, token *models.SessionToken) error {
	return m.Called(ctx, db, token).Error(0)
}

func (m *MockSessionRepository) Revoke(ctx context.Context, db orm.DB, tokenID string) error {
	return m.Called(ctx, db, tokenID).Error(0)
}

func (m *MockSessionRepository) RevokeAllForUser(ctx context.Context, db orm.DB, userID uuid.UUID) error {
	return m.Called(ctx, db, userID).Error(0)
}

// MockCompanyRepository is a mock implementation of data.CompanyRepositoryInterface
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetActiveByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetActiveBySlug(ctx context.Context, db orm.DB, slug string) (*models.Company, error) {
	args := m.Called(ctx, db, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetActiveByDomain(ctx context.Context, db orm.DB, domain string) (*models.Company, error) {
	args := m.Called(ctx, db, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context, db orm.DB, q data.CompanyQuery) ([]*models.Company, int, error) {
	args := m.Called(ctx, db, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Company), args.Int(1), args.Error(2)
}

func (m *MockCompanyRepository) Insert(ctx context.Context, db orm.DB, company *models.Company) error {
	return m.Called(ctx, db, company).Error(0)
}

func (m *MockCompanyRepository) Update(ctx context.Context, db orm.DB, company *models.Company) error {
	return m.Called(ctx, db, company).Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, db orm.DB, id uuid.UUID) error {
	return m.Called(ctx, db, id).Error(0)
}

func (m *MockCompanyRepository) CountUsers(ctx context.Context, db orm.DB, id uuid.UUID) (int, error) {
	args := m.Called(ctx, db, id)
	return args.Int(0), args.Error(1)
}

func (m *MockCompanyRepository) LoadCounts(ctx context.Context, db orm.DB, company *models.Company) error {
	return m.Called(ctx, db, company).Error(0)
}

// MockCategoryRepository is a mock implementation of data.CategoryRepositoryInterface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, db orm.DB, q data.CategoryQuery) ([]*models.Category, error) {
	args := m.Called(ctx, db, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Tree(ctx context.Context, db orm.DB, companyID uuid.UUID) ([]*models.Category, error) {
	args := m.Called(ctx, db, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Insert(ctx context.Context, db orm.DB, category *models.Category) error {
	return m.Called(ctx, db, category).Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, db orm.DB, category *models.Category) error {
	return m.Called(ctx, db, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, db orm.DB, id uuid.UUID) error {
	return m.Called(ctx, db, id).Error(0)
}

func (m *MockCategoryRepository) CountQAPairs(ctx context.Context, db orm.DB, id uuid.UUID) (int, error) {
	args := m.Called(ctx, db, id)
	return args.Int(0), args.Error(1)
}

func (m *MockCategoryRepository) CountChildren(ctx context.Context, db orm.DB, id uuid.UUID) (int, error) {
	args := m.Called(ctx, db, id)
	return args.Int(0), args.Error(1)
}

// MockTagRepository is a mock implementation of data.TagRepositoryInterface
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.Tag, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tag), args.Error(1)
}

func (m *MockTagRepository) List(ctx context.Context, db orm.DB) ([]*models.Tag, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tag), args.Error(1)
}

func (m *MockTagRepository) Insert(ctx context.Context, db orm.DB, tag *models.Tag) error {
	return m.Called(ctx, db, tag).Error(0)
}

func (m *MockTagRepository) Update(ctx context.Context, db orm.DB, tag *models.Tag) error {
	return m.Called(ctx, db, tag).Error(0)
}

func (m *MockTagRepository) Delete(ctx context.Context, db orm.DB, id uuid.UUID) error {
	return m.Called(ctx, db, id).Error(0)
}

func (m *MockTagRepository) DetachAll(ctx context.Context, db orm.DB, tagID uuid.UUID) error {
	return m.Called(ctx, db, tagID).Error(0)
}

func (m *MockTagRepository) ListQAPairs(ctx context.Context, db orm.DB, tagID uuid.UUID) ([]*models.QAPair, error) {
	args := m.Called(ctx, db, tagID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QAPair), args.Error(1)
}

func (m *MockTagRepository) ExistingIDs(ctx context.Context, db orm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, db, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockQAPairRepository is a mock implementation of data.QAPairRepositoryInterface
type MockQAPairRepository struct {
	mock.Mock
}

func (m *MockQAPairRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.QAPair, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QAPair), args.Error(1)
}

func (m *MockQAPairRepository) GetByIDs(ctx context.Context, db orm.DB, ids []uuid.UUID) ([]*models.QAPair, error) {
	args := m.Called(ctx, db, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QAPair), args.Error(1)
}

func (m *MockQAPairRepository) List(ctx context.Context, db orm.DB, q data.QAPairQuery) ([]*models.QAPair, int, error) {
	args := m.Called(ctx, db, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.QAPair), args.Int(1), args.Error(2)
}

func (m *MockQAPairRepository) ListAll(ctx context.Context, db orm.DB, q data.QAPairQuery) ([]*models.QAPair, error) {
	args := m.Called(ctx, db, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QAPair), args.Error(1)
}

func (m *MockQAPairRepository) ListPublic(ctx context.Context, db orm.DB, q data.PublicQAPairQuery) ([]*models.QAPair, error) {
	args := m.Called(ctx, db, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QAPair), args.Error(1)
}

func (m *MockQAPairRepository) Insert(ctx context.Context, db orm.DB, pair *models.QAPair) error {
	return m.Called(ctx, db, pair).Error(0)
}

func (m *MockQAPairRepository) Update(ctx context.Context, db orm.DB, pair *models.QAPair) error {
	return m.Called(ctx, db, pair).Error(0)
}

func (m *MockQAPairRepository) Delete(ctx context.Context, db orm.DB, ids []uuid.UUID) error {
	return m.Called(ctx, db, ids).Error(0)
}

func (m *MockQAPairRepository) SetActive(ctx context.Context, db orm.DB, ids []uuid.UUID, active bool, updatedBy uuid.UUID) error {
	return m.Called(ctx, db, ids, active, updatedBy).Error(0)
}

func (m *MockQAPairRepository) AttachTags(ctx context.Context, db orm.DB, pairID uuid.UUID, tagIDs []uuid.UUID) error {
	return m.Called(ctx, db, pairID, tagIDs).Error(0)
}

func (m *MockQAPairRepository) ReplaceTags(ctx context.Context, db orm.DB, pairID uuid.UUID, tagIDs []uuid.UUID) error {
	return m.Called(ctx, db, pairID, tagIDs).Error(0)
}

func (m *MockQAPairRepository) DetachTags(ctx context.Context, db orm.DB, pairID uuid.UUID) error {
	return m.Called(ctx, db, pairID).Error(0)
}

func (m *MockQAPairRepository) InsertHistory(ctx context.Context, db orm.DB, history *models.QAPairHistory) error {
	return m.Called(ctx, db, history).Error(0)
}

func (m *MockQAPairRepository) ListHistory(ctx context.Context, db orm.DB, pairID uuid.UUID) ([]*models.QAPairHistory, error) {
	args := m.Called(ctx, db, pairID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QAPairHistory), args.Error(1)
}

func (m *MockQAPairRepository) GetHistoryByID(ctx context.Context, db orm.DB, historyID uuid.UUID) (*models.QAPairHistory, error) {
	args := m.Called(ctx, db, historyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QAPairHistory), args.Error(1)
}

// MockImportRepository is a mock implementation of data.ImportRepositoryInterface
type MockImportRepository struct {
	mock.Mock
}

func (m *MockImportRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.QAImport, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QAImport), args.Error(1)
}

func (m *MockImportRepository) List(ctx context.Context, db orm.DB, q data.ImportQuery) ([]*models.QAImport, int, error) {
	args := m.Called(ctx, db, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.QAImport), args.Int(1), args.Error(2)
}

func (m *MockImportRepository) Insert(ctx context.Context, db orm.DB, imp *models.QAImport) error {
	return m.Called(ctx, db, imp).Error(0)
}

func (m *MockImportRepository) Update(ctx context.Context, db orm.DB, imp *models.QAImport) error {
	return m.Called(ctx, db, imp).Error(0)
}

// MockAppearanceRepository is a mock implementation of data.AppearanceRepositoryInterface
type MockAppearanceRepository struct {
	mock.Mock
}

func (m *MockAppearanceRepository) Get(ctx context.Context, db orm.DB) (*models.AppearanceSetting, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppearanceSetting), args.Error(1)
}

func (m *MockAppearanceRepository) Insert(ctx context.Context, db orm.DB, settings *models.AppearanceSetting) error {
	return m.Called(ctx, db, settings).Error(0)
}

func (m *MockAppearanceRepository) Update(ctx context.Context, db orm.DB, settings *models.AppearanceSetting) error {
	return m.Called(ctx, db, settings).Error(0)
}
