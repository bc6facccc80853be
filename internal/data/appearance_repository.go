package data

import (
	"context"

	"github.com/go-pg/pg/v10/orm"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// AppearanceRepositoryInterface defines database operations for the singleton
// appearance-settings row.
type AppearanceRepositoryInterface interface {
	Get(ctx context.Context, db orm.DB) (*models.AppearanceSetting, error)
	Insert(ctx context.Context, db orm.DB, settings *models.AppearanceSetting) error
	Update(ctx context.Context, db orm.DB, settings *models.AppearanceSetting) error
}

// AppearanceRepository is the go-pg implementation of AppearanceRepositoryInterface.
type AppearanceRepository struct{}

// NewAppearanceRepository creates a new appearance repository
func NewAppearanceRepository() *AppearanceRepository {
	return &AppearanceRepository{}
}

// Get retrieves the canonical settings row by its well-known key
func (r *AppearanceRepository) Get(ctx context.Context, db orm.DB) (*models.AppearanceSetting, error) {
	settings := new(models.AppearanceSetting)
	err := db.ModelContext(ctx, settings).
		Where("settings_key = ?", models.AppearanceSettingKey).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return settings, nil
}

// Insert creates the settings row
func (r *AppearanceRepository) Insert(ctx context.Context, db orm.DB, settings *models.AppearanceSetting) error {
	_, err := db.ModelContext(ctx, settings).Insert()
	return wrapError(err)
}

// Update saves changes to the settings row
func (r *AppearanceRepository) Update(ctx context.Context, db orm.DB, settings *models.AppearanceSetting) error {
	_, err := db.ModelContext(ctx, settings).WherePK().Update()
	return wrapError(err)
}
