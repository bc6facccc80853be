package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/go-pg/pg/v10/orm"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// AppearanceService manages the widget appearance singleton.
type AppearanceService struct {
	db         orm.DB
	tx         data.TxRunner
	appearance data.AppearanceRepositoryInterface
	sink       activity.Sink
}

// NewAppearanceService creates a new appearance service
func NewAppearanceService(
	db orm.DB,
	tx data.TxRunner,
	appearance data.AppearanceRepositoryInterface,
	sink activity.Sink,
) *AppearanceService {
	return &AppearanceService{
		db:         db,
		tx:         tx,
		appearance: appearance,
		sink:       sink,
	}
}

// UpdateAppearanceInput carries the updatable appearance fields.
type UpdateAppearanceInput struct {
	PrimaryColor *string                `json:"primary_color"`
	LogoURL      *string                `json:"logo_url"`
	DarkMode     *bool                  `json:"dark_mode"`
	Position     *models.WidgetPosition `json:"position"`
}

// Get returns the appearance settings, creating the row with defaults on
// first read.
func (s *AppearanceService) Get(ctx context.Context) (*models.AppearanceSetting, error) {
	settings, err := s.appearance.Get(ctx, s.db)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}

	settings = models.DefaultAppearanceSetting()
	if err := s.appearance.Insert(ctx, s.db, settings); err != nil {
		// A concurrent first read may have created the row already.
		if errors.Is(err, data.ErrDuplicateRecord) {
			return s.appearance.Get(ctx, s.db)
		}
		return nil, err
	}
	return settings, nil
}

// Update modifies the appearance settings
func (s *AppearanceService) Update(ctx context.Context, actor *auth.Principal, in UpdateAppearanceInput) (*models.AppearanceSetting, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if in.PrimaryColor != nil {
		if !hexColor.MatchString(*in.PrimaryColor) {
			return nil, models.NewValidationError("primary_color must be a hex color like #1a2b3c")
		}
		settings.PrimaryColor = *in.PrimaryColor
	}
	if in.LogoURL != nil {
		if *in.LogoURL == "" {
			settings.LogoURL = nil
		} else {
			settings.LogoURL = in.LogoURL
		}
	}
	if in.DarkMode != nil {
		settings.DarkMode = *in.DarkMode
	}
	if in.Position != nil {
		if !models.ValidPosition(*in.Position) {
			return nil, models.NewValidationError("position must be one of bottom-right, bottom-left, top-right, top-left")
		}
		settings.Position = *in.Position
	}

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.appearance.Update(ctx, db, settings); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionUpdate,
			EntityType: "appearance_setting",
			EntityID:   &settings.ID,
			CompanyID:  actor.CompanyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}
