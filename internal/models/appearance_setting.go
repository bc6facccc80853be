package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// WidgetPosition places the chat widget on the host page.
type WidgetPosition string

// Widget positions
const (
	PositionBottomRight WidgetPosition = "bottom-right"
	PositionBottomLeft  WidgetPosition = "bottom-left"
	PositionTopRight    WidgetPosition = "top-right"
	PositionTopLeft     WidgetPosition = "top-left"
)

// ValidPosition reports whether p is one of the known widget positions.
func ValidPosition(p WidgetPosition) bool {
	switch p {
	case PositionBottomRight, PositionBottomLeft, PositionTopRight, PositionTopLeft:
		return true
	}
	return false
}

// AppearanceSettingKey is the well-known key of the canonical settings row.
// The unique constraint on settings_key guarantees there is at most one.
const AppearanceSettingKey = "default"

// AppearanceSetting is the singleton widget-appearance record, created lazily
// with defaults on first read.
type AppearanceSetting struct {
	tableName struct{} `pg:"appearance_settings"`

	ID           uuid.UUID      `pg:"id,type:uuid,pk" json:"id"`
	SettingsKey  string         `pg:"settings_key,unique,notnull" json:"-"`
	PrimaryColor string         `pg:"primary_color,notnull" json:"primary_color"`
	LogoURL      *string        `pg:"logo_url" json:"logo_url"`
	DarkMode     bool           `pg:"dark_mode,notnull,default:false,use_zero" json:"dark_mode"`
	Position     WidgetPosition `pg:"position,type:text,notnull" json:"position"`
	CreatedAt    time.Time      `pg:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt    time.Time      `pg:"updated_at,notnull,default:now()" json:"updated_at"`
}

// DefaultAppearanceSetting returns the settings row created on first read.
func DefaultAppearanceSetting() *AppearanceSetting {
	return &AppearanceSetting{
		ID:           uuid.New(),
		SettingsKey:  AppearanceSettingKey,
		PrimaryColor: "#000000",
		LogoURL:      nil,
		DarkMode:     false,
		Position:     PositionBottomRight,
	}
}

var (
	_ orm.BeforeInsertHook = (*AppearanceSetting)(nil)
	_ orm.BeforeUpdateHook = (*AppearanceSetting)(nil)
)

// BeforeInsert hook is called before inserting the settings row
func (s *AppearanceSetting) BeforeInsert(ctx context.Context) (context.Context, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SettingsKey == "" {
		s.SettingsKey = AppearanceSettingKey
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	return ctx, nil
}

// BeforeUpdate hook is called before updating the settings row
func (s *AppearanceSetting) BeforeUpdate(ctx context.Context) (context.Context, error) {
	s.UpdatedAt = time.Now()
	return ctx, nil
}
