package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// Activity actions recorded in user_activities. Stored as plain strings so
// services can record domain-specific actions without a schema change.
const (
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionMove        = "move"
	ActionToggle      = "toggle"
	ActionToggleAdmin = "toggle_admin"
	ActionRestore     = "restore"
	ActionSearch      = "search"
	ActionExport      = "export"
	ActionBulkImport  = "bulk_import"
	ActionBulkDelete  = "bulk_delete"
	ActionBulkToggle  = "bulk_toggle"
	ActionLogin       = "login"
	ActionLogout      = "logout"
	ActionResetPass   = "reset_password"
)

// UserActivity is one append-only audit row: who did what to which entity and
// when. Rows are never updated or deleted by normal flows.
type UserActivity struct {
	tableName struct{} `pg:"user_activities"`

	ID          uuid.UUID              `pg:"id,type:uuid,pk" json:"id"`
	UserID      uuid.UUID              `pg:"user_id,type:uuid,notnull" json:"user_id"`
	Action      string                 `pg:"action,notnull" json:"action"`
	EntityType  string                 `pg:"entity_type,notnull" json:"entity_type"`
	EntityID    *uuid.UUID             `pg:"entity_id,type:uuid" json:"entity_id"`
	Details     map[string]interface{} `pg:"details,type:jsonb" json:"details,omitempty"`
	PerformedAt time.Time              `pg:"performed_at,notnull" json:"performed_at"`
	CompanyID   *uuid.UUID             `pg:"company_id,type:uuid" json:"company_id"`

	// Relations
	User *User `pg:"rel:has-one,fk:user_id" json:"user,omitempty"`
}

var _ orm.BeforeInsertHook = (*UserActivity)(nil)

// BeforeInsert hook is called before inserting a new activity row
func (a *UserActivity) BeforeInsert(ctx context.Context) (context.Context, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.PerformedAt.IsZero() {
		a.PerformedAt = time.Now()
	}
	return ctx, nil
}
