package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// QAPair is a question/answer record served by the chat widget. Every pair is
// scoped to one company; its category must belong to the same company.
type QAPair struct {
	tableName struct{} `pg:"qa_pairs"`

	ID         uuid.UUID              `pg:"id,type:uuid,pk" json:"id"`
	Question   string                 `pg:"question,notnull" json:"question"`
	Answer     string                 `pg:"answer,notnull" json:"answer"`
	CategoryID *uuid.UUID             `pg:"category_id,type:uuid" json:"category_id"`
	IsActive   bool                   `pg:"is_active,notnull,default:true,use_zero" json:"is_active"`
	Priority   int                    `pg:"priority,notnull,default:0,use_zero" json:"priority"`
	Metadata   map[string]interface{} `pg:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedBy  *uuid.UUID             `pg:"created_by,type:uuid" json:"created_by"`
	UpdatedBy  *uuid.UUID             `pg:"updated_by,type:uuid" json:"updated_by"`
	CompanyID  uuid.UUID              `pg:"company_id,type:uuid,notnull" json:"company_id"`
	CreatedAt  time.Time              `pg:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt  time.Time              `pg:"updated_at,notnull,default:now()" json:"updated_at"`

	// Relations
	Category *Category        `pg:"rel:has-one,fk:category_id" json:"category,omitempty"`
	Tags     []*Tag           `pg:"many2many:qa_pair_tags" json:"tags,omitempty"`
	History  []*QAPairHistory `pg:"rel:has-many,join_fk:qa_pair_id" json:"history,omitempty"`
}

var (
	_ orm.BeforeInsertHook = (*QAPair)(nil)
	_ orm.BeforeUpdateHook = (*QAPair)(nil)
)

// BeforeInsert hook is called before inserting a new QA pair
func (q *QAPair) BeforeInsert(ctx context.Context) (context.Context, error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.CreatedAt = time.Now()
	q.UpdatedAt = time.Now()
	return ctx, nil
}

// BeforeUpdate hook is called before updating a QA pair
func (q *QAPair) BeforeUpdate(ctx context.Context) (context.Context, error) {
	q.UpdatedAt = time.Now()
	return ctx, nil
}

// ChangeType classifies a history snapshot.
type ChangeType string

// Change types written to qa_pair_history.
const (
	ChangeTypeUpdate              ChangeType = "update"
	ChangeTypeDelete              ChangeType = "delete"
	ChangeTypeRestore             ChangeType = "restore"
	ChangeTypeUpdateBeforeRestore ChangeType = "update_before_restore"
)

// QAPairHistory is an immutable snapshot of a QA pair's content taken before
// a mutating operation. Rows are append-only.
type QAPairHistory struct {
	tableName struct{} `pg:"qa_pair_history"`

	ID         uuid.UUID  `pg:"id,type:uuid,pk" json:"id"`
	QAPairID   uuid.UUID  `pg:"qa_pair_id,type:uuid,notnull" json:"qa_pair_id"`
	Question   string     `pg:"question,notnull" json:"question"`
	Answer     string     `pg:"answer,notnull" json:"answer"`
	ChangedBy  *uuid.UUID `pg:"changed_by,type:uuid" json:"changed_by"`
	ChangedAt  time.Time  `pg:"changed_at,notnull" json:"changed_at"`
	ChangeType ChangeType `pg:"change_type,type:text,notnull" json:"change_type"`

	// Relations
	QAPair        *QAPair `pg:"rel:has-one,fk:qa_pair_id" json:"-"`
	ChangedByUser *User   `pg:"rel:has-one,fk:changed_by" json:"changed_by_user,omitempty"`
}

var _ orm.BeforeInsertHook = (*QAPairHistory)(nil)

// BeforeInsert hook is called before inserting a new history row
func (h *QAPairHistory) BeforeInsert(ctx context.Context) (context.Context, error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now()
	}
	return ctx, nil
}

// Snapshot builds a history row capturing the pair's current content.
func (q *QAPair) Snapshot(changedBy *uuid.UUID, changeType ChangeType) *QAPairHistory {
	return &QAPairHistory{
		ID:         uuid.New(),
		QAPairID:   q.ID,
		Question:   q.Question,
		Answer:     q.Answer,
		ChangedBy:  changedBy,
		ChangedAt:  time.Now(),
		ChangeType: changeType,
	}
}
