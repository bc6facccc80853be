package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// Tag labels QA pairs. Tags are global: they carry no company scoping and can
// be attached to QA pairs of any tenant.
type Tag struct {
	tableName struct{} `pg:"tags"`

	ID        uuid.UUID `pg:"id,type:uuid,pk" json:"id"`
	Name      string    `pg:"name,unique,notnull" json:"name"`
	CreatedAt time.Time `pg:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt time.Time `pg:"updated_at,notnull,default:now()" json:"updated_at"`

	// Relations
	QAPairs []*QAPair `pg:"many2many:qa_pair_tags" json:"qa_pairs,omitempty"`

	// QAPairCount is loaded by the repository, not stored.
	QAPairCount int `pg:"-" json:"qa_pair_count"`
}

var (
	_ orm.BeforeInsertHook = (*Tag)(nil)
	_ orm.BeforeUpdateHook = (*Tag)(nil)
)

// BeforeInsert hook is called before inserting a new tag
func (t *Tag) BeforeInsert(ctx context.Context) (context.Context, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	return ctx, nil
}

// BeforeUpdate hook is called before updating a tag
func (t *Tag) BeforeUpdate(ctx context.Context) (context.Context, error) {
	t.UpdatedAt = time.Now()
	return ctx, nil
}

// QAPairTag is the join row between QA pairs and tags. The unique pair
// constraint prevents attaching the same tag twice.
type QAPairTag struct {
	tableName struct{} `pg:"qa_pair_tags"`

	QAPairID uuid.UUID `pg:"qa_pair_id,type:uuid,pk" json:"qa_pair_id"`
	TagID    uuid.UUID `pg:"tag_id,type:uuid,pk" json:"tag_id"`

	QAPair *QAPair `pg:"rel:has-one,fk:qa_pair_id" json:"-"`
	Tag    *Tag    `pg:"rel:has-one,fk:tag_id" json:"-"`
}
