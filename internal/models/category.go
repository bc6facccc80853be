package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// Category groups QA pairs inside a company. Categories form a tree via
// parent_id; a parent must belong to the same company as the child.
type Category struct {
	tableName struct{} `pg:"categories"`

	ID          uuid.UUID  `pg:"id,type:uuid,pk" json:"id"`
	Name        string     `pg:"name,notnull" json:"name"`
	Description string     `pg:"description" json:"description"`
	IsActive    bool       `pg:"is_active,notnull,default:true,use_zero" json:"is_active"`
	ParentID    *uuid.UUID `pg:"parent_id,type:uuid" json:"parent_id"`
	CompanyID   uuid.UUID  `pg:"company_id,type:uuid,notnull" json:"company_id"`
	CreatedAt   time.Time  `pg:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt   time.Time  `pg:"updated_at,notnull,default:now()" json:"updated_at"`

	// Relations
	Parent   *Category   `pg:"rel:has-one,fk:parent_id" json:"parent,omitempty"`
	Children []*Category `pg:"rel:has-many,join_fk:parent_id" json:"children,omitempty"`
	QAPairs  []*QAPair   `pg:"rel:has-many,join_fk:category_id" json:"qa_pairs,omitempty"`

	// QAPairCount is loaded by the repository, not stored.
	QAPairCount int `pg:"-" json:"qa_pair_count"`
}

var (
	_ orm.BeforeInsertHook = (*Category)(nil)
	_ orm.BeforeUpdateHook = (*Category)(nil)
)

// BeforeInsert hook is called before inserting a new category
func (c *Category) BeforeInsert(ctx context.Context) (context.Context, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return ctx, nil
}

// BeforeUpdate hook is called before updating a category
func (c *Category) BeforeUpdate(ctx context.Context) (context.Context, error) {
	c.UpdatedAt = time.Now()
	return ctx, nil
}
