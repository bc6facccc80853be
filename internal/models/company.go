package models

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// Company represents a tenant: an isolated customer organization that owns
// users, categories and QA pairs.
type Company struct {
	tableName struct{} `pg:"companies"`

	ID        uuid.UUID              `pg:"id,type:uuid,pk" json:"id"`
	Name      string                 `pg:"name,notnull" json:"name"`
	Slug      string                 `pg:"slug,unique,notnull" json:"slug"`
	Domain    *string                `pg:"domain,unique" json:"domain"`
	IsActive  bool                   `pg:"is_active,notnull,default:true,use_zero" json:"is_active"`
	Settings  map[string]interface{} `pg:"settings,type:jsonb" json:"settings,omitempty"`
	CreatedAt time.Time              `pg:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt time.Time              `pg:"updated_at,notnull,default:now()" json:"updated_at"`

	// Relations
	Users      []*User     `pg:"rel:has-many,join_fk:company_id" json:"users,omitempty"`
	Categories []*Category `pg:"rel:has-many,join_fk:company_id" json:"categories,omitempty"`
	QAPairs    []*QAPair   `pg:"rel:has-many,join_fk:company_id" json:"qa_pairs,omitempty"`

	// Counts loaded by the repository, not stored.
	UserCount     int `pg:"-" json:"user_count,omitempty"`
	QAPairCount   int `pg:"-" json:"qa_pair_count,omitempty"`
	CategoryCount int `pg:"-" json:"category_count,omitempty"`
}

var (
	_ orm.BeforeInsertHook = (*Company)(nil)
	_ orm.BeforeUpdateHook = (*Company)(nil)
)

// BeforeInsert hook is called before inserting a new company
func (c *Company) BeforeInsert(ctx context.Context) (context.Context, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return ctx, nil
}

// BeforeUpdate hook is called before updating a company
func (c *Company) BeforeUpdate(ctx context.Context) (context.Context, error) {
	c.UpdatedAt = time.Now()
	return ctx, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a company name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
