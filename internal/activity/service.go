package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// Query filters the activity read side. A nil CompanyID means no tenant
// scoping and is reserved for super admins.
type Query struct {
	CompanyID  *uuid.UUID
	UserID     *uuid.UUID
	Action     string
	EntityType string
	From       *time.Time
	To         *time.Time
	Page       data.Page
}

// ActionCount is an aggregate bucket keyed by action name.
type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// EntityTypeCount is an aggregate bucket keyed by entity type.
type EntityTypeCount struct {
	EntityType string `json:"entity_type"`
	Count      int    `json:"count"`
}

// UserCount is an aggregate bucket keyed by acting user.
type UserCount struct {
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Count    int       `json:"count"`
}

// DayCount is an aggregate bucket keyed by calendar day.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// Statistics is the aggregate view over the activity log.
type Statistics struct {
	Total        int               `json:"total"`
	ByAction     []ActionCount     `json:"by_action"`
	ByEntityType []EntityTypeCount `json:"by_entity_type"`
	ByUser       []UserCount       `json:"by_user"`
	PerDay       []DayCount        `json:"per_day"`
}

// Service is the read side of the activity log.
type Service struct{}

// NewService creates a new activity read service
func NewService() *Service {
	return &Service{}
}

// List returns activity rows matching the query, newest first, with the
// total match count.
func (s *Service) List(ctx context.Context, db orm.DB, q Query) ([]*models.UserActivity, int, error) {
	var activities []*models.UserActivity

	query := s.scoped(db.ModelContext(ctx, &activities), q)

	page := q.Page.Normalize()
	total, err := query.
		Relation("User").
		Order("performed_at DESC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		SelectAndCount()
	if err != nil {
		if err == pg.ErrNoRows {
			return []*models.UserActivity{}, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}

	return activities, total, nil
}

// Get returns one activity row by id, scoped to the given company when set
func (s *Service) Get(ctx context.Context, db orm.DB, id uuid.UUID, companyID *uuid.UUID) (*models.UserActivity, error) {
	activity := new(models.UserActivity)
	query := db.ModelContext(ctx, activity).
		Relation("User").
		Where("user_activity.id = ?", id)
	if companyID != nil {
		query = query.Where("user_activity.company_id = ?", *companyID)
	}

	if err := query.Select(); err != nil {
		if err == pg.ErrNoRows {
			return nil, data.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}

// Days of history the per-day series covers.
const statisticsDays = 30

// Statistics aggregates the activity log grouped by action, entity type,
// acting user, and calendar day.
func (s *Service) Statistics(ctx context.Context, db orm.DB, q Query) (*Statistics, error) {
	stats := &Statistics{
		ByAction:     []ActionCount{},
		ByEntityType: []EntityTypeCount{},
		ByUser:       []UserCount{},
		PerDay:       []DayCount{},
	}

	total, err := s.scoped(db.ModelContext(ctx, (*models.UserActivity)(nil)), q).Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}
	stats.Total = total

	err = s.scoped(db.ModelContext(ctx, (*models.UserActivity)(nil)), q).
		ColumnExpr("action").
		ColumnExpr("count(*) AS count").
		Group("action").
		Order("count DESC").
		Select(&stats.ByAction)
	if err != nil && err != pg.ErrNoRows {
		return nil, fmt.Errorf("failed to group activities by action: %w", err)
	}

	err = s.scoped(db.ModelContext(ctx, (*models.UserActivity)(nil)), q).
		ColumnExpr("entity_type").
		ColumnExpr("count(*) AS count").
		Group("entity_type").
		Order("count DESC").
		Select(&stats.ByEntityType)
	if err != nil && err != pg.ErrNoRows {
		return nil, fmt.Errorf("failed to group activities by entity type: %w", err)
	}

	err = s.scoped(db.ModelContext(ctx, (*models.UserActivity)(nil)), q).
		ColumnExpr("user_activity.user_id AS user_id").
		ColumnExpr("u.name AS user_name").
		ColumnExpr("count(*) AS count").
		Join("JOIN users AS u ON u.id = user_activity.user_id").
		Group("user_activity.user_id", "u.name").
		Order("count DESC").
		Select(&stats.ByUser)
	if err != nil && err != pg.ErrNoRows {
		return nil, fmt.Errorf("failed to group activities by user: %w", err)
	}

	since := time.Now().AddDate(0, 0, -statisticsDays)
	err = s.scoped(db.ModelContext(ctx, (*models.UserActivity)(nil)), q).
		ColumnExpr("date_trunc('day', performed_at) AS day").
		ColumnExpr("count(*) AS count").
		Where("performed_at >= ?", since).
		Group("day").
		Order("day ASC").
		Select(&stats.PerDay)
	if err != nil && err != pg.ErrNoRows {
		return nil, fmt.Errorf("failed to group activities by day: %w", err)
	}

	return stats, nil
}

func (s *Service) scoped(query *orm.Query, q Query) *orm.Query {
	if q.CompanyID != nil {
		query = query.Where("user_activity.company_id = ?", *q.CompanyID)
	}
	if q.UserID != nil {
		query = query.Where("user_activity.user_id = ?", *q.UserID)
	}
	if q.Action != "" {
		query = query.Where("user_activity.action = ?", q.Action)
	}
	if q.EntityType != "" {
		query = query.Where("user_activity.entity_type = ?", q.EntityType)
	}
	if q.From != nil {
		query = query.Where("user_activity.performed_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("user_activity.performed_at <= ?", *q.To)
	}
	return query
}
