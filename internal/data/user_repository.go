package data

import (
	"context"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// User list sorting is restricted to these fields.
var userSortFields = map[string]bool{
	"name":       true,
	"email":      true,
	"created_at": true,
	"is_admin":   true,
}

// AllowedUserSortField reports whether field may be used to sort user lists.
func AllowedUserSortField(field string) bool {
	return userSortFields[field]
}

// UserQuery holds filters for listing users.
type UserQuery struct {
	CompanyID *uuid.UUID
	IsAdmin   *bool
	Search    string
	Sort      Sort
	Page      Page
}

// UserRepositoryInterface defines database operations for users.
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, db orm.DB, email string) (*models.User, error)
	List(ctx context.Context, db orm.DB, q UserQuery) ([]*models.User, int, error)
	Insert(ctx context.Context, db orm.DB, user *models.User) error
	Update(ctx context.Context, db orm.DB, user *models.User) error
	Delete(ctx context.Context, db orm.DB, id uuid.UUID) error
	CountAdmins(ctx context.Context, db orm.DB) (int, error)
}

// UserRepository is the go-pg implementation of UserRepositoryInterface.
type UserRepository struct{}

// NewUserRepository creates a new user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, db orm.DB, id uuid.UUID) (*models.User, error) {
	user := new(models.User)
	err := db.ModelContext(ctx, user).
		Where("\"user\".id = ?", id).
		Relation("Company").
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, db orm.DB, email string) (*models.User, error) {
	user := new(models.User)
	err := db.ModelContext(ctx, user).
		Where("\"user\".email = ?", email).
		Relation("Company").
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return user, nil
}

// List retrieves a filtered, paginated list of users
func (r *UserRepository) List(ctx context.Context, db orm.DB, q UserQuery) ([]*models.User, int, error) {
	var users []*models.User
	page := q.Page.Normalize()

	query := db.ModelContext(ctx, &users)
	if q.CompanyID != nil {
		query = query.Where("company_id = ?", *q.CompanyID)
	}
	if q.IsAdmin != nil {
		query = query.Where("is_admin = ?", *q.IsAdmin)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.WhereGroup(func(sub *orm.Query) (*orm.Query, error) {
			return sub.WhereOr("name ILIKE ?", pattern).
				WhereOr("email ILIKE ?", pattern), nil
		})
	}

	total, err := query.Count()
	if err != nil {
		return nil, 0, wrapError(err)
	}

	err = query.
		Order(q.Sort.OrderExpr("created_at")).
		Limit(page.PerPage).
		Offset(page.Offset()).
		Select()
	if err != nil {
		return nil, 0, wrapError(err)
	}

	return users, total, nil
}

// Insert creates a new user
func (r *UserRepository) Insert(ctx context.Context, db orm.DB, user *models.User) error {
	_, err := db.ModelContext(ctx, user).Insert()
	return wrapError(err)
}

// Update saves changes to an existing user
func (r *UserRepository) Update(ctx context.Context, db orm.DB, user *models.User) error {
	_, err := db.ModelContext(ctx, user).WherePK().Update()
	return wrapError(err)
}

// Delete removes a user row
func (r *UserRepository) Delete(ctx context.Context, db orm.DB, id uuid.UUID) error {
	res, err := db.ModelContext(ctx, (*models.User)(nil)).
		Where("id = ?", id).
		Delete()
	if err != nil {
		return wrapError(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAdmins returns the number of admin users across the deployment. The
// count is deployment-wide on purpose: the last-admin rule protects the
// system, not a single tenant.
func (r *UserRepository) CountAdmins(ctx context.Context, db orm.DB) (int, error) {
	count, err := db.ModelContext(ctx, (*models.User)(nil)).
		Where("is_admin = TRUE").
		Count()
	return count, wrapError(err)
}
