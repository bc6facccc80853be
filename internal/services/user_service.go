package services

import (
	"context"
	"errors"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// UserService handles business logic for user accounts.
type UserService struct {
	db       orm.DB
	tx       data.TxRunner
	users    data.UserRepositoryInterface
	sessions data.SessionRepositoryInterface
	sink     activity.Sink
}

// NewUserService creates a new user service
func NewUserService(
	db orm.DB,
	tx data.TxRunner,
	users data.UserRepositoryInterface,
	sessions data.SessionRepositoryInterface,
	sink activity.Sink,
) *UserService {
	return &UserService{
		db:       db,
		tx:       tx,
		users:    users,
		sessions: sessions,
		sink:     sink,
	}
}

// CreateUserInput carries the fields for creating a user.
type CreateUserInput struct {
	Name      string     `json:"name" binding:"required"`
	Email     string     `json:"email" binding:"required,email"`
	Password  string     `json:"password" binding:"required,min=8"`
	IsAdmin   bool       `json:"is_admin"`
	CompanyID *uuid.UUID `json:"company_id"`
}

// UpdateUserInput carries the updatable user fields.
type UpdateUserInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ResetPasswordInput carries the new password for an admin reset.
type ResetPasswordInput struct {
	Password string `json:"password" binding:"required,min=8"`
}

// List returns users scoped to what the actor may see. Company admins are
// pinned to their own company regardless of the requested filter.
func (s *UserService) List(ctx context.Context, actor *auth.Principal, q data.UserQuery) ([]*models.User, int, error) {
	if actor.Role != auth.RoleSuperAdmin {
		q.CompanyID = actor.CompanyID
	}
	return s.users.List(ctx, s.db, q)
}

// Get returns one user the actor is allowed to see
func (s *UserService) Get(ctx context.Context, actor *auth.Principal, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(actor, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Create adds a user. Company admins create members and admins inside their
// own company; only super admins may create users elsewhere or other super
// admins.
func (s *UserService) Create(ctx context.Context, actor *auth.Principal, in CreateUserInput) (*models.User, error) {
	companyID := in.CompanyID
	if actor.Role != auth.RoleSuperAdmin {
		companyID = actor.CompanyID
	}
	if companyID == nil && actor.Role != auth.RoleSuperAdmin {
		return nil, models.NewForbiddenError("only super admins can create users without a company")
	}
	if companyID == nil && !in.IsAdmin {
		return nil, models.NewValidationError("a user without a company must be an admin")
	}

	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		IsAdmin:   in.IsAdmin,
		CompanyID: companyID,
	}

	err := s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.users.Insert(ctx, db, user); err != nil {
			if errors.Is(err, data.ErrDuplicateRecord) {
				return models.NewConflictError("a user with this email already exists")
			}
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionCreate,
			EntityType: "user",
			EntityID:   &user.ID,
			Details:    map[string]interface{}{"email": user.Email, "is_admin": user.IsAdmin},
			CompanyID:  companyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update modifies a user's name or email
func (s *UserService) Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(actor, user); err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.users.Update(ctx, db, user); err != nil {
			if errors.Is(err, data.ErrDuplicateRecord) {
				return models.NewConflictError("a user with this email already exists")
			}
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionUpdate,
			EntityType: "user",
			EntityID:   &user.ID,
			Details:    map[string]interface{}{"email": user.Email},
			CompanyID:  user.CompanyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user. Callers cannot delete themselves, and the last
// admin in the deployment cannot be removed.
func (s *UserService) Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error {
	if actor.UserID == id {
		return models.NewConflictError("you cannot delete your own account")
	}

	user, err := s.users.GetByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if err := s.canManage(actor, user); err != nil {
		return err
	}

	if user.IsAdmin {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return err
		}
	}

	return s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.sessions.RevokeAllForUser(ctx, db, user.ID); err != nil {
			return err
		}
		if err := s.users.Delete(ctx, db, user.ID); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionDelete,
			EntityType: "user",
			EntityID:   &user.ID,
			Details:    map[string]interface{}{"email": user.Email},
			CompanyID:  user.CompanyID,
		})
	})
}

// ToggleAdmin flips a user's admin flag. Demoting the last admin in the
// deployment is refused, as is toggling yourself.
func (s *UserService) ToggleAdmin(ctx context.Context, actor *auth.Principal, id uuid.UUID) (*models.User, error) {
	if actor.UserID == id {
		return nil, models.NewConflictError("you cannot change your own admin status")
	}

	user, err := s.users.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(actor, user); err != nil {
		return nil, err
	}

	if user.IsAdmin {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return nil, err
		}
	}

	user.IsAdmin = !user.IsAdmin

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.users.Update(ctx, db, user); err != nil {
			return err
		}
		// A role change invalidates open sessions so the old tier stops
		// working immediately.
		if err := s.sessions.RevokeAllForUser(ctx, db, user.ID); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionToggleAdmin,
			EntityType: "user",
			EntityID:   &user.ID,
			Details:    map[string]interface{}{"is_admin": user.IsAdmin},
			CompanyID:  user.CompanyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword sets a new password for a user and revokes their sessions
func (s *UserService) ResetPassword(ctx context.Context, actor *auth.Principal, id uuid.UUID, in ResetPasswordInput) error {
	user, err := s.users.GetByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if err := s.canManage(actor, user); err != nil {
		return err
	}

	user.Password = in.Password

	return s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.users.Update(ctx, db, user); err != nil {
			return err
		}
		if err := s.sessions.RevokeAllForUser(ctx, db, user.ID); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionResetPass,
			EntityType: "user",
			EntityID:   &user.ID,
			CompanyID:  user.CompanyID,
		})
	})
}

// canManage checks the tenant and tier rules between actor and target.
// Company admins only reach users of their own company and never super
// admins.
func (s *UserService) canManage(actor *auth.Principal, target *models.User) error {
	if actor.Role == auth.RoleSuperAdmin {
		return nil
	}
	if target.IsSuperAdmin() {
		return models.NewForbiddenError("insufficient permissions")
	}
	if target.CompanyID == nil || actor.CompanyID == nil || *target.CompanyID != *actor.CompanyID {
		return models.NewForbiddenError("user belongs to another company")
	}
	return nil
}

// ensureNotLastAdmin refuses operations that would leave the deployment
// with no admin at all.
func (s *UserService) ensureNotLastAdmin(ctx context.Context) error {
	count, err := s.users.CountAdmins(ctx, s.db)
	if err != nil {
		return err
	}
	if count <= 1 {
		return models.NewConflictError("cannot remove the last admin")
	}
	return nil
}
