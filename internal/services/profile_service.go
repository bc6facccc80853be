package services

import (
	"context"
	"errors"

	"github.com/go-pg/pg/v10/orm"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// ProfileService lets authenticated users manage their own account.
type ProfileService struct {
	db    orm.DB
	tx    data.TxRunner
	users data.UserRepositoryInterface
	sink  activity.Sink
}

// NewProfileService creates a new profile service
func NewProfileService(
	db orm.DB,
	tx data.TxRunner,
	users data.UserRepositoryInterface,
	sink activity.Sink,
) *ProfileService {
	return &ProfileService{
		db:    db,
		tx:    tx,
		users: users,
		sink:  sink,
	}
}

// UpdateProfileInput carries the self-editable profile fields.
type UpdateProfileInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ChangePasswordInput carries a password change request. The current
// password must be supplied and verified.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// Get returns the caller's own user record
func (s *ProfileService) Get(ctx context.Context, actor *auth.Principal) (*models.User, error) {
	return s.users.GetByID(ctx, s.db, actor.UserID)
}

// Update modifies the caller's own name or email
func (s *ProfileService) Update(ctx context.Context, actor *auth.Principal, in UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, s.db, actor.UserID)
	if err != nil {
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
			EntityType: "profile",
			EntityID:   &user.ID,
			CompanyID:  user.CompanyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword sets a new password after verifying the current one. The
// caller's session stays live.
func (s *ProfileService) ChangePassword(ctx context.Context, actor *auth.Principal, in ChangePasswordInput) error {
	user, err := s.users.GetByID(ctx, s.db, actor.UserID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(in.CurrentPassword) {
		return models.NewValidationError("current password is incorrect")
	}

	user.Password = in.NewPassword

	return s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.users.Update(ctx, db, user); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionResetPass,
			EntityType: "profile",
			EntityID:   &user.ID,
			CompanyID:  user.CompanyID,
		})
	})
}
