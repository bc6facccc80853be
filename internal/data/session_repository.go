package data

import (
	"context"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// SessionRepositoryInterface defines database operations for session tokens.
// The store carries the single-session invariant: RevokeAllForUser is called
// before every Insert, so at most one live row exists per user.
type SessionRepositoryInterface interface {
	GetByTokenID(ctx context.Context, db orm.DB, tokenID string) (*models.SessionToken, error)
	Insert(ctx context.Context, db orm.DB, token *models.SessionToken) error
	Revoke(ctx context.Context, db orm.DB, tokenID string) error
	RevokeAllForUser(ctx context.Context, db orm.DB, userID uuid.UUID) error
}

// SessionRepository is the go-pg implementation of SessionRepositoryInterface.
type SessionRepository struct{}

// NewSessionRepository creates a new session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// GetByTokenID retrieves a session row by its token ID (the JWT jti)
func (r *SessionRepository) GetByTokenID(ctx context.Context, db orm.DB, tokenID string) (*models.SessionToken, error) {
	token := new(models.SessionToken)
	err := db.ModelContext(ctx, token).
		Where("token_id = ?", tokenID).
		Select()
	if err != nil {
		return nil, wrapError(err)
	}
	return token, nil
}

// Insert creates a new session row
func (r *SessionRepository) Insert(ctx context.Context, db orm.DB, token *models.SessionToken) error {
	_, err := db.ModelContext(ctx, token).Insert()
	return wrapError(err)
}

// Revoke marks the session row with the given token ID as revoked
func (r *SessionRepository) Revoke(ctx context.Context, db orm.DB, tokenID string) error {
	_, err := db.ModelContext(ctx, (*models.SessionToken)(nil)).
		Set("revoked = TRUE").
		Where("token_id = ?", tokenID).
		Update()
	return wrapError(err)
}

// RevokeAllForUser marks every live session row for the user as revoked
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, db orm.DB, userID uuid.UUID) error {
	_, err := db.ModelContext(ctx, (*models.SessionToken)(nil)).
		Set("revoked = TRUE").
		Where("user_id = ? AND revoked = FALSE", userID).
		Update()
	return wrapError(err)
}
