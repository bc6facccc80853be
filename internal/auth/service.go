package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/config"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCompanyInactive    = errors.New("company account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionRevoked     = errors.New("session has been revoked")
)

// Claims represents the JWT claims for authentication. The jti (ID)
// registered claim carries the session token id.
type Claims struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest represents the data needed for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the response with an authentication token
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   int64        `json:"expires_at"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

// Service provides authentication functionality
type Service struct {
	db       orm.DB
	tx       data.TxRunner
	cfg      *config.Config
	users    data.UserRepositoryInterface
	sessions data.SessionRepositoryInterface
	sink     activity.Sink
}

// NewService creates a new authentication service
func NewService(
	db orm.DB,
	tx data.TxRunner,
	cfg *config.Config,
	users data.UserRepositoryInterface,
	sessions data.SessionRepositoryInterface,
	sink activity.Sink,
) *Service {
	return &Service{
		db:       db,
		tx:       tx,
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		sink:     sink,
	}
}

// Login authenticates a user and issues a single access token. Any
// previously issued sessions for the user are revoked, so at most one
// session is live at a time.
func (s *Service) Login(ctx context.Context, req LoginRequest, ipAddress, userAgent string) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	// Members of a deactivated company cannot sign in. Super admins have
	// no company and are exempt.
	if user.CompanyID != nil {
		if user.Company == nil || !user.Company.IsActive {
			return nil, ErrCompanyInactive
		}
	}

	tokenID := uuid.New().String()
	expiresAt := time.Now().Add(s.cfg.Auth.TokenExpiry)

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.sessions.RevokeAllForUser(ctx, db, user.ID); err != nil {
			return err
		}
		if err := s.sessions.Insert(ctx, db, &models.SessionToken{
			UserID:    user.ID,
			TokenID:   tokenID,
			ExpiresAt: expiresAt,
			IPAddress: ipAddress,
			UserAgent: userAgent,
		}); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     user.ID,
			Action:     models.ActionLogin,
			EntityType: "user",
			EntityID:   &user.ID,
			Details:    map[string]interface{}{"ip_address": ipAddress},
			CompanyID:  user.CompanyID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.generateAccessToken(user, tokenID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &TokenResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt.Unix(),
		TokenType:   "Bearer",
		User:        user,
	}, nil
}

// Authenticate validates an access token against its session row and
// returns the principal together with the user record.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*Principal, *models.User, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.GetByTokenID(ctx, s.db, claims.ID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, nil, ErrSessionRevoked
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}
	if !session.IsLive() {
		return nil, nil, ErrSessionRevoked
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if user.CompanyID != nil && (user.Company == nil || !user.Company.IsActive) {
		return nil, nil, ErrCompanyInactive
	}

	principal := &Principal{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      DeriveRole(user),
		TokenID:   claims.ID,
	}
	return principal, user, nil
}

// Logout revokes the caller's current session
func (s *Service) Logout(ctx context.Context, principal *Principal) error {
	return s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.sessions.Revoke(ctx, db, principal.TokenID); err != nil && !errors.Is(err, data.ErrNotFound) {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     principal.UserID,
			Action:     models.ActionLogout,
			EntityType: "user",
			EntityID:   &principal.UserID,
			CompanyID:  principal.CompanyID,
		})
	})
}

// RevokeUserSessions revokes every live session of a user. Called after
// password resets and role changes so stale tokens stop working at once.
func (s *Service) RevokeUserSessions(ctx context.Context, db orm.DB, userID uuid.UUID) error {
	return s.sessions.RevokeAllForUser(ctx, db, userID)
}

func (s *Service) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// generateAccessToken creates a JWT access token bound to a session row
func (s *Service) generateAccessToken(user *models.User, tokenID string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   DeriveRole(user).String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.cfg.App.Name,
			Subject:   user.ID.String(),
			ID:        tokenID,
		},
	}
	if user.CompanyID != nil {
		claims.CompanyID = user.CompanyID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Auth.JWTSecret))
}
