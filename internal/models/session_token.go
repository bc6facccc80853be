package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// SessionToken is the server-side record of one issued access token. The
// access token itself is a JWT; its jti must match a live row here, which is
// what makes revocation and the single-session rule enforceable.
type SessionToken struct {
	tableName struct{} `pg:"session_tokens"`

	ID        uuid.UUID `pg:"id,type:uuid,pk" json:"id"`
	UserID    uuid.UUID `pg:"user_id,type:uuid,notnull" json:"user_id"`
	TokenID   string    `pg:"token_id,unique,notnull" json:"token_id"`
	ExpiresAt time.Time `pg:"expires_at,notnull" json:"expires_at"`
	Revoked   bool      `pg:"revoked,notnull,default:false,use_zero" json:"revoked"`
	IPAddress string    `pg:"ip_address" json:"ip_address,omitempty"`
	UserAgent string    `pg:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time `pg:"created_at,notnull,default:now()" json:"created_at"`
}

var _ orm.BeforeInsertHook = (*SessionToken)(nil)

// BeforeInsert hook is called before inserting a new session row
func (t *SessionToken) BeforeInsert(ctx context.Context) (context.Context, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	return ctx, nil
}

// IsLive reports whether the token can still authenticate requests.
func (t *SessionToken) IsLive() bool {
	return !t.Revoked && time.Now().Before(t.ExpiresAt)
}
