package models

import (
	"context"
	"errors"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated account. A user belongs to at most one
// company; an admin with no company is a super-admin with cross-tenant access.
type User struct {
	tableName struct{} `pg:"users"`

	ID           uuid.UUID  `pg:"id,type:uuid,pk" json:"id"`
	Name         string     `pg:"name,notnull" json:"name"`
	Email        string     `pg:"email,unique,notnull" json:"email"`
	PasswordHash string     `pg:"password_hash,notnull" json:"-"`
	IsAdmin      bool       `pg:"is_admin,notnull,default:false,use_zero" json:"is_admin"`
	CompanyID    *uuid.UUID `pg:"company_id,type:uuid" json:"company_id"`
	CreatedAt    time.Time  `pg:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt    time.Time  `pg:"updated_at,notnull,default:now()" json:"updated_at"`

	// Relations
	Company *Company `pg:"rel:has-one,fk:company_id" json:"company,omitempty"`

	// Password is accepted on input and hashed by the insert/update hooks.
	Password string `pg:"-" json:"-"`
}

var (
	_ orm.BeforeInsertHook = (*User)(nil)
	_ orm.BeforeUpdateHook = (*User)(nil)
)

// BeforeInsert hook is called before inserting a new user
func (u *User) BeforeInsert(ctx context.Context) (context.Context, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Password != "" {
		hash, err := HashPassword(u.Password)
		if err != nil {
			return ctx, err
		}
		u.PasswordHash = hash
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	return ctx, nil
}

// BeforeUpdate hook is called before updating a user
func (u *User) BeforeUpdate(ctx context.Context) (context.Context, error) {
	if u.Password != "" {
		hash, err := HashPassword(u.Password)
		if err != nil {
			return ctx, err
		}
		u.PasswordHash = hash
	}
	u.UpdatedAt = time.Now()
	return ctx, nil
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(hash), err
}

// CheckPassword checks if the provided password is correct
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsSuperAdmin reports whether the user is an admin with no company, which
// grants cross-tenant access.
func (u *User) IsSuperAdmin() bool {
	return u.IsAdmin && u.CompanyID == nil
}
