package data

import (
	"context"
	"errors"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

// Common repository errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateRecord   = errors.New("duplicate record")
	ErrInvalidData       = errors.New("invalid data provided")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// TxRunner executes a function inside a database transaction. The orm.DB
// handed to fn is the transaction, so repository calls made through it are
// atomic with each other: if fn returns an error everything rolls back.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(db orm.DB) error) error
}

// Repository methods take an orm.DB so the same repository works against the
// pooled connection or inside a transaction handed out by a TxRunner.

// wrapError translates driver errors into repository sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pg.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr pg.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		return ErrDuplicateRecord
	}
	return err
}

// Sort carries a validated sort request. Repositories apply it only after the
// field has passed the caller's allow-list.
type Sort struct {
	Field     string
	Direction string
}

// OrderExpr renders the sort as an ORDER BY expression with a safe default.
func (s Sort) OrderExpr(defaultField string) string {
	field := s.Field
	if field == "" {
		field = defaultField
	}
	dir := "DESC"
	if s.Direction == "asc" {
		dir = "ASC"
	}
	return field + " " + dir
}

// Page carries pagination parameters with the defaults used across the API.
type Page struct {
	Number  int
	PerPage int
}

// Normalize clamps the page parameters into their allowed ranges.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 || p.PerPage > 100 {
		p.PerPage = 15
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}
