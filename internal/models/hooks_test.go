package models

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestUserBeforeInsertAssignsIDAndHashesPassword(t *testing.T) {
	u := &User{
		Name:     "Test User",
		Email:    "user@test",
		Password: "secret-password-1",
	}

	_, err := u.BeforeInsert(context.Background())

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.NotEqual(t, "secret-password-1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret-password-1")))
	assert.False(t, u.CreatedAt.IsZero())
	assert.False(t, u.UpdatedAt.IsZero())
}

func TestUserBeforeInsertKeepsExistingID(t *testing.T) {
	id := uuid.New()
	u := &User{ID: id, Name: "Test User", Email: "user@test"}

	_, err := u.BeforeInsert(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, id, u.ID)
	// No plaintext password given, so the stored hash is untouched.
	assert.Empty(t, u.PasswordHash)
}

func TestUserBeforeUpdateRehashesPassword(t *testing.T) {
	u := &User{PasswordHash: "old-hash", Password: "new-password-1"}

	_, err := u.BeforeUpdate(context.Background())

	assert.NoError(t, err)
	assert.NotEqual(t, "old-hash", u.PasswordHash)
	assert.True(t, u.CheckPassword("new-password-1"))
}

func TestCompanyBeforeInsertDerivesSlug(t *testing.T) {
	c := &Company{Name: "Acme Corp"}

	_, err := c.BeforeInsert(context.Background())

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "acme-corp", c.Slug)
}

func TestCompanyBeforeInsertKeepsExplicitSlug(t *testing.T) {
	c := &Company{Name: "Acme Corp", Slug: "acme"}

	_, err := c.BeforeInsert(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "acme", c.Slug)
}

func TestSessionTokenBeforeInsertAssignsID(t *testing.T) {
	tok := &SessionToken{UserID: uuid.New(), TokenID: uuid.New().String()}

	_, err := tok.BeforeInsert(context.Background())

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tok.ID)
	assert.False(t, tok.CreatedAt.IsZero())
}

func TestQAPairBeforeInsertAssignsID(t *testing.T) {
	p := &QAPair{Question: "Q", Answer: "A", CompanyID: uuid.New()}

	_, err := p.BeforeInsert(context.Background())

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
}

func TestQAPairHistoryBeforeInsertDefaults(t *testing.T) {
	h := &QAPairHistory{QAPairID: uuid.New(), Question: "Q", Answer: "A", ChangeType: ChangeTypeUpdate}

	_, err := h.BeforeInsert(context.Background())

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, h.ID)
	assert.False(t, h.ChangedAt.IsZero())
}

func TestQAImportBeforeInsertDefaults(t *testing.T) {
	imp := &QAImport{Filename: "batch.json", ImportedBy: uuid.New()}

	_, err := imp.BeforeInsert(context.Background())

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, imp.ID)
	assert.False(t, imp.ImportedAt.IsZero())
	assert.Equal(t, ImportStatusProcessing, imp.Status)
}
