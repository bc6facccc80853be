package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// ImportStatus tracks the lifecycle of a bulk import. Completed and failed
// are terminal.
type ImportStatus string

// Import statuses
const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// QAImport is the ledger row for one bulk import of QA pairs.
type QAImport struct {
	tableName struct{} `pg:"qa_imports"`

	ID           uuid.UUID    `pg:"id,type:uuid,pk" json:"id"`
	Filename     string       `pg:"filename,notnull" json:"filename"`
	ImportedBy   uuid.UUID    `pg:"imported_by,type:uuid,notnull" json:"imported_by"`
	ImportedAt   time.Time    `pg:"imported_at,notnull" json:"imported_at"`
	RecordCount  int          `pg:"record_count,notnull,use_zero" json:"record_count"`
	Status       ImportStatus `pg:"status,type:text,notnull" json:"status"`
	ErrorMessage string       `pg:"error_message" json:"error_message,omitempty"`

	// Relations
	ImportedByUser *User `pg:"rel:has-one,fk:imported_by" json:"imported_by_user,omitempty"`
}

var _ orm.BeforeInsertHook = (*QAImport)(nil)

// BeforeInsert hook is called before inserting a new import row
func (i *QAImport) BeforeInsert(ctx context.Context) (context.Context, error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.ImportedAt.IsZero() {
		i.ImportedAt = time.Now()
	}
	if i.Status == "" {
		i.Status = ImportStatusProcessing
	}
	return ctx, nil
}

// IsTerminal reports whether the import can no longer change status.
func (i *QAImport) IsTerminal() bool {
	return i.Status == ImportStatusCompleted || i.Status == ImportStatusFailed
}
