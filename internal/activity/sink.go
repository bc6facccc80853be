package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/observability"
)

// Entry describes one audit event to record.
type Entry struct {
	UserID     uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Details    map[string]interface{}
	CompanyID  *uuid.UUID
}

// Sink records audit entries. It takes the orm.DB of the surrounding
// transaction so the audit row commits or rolls back together with the
// mutation it describes.
type Sink interface {
	Record(ctx context.Context, db orm.DB, entry Entry) error
}

// Recorder is the database-backed Sink.
type Recorder struct {
	metrics *observability.Metrics
}

// NewRecorder creates a new audit recorder
func NewRecorder(metrics *observability.Metrics) *Recorder {
	return &Recorder{metrics: metrics}
}

// Record appends one audit row
func (r *Recorder) Record(ctx context.Context, db orm.DB, entry Entry) error {
	row := &models.UserActivity{
		ID:          uuid.New(),
		UserID:      entry.UserID,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Details:     entry.Details,
		PerformedAt: time.Now(),
		CompanyID:   entry.CompanyID,
	}

	if _, err := db.ModelContext(ctx, row).Insert(); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	r.metrics.RecordActivity(entry.Action, entry.EntityType)
	return nil
}
