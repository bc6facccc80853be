package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	"go.uber.org/zap"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/config"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/observability"
)

// DB is a wrapper around pg.DB
type DB struct {
	*pg.DB
	logger *observability.Logger
}

// New creates a new database connection
func New(cfg *config.Config, logger *observability.Logger) (*DB, error) {
	opts := &pg.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port),
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Name,
		PoolSize:     cfg.Database.MaxConnections,
		MinIdleConns: cfg.Database.IdleConnections,
		DialTimeout:  time.Duration(cfg.Database.Timeout) * time.Second,
	}

	db := pg.Connect(opts)

	ctx := context.Background()
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.App.Debug {
		db.AddQueryHook(queryLogger{logger: logger})
	}

	return &DB{DB: db, logger: logger}, nil
}

// CreateSchema creates the database schema for the models
func (db *DB) CreateSchema() error {
	tables := []interface{}{
		(*models.Company)(nil),
		(*models.User)(nil),
		(*models.SessionToken)(nil),
		(*models.Category)(nil),
		(*models.Tag)(nil),
		(*models.QAPair)(nil),
		(*models.QAPairTag)(nil),
		(*models.QAPairHistory)(nil),
		(*models.QAImport)(nil),
		(*models.UserActivity)(nil),
		(*models.AppearanceSetting)(nil),
	}

	for _, table := range tables {
		// No FK constraints: history and activity rows outlive the
		// entities they describe.
		err := db.Model(table).CreateTable(&orm.CreateTableOptions{
			IfNotExists: true,
		})
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", table, err)
		}
	}

	if db.logger != nil {
		db.logger.Info("database schema created")
	}
	return nil
}

// RunInTransaction executes fn inside a transaction. It implements
// data.TxRunner so services can stay ignorant of pg.Tx.
func (db *DB) RunInTransaction(ctx context.Context, fn func(db orm.DB) error) error {
	return db.DB.RunInTransaction(ctx, func(tx *pg.Tx) error {
		return fn(tx)
	})
}

// Close closes the database connection
func (db *DB) Close() {
	if err := db.DB.Close(); err != nil && db.logger != nil {
		db.logger.Error("error closing database connection", err)
	}
}

// queryLogger implements the pg.QueryHook interface for query logging
type queryLogger struct {
	logger *observability.Logger
}

type queryStartKey struct{}

// BeforeQuery records the query start time
func (q queryLogger) BeforeQuery(ctx context.Context, _ *pg.QueryEvent) (context.Context, error) {
	return context.WithValue(ctx, queryStartKey{}, time.Now()), nil
}

// AfterQuery logs a query after it's executed
func (q queryLogger) AfterQuery(ctx context.Context, event *pg.QueryEvent) error {
	query, err := event.FormattedQuery()
	if err != nil {
		return err
	}

	fields := []zap.Field{zap.ByteString("sql", query)}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		fields = append(fields, zap.Duration("duration", time.Since(start)))
	}
	q.logger.Debug("query executed", fields...)

	return nil
}
