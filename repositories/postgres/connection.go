package postgres

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the postgres driver
	_ "github.com/lib/pq"
	"github.com/polyglot-hub/llm-router/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB opens a connection pool against the configured database
func NewDB(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &DB{DB: db, logger: logger}, nil
}

// InitSchema creates the routing_decisions table when it does not exist
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS routing_decisions (
			id UUID PRIMARY KEY,
			request_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			task_category TEXT NOT NULL DEFAULT '',
			score DOUBLE PRECISION NOT NULL DEFAULT 0,
			reasons JSONB NOT NULL DEFAULT '[]',
			fallback_depth INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error_kind TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_routing_decisions_created_at
			ON routing_decisions (created_at DESC);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize decision schema: %w", err)
	}
	db.logger.Info("decision audit schema initialized")
	return nil
}
