package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/polyglot-hub/llm-router/models"
	"github.com/polyglot-hub/llm-router/repositories"
	"go.uber.org/zap"
)

// ErrDecisionNotFound is returned when a decision record does not exist
var ErrDecisionNotFound = errors.New("routing decision not found")

// DecisionRepository implements repositories.DecisionRepository on postgres
type DecisionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDecisionRepository creates a new decision repository
func NewDecisionRepository(db *DB, logger *zap.Logger) repositories.DecisionRepository {
	return &DecisionRepository{db: db, logger: logger}
}

// Insert stores a new decision record
func (r *DecisionRepository) Insert(ctx context.Context, d *models.RoutingDecision) error {
	reasons, err := json.Marshal(d.Reasons)
	if err != nil {
		return fmt.Errorf("failed to marshal reasons: %w", err)
	}

	query := `
		INSERT INTO routing_decisions (
			id, request_id, provider, task_category, score, reasons,
			fallback_depth, latency_ms, status, error_kind, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		d.ID,
		d.RequestID,
		d.Provider,
		d.TaskCategory,
		d.Score,
		reasons,
		d.FallbackDepth,
		d.LatencyMs,
		d.Status,
		d.ErrorKind,
		d.ErrorMessage,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert routing decision: %w", err)
	}

	r.logger.Debug("routing decision inserted",
		zap.String("id", d.ID.String()),
		zap.String("provider", d.Provider))
	return nil
}

// GetByID retrieves a decision record by ID
func (r *DecisionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RoutingDecision, error) {
	query := `
		SELECT id, request_id, provider, task_category, score, reasons,
		       fallback_depth, latency_ms, status, error_kind, error_message, created_at
		FROM routing_decisions
		WHERE id = $1
	`
	d, err := scanDecision(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDecisionNotFound
		}
		return nil, fmt.Errorf("failed to get routing decision: %w", err)
	}
	return d, nil
}

// List returns the most recent decision records, newest first
func (r *DecisionRepository) List(ctx context.Context, limit int) ([]*models.RoutingDecision, error) {
	query := `
		SELECT id, request_id, provider, task_category, score, reasons,
		       fallback_depth, latency_ms, status, error_kind, error_message, created_at
		FROM routing_decisions
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list routing decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.RoutingDecision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan routing decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate routing decisions: %w", err)
	}
	return decisions, nil
}

// scanner matches both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDecision(s scanner) (*models.RoutingDecision, error) {
	d := &models.RoutingDecision{}
	var reasons []byte
	err := s.Scan(
		&d.ID,
		&d.RequestID,
		&d.Provider,
		&d.TaskCategory,
		&d.Score,
		&reasons,
		&d.FallbackDepth,
		&d.LatencyMs,
		&d.Status,
		&d.ErrorKind,
		&d.ErrorMessage,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &d.Reasons); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reasons: %w", err)
		}
	}
	return d, nil
}
