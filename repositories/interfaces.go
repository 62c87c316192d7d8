// Package repositories defines the persistence contracts for the gateway.
package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/polyglot-hub/llm-router/models"
)

// DecisionRepository persists routing-decision audit records
type DecisionRepository interface {
	// Insert stores a new decision record
	Insert(ctx context.Context, decision *models.RoutingDecision) error

	// GetByID retrieves a decision record by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.RoutingDecision, error)

	// List returns the most recent decision records, newest first
	List(ctx context.Context, limit int) ([]*models.RoutingDecision, error)
}
