package models

import (
	"time"

	"github.com/google/uuid"
)

// DecisionStatus indicates how a routed request concluded
type DecisionStatus string

const (
	DecisionStatusSuccess  DecisionStatus = "success"
	DecisionStatusFallback DecisionStatus = "fallback"
	DecisionStatusFailed   DecisionStatus = "failed"
)

// RoutingDecision is one audit record of a routing decision and its outcome.
// These records exist for observability; the performance ledger that drives
// scoring is never loaded back from them.
type RoutingDecision struct {
	ID            uuid.UUID      `json:"id"`
	RequestID     string         `json:"request_id"`
	Provider      string         `json:"provider"`
	TaskCategory  string         `json:"task_category"`
	Score         float64        `json:"score"`
	Reasons       []string       `json:"reasons"`
	FallbackDepth int            `json:"fallback_depth"`
	LatencyMs     int            `json:"latency_ms"`
	Status        DecisionStatus `json:"status"`
	ErrorKind     string         `json:"error_kind,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewRoutingDecision creates a decision record with a fresh ID and timestamp
func NewRoutingDecision(requestID string) *RoutingDecision {
	return &RoutingDecision{
		ID:        uuid.New(),
		RequestID: requestID,
		CreatedAt: time.Now(),
	}
}
