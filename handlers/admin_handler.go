package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/polyglot-hub/llm-router/app"
	"github.com/polyglot-hub/llm-router/repositories/postgres"
	"github.com/polyglot-hub/llm-router/routing"
	"github.com/polyglot-hub/llm-router/utils"
)

// ProvidersHandler returns a snapshot of the provider registry
func ProvidersHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, deps.Registry.Snapshots())
	}
}

// RefreshProvidersHandler re-runs provider initialization and model listing
func RefreshProvidersHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Registry.Refresh(r.Context())
		_ = utils.WriteOK(w, deps.Registry.Snapshots())
	}
}

// StatsHandler returns the per-provider performance snapshot
func StatsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, deps.Router.Stats())
	}
}

// ResetStatsHandler clears the performance ledger
func ResetStatsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Router.ResetStats()
		utils.WriteNoContent(w)
	}
}

// ReconfigureRequest is the inbound router configuration body
type ReconfigureRequest struct {
	PriorityOrder           []string `json:"priority_order,omitempty"`
	FallbackEnabled         bool     `json:"fallback_enabled"`
	CostOptimization        bool     `json:"cost_optimization"`
	PrivacyFirst            bool     `json:"privacy_first"`
	PreferredVisionProvider string   `json:"preferred_vision_provider,omitempty"`
	CallTimeoutMs           int      `json:"call_timeout_ms,omitempty" validate:"omitempty,min=0"`
}

// ReconfigureHandler replaces the router's policy flags wholesale
func ReconfigureHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ReconfigureRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			_ = utils.WriteBadRequest(w, "invalid JSON body", nil)
			return
		}
		if err := utils.ValidateStruct(body); err != nil {
			var valErr *utils.ValidationError
			if errors.As(err, &valErr) {
				_ = utils.WriteBadRequest(w, valErr.Message, valErr.Details())
				return
			}
			_ = utils.WriteBadRequest(w, err.Error(), nil)
			return
		}

		cfg := routing.Config{
			PriorityOrder:           body.PriorityOrder,
			FallbackEnabled:         body.FallbackEnabled,
			CostOptimization:        body.CostOptimization,
			PrivacyFirst:            body.PrivacyFirst,
			PreferredVisionProvider: body.PreferredVisionProvider,
			CallTimeout:             time.Duration(body.CallTimeoutMs) * time.Millisecond,
		}
		if err := deps.Router.Reconfigure(cfg); err != nil {
			_ = utils.WriteBadRequest(w, err.Error(), nil)
			return
		}
		_ = utils.WriteOK(w, deps.Router.Configuration())
	}
}

// DecisionsHandler lists recent routing-decision audit records
func DecisionsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Decisions == nil {
			_ = utils.WriteNotFound(w, "decision audit trail is not configured")
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 || parsed > 500 {
				_ = utils.WriteBadRequest(w, "limit must be between 1 and 500", nil)
				return
			}
			limit = parsed
		}

		decisions, err := deps.Decisions.List(r.Context(), limit)
		if err != nil {
			_ = utils.WriteInternalError(w, "failed to list decisions")
			return
		}
		_ = utils.WriteOK(w, decisions)
	}
}

// DecisionHandler returns a single routing-decision audit record by ID
func DecisionHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Decisions == nil {
			_ = utils.WriteNotFound(w, "decision audit trail is not configured")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "decision id must be a UUID", nil)
			return
		}

		decision, err := deps.Decisions.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, postgres.ErrDecisionNotFound) {
				_ = utils.WriteNotFound(w, "decision not found")
				return
			}
			_ = utils.WriteInternalError(w, "failed to get decision")
			return
		}
		_ = utils.WriteOK(w, decision)
	}
}
