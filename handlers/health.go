package handlers

import (
	"net/http"

	"github.com/polyglot-hub/llm-router/app"
	"github.com/polyglot-hub/llm-router/utils"
)

// HealthCheck reports process liveness
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"providers": deps.Registry.Count(),
		})
	}
}
