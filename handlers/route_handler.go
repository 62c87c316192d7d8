package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/polyglot-hub/llm-router/app"
	"github.com/polyglot-hub/llm-router/models"
	"github.com/polyglot-hub/llm-router/providers"
	"github.com/polyglot-hub/llm-router/routing"
	"github.com/polyglot-hub/llm-router/utils"
	"go.uber.org/zap"
)

// ChatRouteRequest is the inbound routing request body
type ChatRouteRequest struct {
	Messages          []MessageRequest       `json:"messages" validate:"required,min=1,dive"`
	TaskCategory      string                 `json:"task_category,omitempty" validate:"omitempty,oneof=general_chat code_generation code_review translation summarization creative_writing vision_analysis"`
	PreferredProvider string                 `json:"preferred_provider,omitempty"`
	PreferLocal       bool                   `json:"prefer_local,omitempty"`
	ImageBase64       string                 `json:"image_base64,omitempty"`
	Options           map[string]interface{} `json:"options,omitempty"`
}

// MessageRequest is one conversation message in the request body
type MessageRequest struct {
	Role    string        `json:"role" validate:"required,oneof=system user assistant"`
	Content string        `json:"content,omitempty"`
	Parts   []PartRequest `json:"parts,omitempty" validate:"omitempty,dive"`
}

// PartRequest is one element of a multi-part message body
type PartRequest struct {
	Type     string `json:"type" validate:"required,oneof=text image"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ChatRouteHandler routes a chat request to the best backend provider
func ChatRouteHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ChatRouteRequest
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

		req, err := body.toRequest()
		if err != nil {
			_ = utils.WriteBadRequest(w, err.Error(), nil)
			return
		}

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		start := time.Now()
		result, routeErr := deps.Router.Route(r.Context(), req)
		recordDecision(deps, requestID, result, routeErr, time.Since(start))

		if routeErr != nil {
			writeRouteError(w, deps.Logger, routeErr)
			return
		}
		_ = utils.WriteOK(w, result)
	}
}

// toRequest converts the DTO into the router's request type
func (b ChatRouteRequest) toRequest() (routing.Request, error) {
	messages := make([]providers.Message, len(b.Messages))
	for i, m := range b.Messages {
		parts := make([]providers.ContentPart, len(m.Parts))
		for j, p := range m.Parts {
			parts[j] = providers.ContentPart{Type: p.Type, Text: p.Text, ImageURL: p.ImageURL}
		}
		messages[i] = providers.Message{Role: m.Role, Content: m.Content, Parts: parts}
	}

	var image []byte
	if b.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(b.ImageBase64)
		if err != nil {
			return routing.Request{}, errors.New("image_base64 is not valid base64")
		}
		image = decoded
	}

	return routing.Request{
		Messages:          messages,
		TaskCategory:      routing.TaskCategory(b.TaskCategory),
		Image:             image,
		PreferredProvider: b.PreferredProvider,
		PreferLocal:       b.PreferLocal,
		Options:           b.Options,
	}, nil
}

// recordDecision queues an audit record for the routing outcome
func recordDecision(deps *app.Dependencies, requestID string, result *routing.Result, routeErr error, latency time.Duration) {
	if deps.Audit == nil {
		return
	}

	decision := models.NewRoutingDecision(requestID)
	decision.LatencyMs = int(latency.Milliseconds())

	if routeErr != nil {
		decision.Status = models.DecisionStatusFailed
		decision.ErrorKind = string(routing.KindOf(routeErr))
		decision.ErrorMessage = routeErr.Error()
	} else {
		decision.Provider = result.Provider
		decision.TaskCategory = string(result.TaskCategory)
		decision.Score = result.Score
		decision.Reasons = result.Reasons
		decision.FallbackDepth = result.FallbackDepth
		if result.FallbackDepth > 0 {
			decision.Status = models.DecisionStatusFallback
		} else {
			decision.Status = models.DecisionStatusSuccess
		}
	}
	deps.Audit.Record(decision)
}

// writeRouteError maps routing error kinds onto HTTP status codes
func writeRouteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := routing.KindOf(err)
	logger.Warn("routing failed",
		zap.String("kind", string(kind)),
		zap.Error(err))

	switch kind {
	case routing.KindProviderNotFound:
		_ = utils.WriteNotFound(w, err.Error())
	case routing.KindMissingImage:
		_ = utils.WriteBadRequest(w, err.Error(), nil)
	case routing.KindNoProvidersAvailable,
		routing.KindProviderUnavailable,
		routing.KindNoVisionProvider,
		routing.KindAllProvidersFailed:
		_ = utils.WriteServiceUnavailable(w, err.Error(), routing.IsRetryable(err))
	default:
		if routing.IsRetryable(err) {
			_ = utils.WriteServiceUnavailable(w, err.Error(), true)
			return
		}
		_ = utils.WriteInternalError(w, err.Error())
	}
}
