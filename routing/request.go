package routing

import (
	"github.com/polyglot-hub/llm-router/providers"
)

// TaskCategory is a coarse classification of a request's intent,
// used to bias provider scoring.
type TaskCategory string

const (
	// TaskUnspecified means the caller gave no hint; the classifier decides
	TaskUnspecified TaskCategory = ""

	TaskGeneralChat     TaskCategory = "general_chat"
	TaskCodeGeneration  TaskCategory = "code_generation"
	TaskCodeReview      TaskCategory = "code_review"
	TaskTranslation     TaskCategory = "translation"
	TaskSummarization   TaskCategory = "summarization"
	TaskCreativeWriting TaskCategory = "creative_writing"
	TaskVisionAnalysis  TaskCategory = "vision_analysis"
)

// Request is a unit of work to be routed to a backend provider
type Request struct {
	// Messages is the ordered conversation history
	Messages []providers.Message

	// TaskCategory is an optional explicit category; when unspecified the
	// router classifies the last message
	TaskCategory TaskCategory

	// Image is an optional raw image payload; its presence switches the
	// request onto the vision path
	Image []byte

	// PreferredProvider pins the request to a named provider, bypassing
	// scoring and fallback entirely
	PreferredProvider string

	// PreferLocal biases the default category toward local providers
	PreferLocal bool

	// Options are sampling parameters forwarded verbatim to the provider
	Options providers.Options
}

// LastMessage returns the most recent message, or a zero Message when the
// conversation is empty.
func (r Request) LastMessage() providers.Message {
	if len(r.Messages) == 0 {
		return providers.Message{}
	}
	return r.Messages[len(r.Messages)-1]
}

// TextLength returns the total character count of all text content in the
// request, used for the token footprint estimate.
func (r Request) TextLength() int {
	total := 0
	for _, m := range r.Messages {
		total += len(m.Text())
	}
	return total
}

// Result is the outcome of one routing decision
type Result struct {
	// Response is the provider's reply
	Response *providers.ChatResponse `json:"response"`

	// Provider that ultimately served the request
	Provider string `json:"provider"`

	// TaskCategory the request was classified as (scored path only)
	TaskCategory TaskCategory `json:"task_category,omitempty"`

	// Score and Reasons echo the winning ScoreResult (scored path only)
	Score   float64  `json:"score,omitempty"`
	Reasons []string `json:"reasons,omitempty"`

	// FallbackDepth counts how many fallback hops were taken; 0 means the
	// primary selection served the request
	FallbackDepth int `json:"fallback_depth"`
}

// ScoreResult carries a provider's suitability score together with the
// human-readable reasons behind every adjustment, in the order applied.
// The reasons exist for observability and debugging of routing decisions,
// not just for ranking.
type ScoreResult struct {
	Provider string   `json:"provider"`
	Score    float64  `json:"score"`
	Reasons  []string `json:"reasons"`
}
