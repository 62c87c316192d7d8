package providers

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ProviderType distinguishes on-host backends from remote APIs.
type ProviderType string

const (
	// TypeLocal marks a provider running on the caller's machine (no per-token cost)
	TypeLocal ProviderType = "local"

	// TypeCloud marks a remote, metered provider
	TypeCloud ProviderType = "cloud"
)

// Capabilities declares what a provider can do beyond plain chat
type Capabilities struct {
	// Vision indicates the provider can analyze images
	Vision bool

	// Code indicates the provider is tuned for code tasks
	Code bool
}

// Provider represents a unified backend compute provider interface.
// Implementations own their transport; the router never inspects it.
type Provider interface {
	// Name returns the unique provider name (e.g., "ollama", "openai")
	Name() string

	// Type returns whether the provider is local or cloud
	Type() ProviderType

	// Capabilities returns the provider's declared capability flags
	Capabilities() Capabilities

	// Initialize prepares the provider for use (auth, warmup, ...)
	Initialize(ctx context.Context) error

	// ListModels returns the models the provider currently exposes
	ListModels(ctx context.Context) ([]ModelDescriptor, error)

	// ValidateConnection probes whether the provider is reachable right now
	ValidateConnection(ctx context.Context) bool

	// Chat performs a chat completion request
	Chat(ctx context.Context, messages []Message, opts Options) (*ChatResponse, error)
}

// VisionProvider extends Provider with image analysis
type VisionProvider interface {
	Provider

	// AnalyzeImage analyzes an image guided by a text instruction
	AnalyzeImage(ctx context.Context, image []byte, instruction string, opts Options) (*ChatResponse, error)
}

// CostEstimator is implemented by providers that can price a completion
type CostEstimator interface {
	// EstimateCost returns the estimated cost in USD for a completion
	// of the given token count
	EstimateCost(tokens int) float64
}

// ModelDescriptor contains metadata about a single model
type ModelDescriptor struct {
	// ID is the model identifier (e.g., "gpt-4o", "llama3:70b")
	ID string `json:"id"`

	// ContextLength is the maximum input token capacity
	ContextLength int `json:"context_length"`

	// Tags are free-form capability labels (e.g., "multilingual", "vision")
	Tags []string `json:"tags,omitempty"`
}

// HasTag reports whether the descriptor carries the given capability tag
func (d ModelDescriptor) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Message represents a single message in a conversation.
// Content holds plain text; Parts holds a structured multi-part body.
// Exactly one of the two is normally set.
type Message struct {
	// Role can be "system", "user", or "assistant"
	Role string `json:"role"`

	// Content is the plain text body
	Content string `json:"content,omitempty"`

	// Parts is the structured multi-part body
	Parts []ContentPart `json:"parts,omitempty"`
}

// ContentPart is one element of a multi-part message body
type ContentPart struct {
	// Type is "text" or "image"
	Type string `json:"type"`

	// Text is set when Type is "text"
	Text string `json:"text,omitempty"`

	// ImageURL references an image when Type is "image"
	ImageURL string `json:"image_url,omitempty"`
}

// Text extracts the textual content of the message. Plain content wins;
// otherwise text parts are joined in order. Returns "" for image-only bodies.
func (m Message) Text() string {
	if m.Content != "" {
		return m.Content
	}
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == "text" && p.Text != "" {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Options is an opaque bag of sampling parameters forwarded verbatim
// to the chosen provider
type Options map[string]interface{}

// Clone returns a shallow copy so callers can add keys without
// mutating the original request
func (o Options) Clone() Options {
	out := make(Options, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	return out
}

// ChatResponse represents a unified completion response
type ChatResponse struct {
	// Provider that served the request
	Provider string `json:"provider"`

	// Model used for the completion
	Model string `json:"model"`

	// Content is the assistant's reply
	Content string `json:"content"`

	// Usage statistics, when the provider reports them
	Usage Usage `json:"usage"`

	// Latency of the provider call
	Latency time.Duration `json:"latency"`

	// Created timestamp
	Created time.Time `json:"created"`
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderError represents an error from a provider call
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Message is the error message
	Message string

	// Retryable indicates if the request can be retried
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, message string, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// IsRetryable checks if an error is or wraps a retryable provider error
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}
