package providers

import (
	"context"
	"time"
)

// Loopback is an in-process provider that echoes the last user message.
// It exists so the gateway binary can be smoke-tested without any real
// backend configured; it is not a production provider.
type Loopback struct {
	name string
}

// NewLoopback creates a loopback provider with the given name
func NewLoopback(name string) *Loopback {
	return &Loopback{name: name}
}

func (l *Loopback) Name() string { return l.name }

func (l *Loopback) Type() ProviderType { return TypeLocal }

func (l *Loopback) Capabilities() Capabilities { return Capabilities{} }

func (l *Loopback) Initialize(ctx context.Context) error { return nil }

func (l *Loopback) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	return []ModelDescriptor{
		{ID: "loopback", ContextLength: 8192},
	}, nil
}

func (l *Loopback) ValidateConnection(ctx context.Context) bool { return true }

func (l *Loopback) Chat(ctx context.Context, messages []Message, opts Options) (*ChatResponse, error) {
	content := ""
	if len(messages) > 0 {
		content = messages[len(messages)-1].Text()
	}
	return &ChatResponse{
		Provider: l.name,
		Model:    "loopback",
		Content:  content,
		Created:  time.Now(),
	}, nil
}
