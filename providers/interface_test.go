package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageText(t *testing.T) {
	tests := []struct {
		name     string
		message  Message
		expected string
	}{
		{
			name:     "plain content",
			message:  Message{Role: "user", Content: "hello"},
			expected: "hello",
		},
		{
			name: "content wins over parts",
			message: Message{
				Role:    "user",
				Content: "plain",
				Parts:   []ContentPart{{Type: "text", Text: "structured"}},
			},
			expected: "plain",
		},
		{
			name: "text parts joined in order",
			message: Message{
				Role: "user",
				Parts: []ContentPart{
					{Type: "text", Text: "first"},
					{Type: "image", ImageURL: "https://example.com/a.png"},
					{Type: "text", Text: "second"},
				},
			},
			expected: "first\nsecond",
		},
		{
			name: "image-only body",
			message: Message{
				Role:  "user",
				Parts: []ContentPart{{Type: "image", ImageURL: "https://example.com/a.png"}},
			},
			expected: "",
		},
		{
			name:     "empty message",
			message:  Message{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.message.Text())
		})
	}
}

func TestOptionsClone(t *testing.T) {
	original := Options{"temperature": 0.5}
	clone := original.Clone()
	clone["response_format"] = "json"

	assert.NotContains(t, original, "response_format")
	assert.Equal(t, 0.5, clone["temperature"])
}

func TestOptionsCloneNil(t *testing.T) {
	var original Options
	clone := original.Clone()

	clone["key"] = "value"
	assert.Equal(t, "value", clone["key"])
}

func TestModelDescriptorHasTag(t *testing.T) {
	d := ModelDescriptor{ID: "m", Tags: []string{"Multilingual", "vision"}}
	assert.True(t, d.HasTag("multilingual"))
	assert.True(t, d.HasTag("VISION"))
	assert.False(t, d.HasTag("code"))
	assert.False(t, ModelDescriptor{}.HasTag("anything"))
}

func TestProviderError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewProviderError("openai", "chat completion failed", true, cause)

	assert.Contains(t, err.Error(), "chat completion failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(err))

	plain := NewProviderError("openai", "bad request", false, nil)
	assert.Equal(t, "bad request", plain.Error())
	assert.False(t, IsRetryable(plain))
	assert.False(t, IsRetryable(errors.New("not a provider error")))

	// Retryability survives wrapping
	assert.True(t, IsRetryable(fmt.Errorf("route: %w", err)))
}

func TestLoopbackEchoesLastMessage(t *testing.T) {
	l := NewLoopback("loopback")
	assert.Equal(t, TypeLocal, l.Type())
	assert.True(t, l.ValidateConnection(context.Background()))

	resp, err := l.Chat(context.Background(), []Message{
		{Role: "user", Content: "first"},
		{Role: "user", Content: "second"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)
	assert.Equal(t, "loopback", resp.Provider)

	models, err := l.ListModels(context.Background())
	require.NoError(t, err)
	assert.Len(t, models, 1)
}
