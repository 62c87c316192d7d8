package routing

import (
	"testing"

	"github.com/polyglot-hub/llm-router/providers"
	"github.com/stretchr/testify/assert"
)

func TestClassifyTask(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected TaskCategory
	}{
		{"code generation", "implement a binary search in Go", TaskCodeGeneration},
		{"debugging counts as code", "debug this stack trace for me", TaskCodeGeneration},
		{"code review", "please review this pull request", TaskCodeReview},
		{"translation", "translate this paragraph to Spanish", TaskTranslation},
		{"summarization", "give me a summary of the meeting notes", TaskSummarization},
		{"creative writing", "write a short story about the sea", TaskCreativeWriting},
		{"general chat", "what is the weather like today", TaskGeneralChat},
		{"case insensitive", "TRANSLATE THIS SENTENCE", TaskTranslation},
		{"empty text", "", TaskGeneralChat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTask(providers.Message{Role: "user", Content: tt.text})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifyTaskPrecedence(t *testing.T) {
	// "review" and "code" both match; the code-generation category is
	// checked first and wins.
	got := ClassifyTask(providers.Message{Role: "user", Content: "review my code"})
	assert.Equal(t, TaskCodeGeneration, got)
}

func TestClassifyTaskMultipartMessage(t *testing.T) {
	msg := providers.Message{
		Role: "user",
		Parts: []providers.ContentPart{
			{Type: "image", ImageURL: "https://example.com/cat.png"},
			{Type: "text", Text: "translate the sign in this photo"},
		},
	}
	assert.Equal(t, TaskTranslation, ClassifyTask(msg))
}

func TestClassifyTaskImageOnlyMessage(t *testing.T) {
	msg := providers.Message{
		Role: "user",
		Parts: []providers.ContentPart{
			{Type: "image", ImageURL: "https://example.com/cat.png"},
		},
	}
	assert.Equal(t, TaskGeneralChat, ClassifyTask(msg))
}

func TestClassifyTaskIsDeterministic(t *testing.T) {
	msg := providers.Message{Role: "user", Content: "summarize this article"}
	first := ClassifyTask(msg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ClassifyTask(msg))
	}
}
