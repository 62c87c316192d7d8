package routing

import (
	"strings"

	"github.com/polyglot-hub/llm-router/providers"
)

// categoryKeywords is ordered: the first category whose keywords match wins.
var categoryKeywords = []struct {
	category TaskCategory
	keywords []string
}{
	{TaskCodeGeneration, []string{"code", "function", "implement", "debug", "fix"}},
	{TaskCodeReview, []string{"review", "check", "analyze"}},
	{TaskTranslation, []string{"translate", "translation"}},
	{TaskSummarization, []string{"summarize", "summary"}},
	{TaskCreativeWriting, []string{"write", "story", "creative"}},
}

// ClassifyTask infers a task category from the text of the last message.
// It is a pure function: keyword heuristics only, no side effects. A last
// message without any text content (image-only multipart body) classifies
// as general chat immediately.
func ClassifyTask(last providers.Message) TaskCategory {
	text := last.Text()
	if text == "" {
		return TaskGeneralChat
	}
	text = strings.ToLower(text)

	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.category
			}
		}
	}
	return TaskGeneralChat
}
