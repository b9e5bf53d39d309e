package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// maxPromptChars bounds how much raw document text enters a prompt. The
// policy is take-the-prefix, not smart-summarize.
const maxPromptChars = 8000

func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}

// GenerateStructured requests strict JSON output and parses it into T.
// ErrMalformedResponse when the content does not parse; against the mock
// gateway this cannot happen since the fixture is always well-formed.
func GenerateStructured[T any](ctx domain.Context, client domain.AIClient, systemPrompt, userPrompt string, temperature float64) (T, error) {
	var out T
	content, _, err := client.ChatJSON(ctx, systemPrompt, userPrompt, temperature)
	if err != nil {
		return out, fmt.Errorf("op=pipeline.generate: %w", err)
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return out, fmt.Errorf("op=pipeline.generate: %v: %w", err, domain.ErrMalformedResponse)
	}
	return out, nil
}
