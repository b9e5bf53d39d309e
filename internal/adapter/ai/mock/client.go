// Package mock implements domain.AIClient deterministically for offline mode.
package mock

import (
	"github.com/evaluasi/cv-evaluator/internal/adapter/ai"
	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// Client returns the fixed fixture payload for every prompt. It is the
// gateway selected when no language-model backend is configured.
type Client struct{}

// New constructs a deterministic mock AI client.
func New() *Client { return &Client{} }

// ChatJSON ignores the prompts and returns the fixture payload. Token usage
// is estimated from prompt length only so dashboards stay populated.
func (c *Client) ChatJSON(_ domain.Context, systemPrompt, userPrompt string, _ float64) (string, domain.TokenUsage, error) {
	content := ai.FixtureJSON()
	usage := domain.TokenUsage{
		PromptTokens:     (len(systemPrompt) + len(userPrompt)) / 4,
		CompletionTokens: len(content) / 4,
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return content, usage, nil
}
