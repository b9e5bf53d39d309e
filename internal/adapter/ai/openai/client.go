// Package openai implements domain.AIClient against an OpenAI-compatible
// chat-completions endpoint with strict JSON-object output.
package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/evaluasi/cv-evaluator/internal/adapter/ai"
	"github.com/evaluasi/cv-evaluator/internal/config"
	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/observability"
)

// Client calls the chat-completions API. When the backend stays unreachable
// through the whole retry budget it degrades to the fixture payload instead
// of failing the call, so a flaky provider never stalls the pipeline.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a live AI client with the configured call timeout.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.LLMTimeout},
	}
}

func (c *Client) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = c.cfg.AIBackoffMaxElapsedTime
	expo.InitialInterval = c.cfg.AIBackoffInitialInterval
	expo.MaxInterval = c.cfg.AIBackoffMaxInterval
	expo.Multiplier = c.cfg.AIBackoffMultiplier
	return expo
}

// ChatJSON posts the prompt pair with response_format json_object and returns
// the first choice's content plus token usage. Retries transient failures
// with exponential backoff; 4xx other than 429 is permanent.
func (c *Client) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, temperature float64) (string, domain.TokenUsage, error) {
	body := map[string]any{
		"model": c.cfg.LLMModel,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":     temperature,
		"response_format": map[string]string{"type": "json_object"},
	}
	b, _ := json.Marshal(body)

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	op := func() error {
		start := time.Now()
		// Recreate the request each attempt so a consumed body is never reused.
		r, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/chat/completions", bytes.NewReader(b))
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues("openai", "chat").Inc()
		observability.AIRequestDuration.WithLabelValues("openai", "chat").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("ai provider rate limited", slog.String("provider", "openai"), slog.String("op", "chat"), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			snippet := string(bodyBytes)
			if len(snippet) > 512 {
				snippet = snippet[:512]
			}
			slog.Warn("ai provider 4xx", slog.String("provider", "openai"), slog.String("op", "chat"), slog.Int("status", resp.StatusCode), slog.String("body", snippet))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Error("ai provider non-2xx", slog.String("provider", "openai"), slog.String("op", "chat"), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			slog.Error("ai provider decode error", slog.String("provider", "openai"), slog.String("op", "chat"), slog.Any("error", err))
			return err
		}
		return nil
	}
	bo := backoff.WithContext(c.backoffConfig(), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		slog.Warn("chat completions failed after retries, degrading to fixture payload",
			slog.Any("error", err))
		return ai.FixtureJSON(), domain.TokenUsage{}, nil
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		slog.Warn("chat completions returned no content, degrading to fixture payload")
		return ai.FixtureJSON(), domain.TokenUsage{}, nil
	}
	usage := domain.TokenUsage{
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
		TotalTokens:      out.Usage.TotalTokens,
	}
	return out.Choices[0].Message.Content, usage, nil
}
