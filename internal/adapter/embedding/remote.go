package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/evaluasi/cv-evaluator/internal/config"
	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/observability"
)

// Remote embeds text through an OpenAI-compatible embeddings endpoint and
// falls back to the deterministic Local embedder when the backend is
// unreachable or returns an error. Backend unavailability is therefore
// invisible to the job lifecycle.
type Remote struct {
	cfg      config.Config
	hc       *http.Client
	fallback *Local
}

// NewRemote constructs a Remote embedder with the Local fallback attached.
func NewRemote(cfg config.Config) *Remote {
	return &Remote{
		cfg:      cfg,
		hc:       &http.Client{Timeout: cfg.EmbedTimeout},
		fallback: NewLocal(),
	}
}

// NewGenerator selects the embedding implementation at construction time:
// remote-backed when an API key is configured, pure local otherwise.
func NewGenerator(cfg config.Config) domain.EmbeddingProvider {
	if cfg.OpenAIAPIKey == "" {
		slog.Info("embeddings: no backend configured, using local hashing embedder")
		return NewLocal()
	}
	return NewRemote(cfg)
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed calls the remote backend; any failure degrades to the local embedder.
func (r *Remote) Embed(ctx domain.Context, text string) ([]float32, error) {
	vec, err := r.embedRemote(ctx, text)
	if err != nil {
		slog.Warn("remote embedding failed, using local fallback", slog.Any("error", err))
		return r.fallback.Embed(ctx, text)
	}
	return vec, nil
}

func (r *Remote) embedRemote(ctx domain.Context, text string) ([]float32, error) {
	start := time.Now()
	body, err := json.Marshal(embedRequest{Model: r.cfg.EmbeddingsModel, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("op=embed.marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.OpenAIBaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("op=embed.request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.OpenAIAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("op=embed.call: %w: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("op=embed.call: %w: status %d", domain.ErrBackendUnavailable, resp.StatusCode)
	}
	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("op=embed.decode: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("op=embed.decode: empty data")
	}
	observability.AIRequestsTotal.WithLabelValues("openai", "embed").Inc()
	observability.AIRequestDuration.WithLabelValues("openai", "embed").Observe(time.Since(start).Seconds())
	return out.Data[0].Embedding, nil
}
