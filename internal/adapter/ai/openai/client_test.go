package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evaluasi/cv-evaluator/internal/adapter/ai/openai"
	"github.com/evaluasi/cv-evaluator/internal/config"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		OpenAIAPIKey:             "test-key",
		OpenAIBaseURL:            baseURL,
		LLMModel:                 "gpt-4",
		LLMTimeout:               2 * time.Second,
		AIBackoffMaxElapsedTime:  200 * time.Millisecond,
		AIBackoffInitialInterval: 10 * time.Millisecond,
		AIBackoffMaxInterval:     50 * time.Millisecond,
		AIBackoffMultiplier:      1.5,
	}
}

func TestChatJSON_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])
		assert.InDelta(t, 0.3, req["temperature"].(float64), 1e-9)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"ok":true}`}},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	out, usage, err := c.ChatJSON(context.Background(), "sys", "user", 0.3)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, 15, usage.TotalTokens)
}

func TestChatJSON_FallsBackToFixtureOnBackendFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	out, _, err := c.ChatJSON(context.Background(), "sys", "user", 0.1)
	require.NoError(t, err)

	var payload struct {
		CVMatchRate  float64 `json:"cvMatchRate"`
		ProjectScore float64 `json:"projectScore"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.InDelta(t, 0.82, payload.CVMatchRate, 1e-9)
	assert.InDelta(t, 7.2, payload.ProjectScore, 1e-9)
}

func TestChatJSON_4xxIsPermanent(t *testing.T) {
	t.Parallel()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	_, _, err := c.ChatJSON(context.Background(), "sys", "user", 0.1)
	require.NoError(t, err) // fixture fallback
	assert.Equal(t, 1, calls, "400 must not be retried")
}
