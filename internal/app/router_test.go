package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/evaluasi/cv-evaluator/internal/adapter/httpserver"
	"github.com/evaluasi/cv-evaluator/internal/app"
	"github.com/evaluasi/cv-evaluator/internal/config"
	"github.com/evaluasi/cv-evaluator/internal/usecase"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{"*"}},
		{"*", []string{"*"}},
		{"https://a.example", []string{"https://a.example"}},
		{"https://a.example, https://b.example", []string{"https://a.example", "https://b.example"}},
		{" , ", []string{"*"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, app.ParseOrigins(c.in), "input %q", c.in)
	}
}

func TestBuildRouter_HealthAndHeaders(t *testing.T) {
	cfg := config.Config{
		CORSAllowOrigins: "*",
		RateLimitPerMin:  30,
		MaxUploadMB:      5,
	}
	ok := func(context.Context) error { return nil }
	srv := httpserver.NewServer(cfg, usecase.UploadService{}, usecase.EvaluateService{}, usecase.ResultService{}, ok, ok, ok)
	h := app.BuildRouter(cfg, srv)

	ts := httptest.NewServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	ready, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	defer func() { _ = ready.Body.Close() }()
	assert.Equal(t, http.StatusOK, ready.StatusCode)
}
