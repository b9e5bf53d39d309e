package seed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evaluasi/cv-evaluator/internal/adapter/embedding"
	qdrantcli "github.com/evaluasi/cv-evaluator/internal/adapter/vector/qdrant"
	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/seed"
)

const vacancyDoc = `id: vac-backend
title: Backend Engineer
job_description: Build and operate evaluation services in Go.
scoring_rubric: Weigh correctness highest, then code quality.
`

func writeSeedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backend.yaml"), []byte(vacancyDoc), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	return dir
}

func TestLoadDir(t *testing.T) {
	t.Parallel()
	vacancies, err := seed.LoadDir(writeSeedDir(t))
	require.NoError(t, err)
	require.Len(t, vacancies, 1)
	assert.Equal(t, "vac-backend", vacancies[0].ID)
	assert.Equal(t, "Backend Engineer", vacancies[0].Title)
	assert.Contains(t, vacancies[0].Rubric, "correctness")
}

func TestLoadDir_RejectsMissingID(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("title: x\njob_description: y\n"), 0o600))
	_, err := seed.LoadDir(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestLoadDir_EmptyDir(t *testing.T) {
	t.Parallel()
	_, err := seed.LoadDir(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSeedDir_UpsertsEmbeddedVacancies(t *testing.T) {
	t.Parallel()
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/job_vacancies/points", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := seed.SeedDir(context.Background(), qdrantcli.New(srv.URL, ""), embedding.NewLocal(), writeSeedDir(t))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	points := gotBody["points"].([]any)
	require.Len(t, points, 1)
	pt := points[0].(map[string]any)
	payload := pt["payload"].(map[string]any)
	assert.Equal(t, "vac-backend", payload["vacancy_id"])
	assert.Equal(t, "Backend Engineer", payload["title"])
	assert.NotEmpty(t, payload["scoring_rubric"])
	assert.Len(t, pt["vector"].([]any), embedding.Dimension)
	assert.NotEmpty(t, pt["id"])
}
