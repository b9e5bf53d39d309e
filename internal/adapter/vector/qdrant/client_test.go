package qdrant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evaluasi/cv-evaluator/internal/adapter/vector/qdrant"
	"github.com/evaluasi/cv-evaluator/internal/domain"
)

func TestVacancyIndex_FindVacancy(t *testing.T) {
	t.Parallel()
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/job_vacancies/points/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{{
				"score": 0.1,
				"payload": map[string]any{
					"title":          "Backend Engineer",
					"job_description": "Build evaluation services",
					"scoring_rubric": "Correctness matters most",
				},
			}},
		})
	}))
	defer srv.Close()

	idx := qdrant.NewVacancyIndex(qdrant.New(srv.URL, ""))
	match, err := idx.FindVacancy(context.Background(), "vac-1", []float32{0.5, 0.5})
	require.NoError(t, err)

	// similarity = 1 - distance
	assert.InDelta(t, 0.9, match.Similarity, 1e-9)
	assert.Equal(t, "Backend Engineer", match.Vacancy.Title)
	assert.Equal(t, "Correctness matters most", match.Vacancy.Rubric)

	// Search is restricted to the vacancy identifier with limit 1.
	assert.EqualValues(t, 1, gotBody["limit"])
	filter := gotBody["filter"].(map[string]any)
	must := filter["must"].([]any)
	require.Len(t, must, 1)
	cond := must[0].(map[string]any)
	assert.Equal(t, "vacancy_id", cond["key"])
	assert.Equal(t, "vac-1", cond["match"].(map[string]any)["value"])
}

func TestVacancyIndex_NotFound(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	defer srv.Close()

	idx := qdrant.NewVacancyIndex(qdrant.New(srv.URL, ""))
	_, err := idx.FindVacancy(context.Background(), "missing", []float32{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVacancyNotFound)
}

func TestEnsureCollection_DimensionMismatch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"config": map[string]any{
						"params": map[string]any{
							"vectors": map[string]any{"size": 1536},
						},
					},
				},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := qdrant.New(srv.URL, "")
	err := c.EnsureCollection(context.Background(), "job_vacancies", 384, "Cosine")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}
