// Package seed loads job-vacancy reference data from YAML files and upserts
// it into the vector collection. Vacancies are immutable reference data; the
// pipeline only ever reads them back as search payloads.
package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	qdrantcli "github.com/evaluasi/cv-evaluator/internal/adapter/vector/qdrant"
	"github.com/evaluasi/cv-evaluator/internal/domain"
)

type vacancyYAML struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	JobDescription string `yaml:"job_description"`
	ScoringRubric  string `yaml:"scoring_rubric"`
}

func (v vacancyYAML) validate(path string) error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("%w: %s: id required", domain.ErrInvalidArgument, path)
	}
	if strings.TrimSpace(v.JobDescription) == "" {
		return fmt.Errorf("%w: %s: job_description required", domain.ErrInvalidArgument, path)
	}
	return nil
}

// LoadDir parses every .yaml/.yml file in dir into vacancies, sorted by id.
func LoadDir(dir string) ([]domain.Vacancy, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("op=seed.load: %w", err)
	}
	var out []domain.Vacancy
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("op=seed.load: %w", err)
		}
		var v vacancyYAML
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("op=seed.load: %s: %w", path, err)
		}
		if err := v.validate(path); err != nil {
			return nil, err
		}
		out = append(out, domain.Vacancy{
			ID:          strings.TrimSpace(v.ID),
			Title:       strings.TrimSpace(v.Title),
			Description: strings.TrimSpace(v.JobDescription),
			Rubric:      strings.TrimSpace(v.ScoringRubric),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no vacancy files in %s", domain.ErrInvalidArgument, dir)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// EmbedText is the text a vacancy is indexed under: description plus rubric,
// so both document legs retrieve against the same record.
func EmbedText(v domain.Vacancy) string {
	return strings.TrimSpace(v.Title + "\n" + v.Description + "\n" + v.Rubric)
}

// Seed embeds every vacancy and upserts it into the vacancy collection.
// Point ids are derived deterministically from the vacancy id so reseeding
// overwrites instead of duplicating.
func Seed(ctx domain.Context, q *qdrantcli.Client, embedder domain.EmbeddingProvider, vacancies []domain.Vacancy) error {
	vectors := make([][]float32, 0, len(vacancies))
	payloads := make([]map[string]any, 0, len(vacancies))
	ids := make([]any, 0, len(vacancies))
	for _, v := range vacancies {
		vec, err := embedder.Embed(ctx, EmbedText(v))
		if err != nil {
			return fmt.Errorf("op=seed.embed: vacancy %s: %w", v.ID, err)
		}
		vectors = append(vectors, vec)
		payloads = append(payloads, map[string]any{
			"vacancy_id":      v.ID,
			"title":           v.Title,
			"job_description": v.Description,
			"scoring_rubric":  v.Rubric,
		})
		ids = append(ids, uuid.NewSHA1(uuid.NameSpaceOID, []byte(v.ID)).String())
	}
	if err := q.UpsertPoints(ctx, qdrantcli.CollectionVacancies, vectors, payloads, ids); err != nil {
		return fmt.Errorf("op=seed.upsert: %w", err)
	}
	return nil
}

// SeedDir loads dir and seeds every vacancy found there.
func SeedDir(ctx domain.Context, q *qdrantcli.Client, embedder domain.EmbeddingProvider, dir string) (int, error) {
	vacancies, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}
	if err := Seed(ctx, q, embedder, vacancies); err != nil {
		return 0, err
	}
	return len(vacancies), nil
}
