package qdrant

import (
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// CollectionVacancies holds the seeded job-vacancy records.
const CollectionVacancies = "job_vacancies"

// Payload field names inside the vacancy collection.
const (
	fieldVacancyID     = "vacancy_id"
	fieldTitle         = "title"
	fieldJobDesc       = "job_description"
	fieldScoringRubric = "scoring_rubric"
)

// VacancyIndex implements domain.VacancyFinder on top of the Qdrant client.
type VacancyIndex struct {
	client *Client
}

// NewVacancyIndex constructs a VacancyIndex with the given client.
func NewVacancyIndex(c *Client) *VacancyIndex { return &VacancyIndex{client: c} }

// FindVacancy runs a similarity search restricted to records whose vacancy_id
// matches exactly, limit 1. Similarity is derived as 1 - distance from the
// backend-reported score. ErrVacancyNotFound when no record matches.
func (v *VacancyIndex) FindVacancy(ctx domain.Context, vacancyID string, vector []float32) (domain.VacancyMatch, error) {
	tracer := otel.Tracer("vector.vacancies")
	ctx, span := tracer.Start(ctx, "vacancies.FindVacancy")
	defer span.End()

	hits, err := v.client.SearchFiltered(ctx, CollectionVacancies, vector, fieldVacancyID, vacancyID, 1)
	if err != nil {
		return domain.VacancyMatch{}, fmt.Errorf("op=vacancy.search: %w", err)
	}
	if len(hits) == 0 {
		return domain.VacancyMatch{}, fmt.Errorf("op=vacancy.search: vacancy %s: %w", vacancyID, domain.ErrVacancyNotFound)
	}
	hit := hits[0]
	return domain.VacancyMatch{
		Vacancy: domain.Vacancy{
			ID:          vacancyID,
			Title:       payloadString(hit.Payload, fieldTitle),
			Description: payloadString(hit.Payload, fieldJobDesc),
			Rubric:      payloadString(hit.Payload, fieldScoringRubric),
		},
		Similarity: 1 - hit.Score,
	}, nil
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}
