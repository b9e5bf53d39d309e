package app

import (
	"context"
	"fmt"

	"github.com/evaluasi/cv-evaluator/internal/adapter/embedding"
	qdrantcli "github.com/evaluasi/cv-evaluator/internal/adapter/vector/qdrant"
)

// EnsureVacancyCollection creates the vacancy collection if needed and fails
// on a dimensionality mismatch. This runs at startup so a misconfigured
// collection is a boot error, not a query-time surprise.
func EnsureVacancyCollection(ctx context.Context, qcli *qdrantcli.Client) error {
	if qcli == nil {
		return nil
	}
	if err := qcli.EnsureCollection(ctx, qdrantcli.CollectionVacancies, embedding.Dimension, "Cosine"); err != nil {
		return fmt.Errorf("op=app.ensure_vacancies: %w", err)
	}
	return nil
}
