package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// ResultRepo persists and loads evaluation results. A result is written
// exactly once per job; the unique constraint on job_id enforces that at the
// store level.
type ResultRepo struct{ Pool PgxPool }

// NewResultRepo constructs a ResultRepo with the given pool.
func NewResultRepo(p PgxPool) *ResultRepo { return &ResultRepo{Pool: p} }

// Create inserts the result for a job. ErrDuplicateResult when a result
// already exists for the job.
func (r *ResultRepo) Create(ctx domain.Context, res domain.Result) error {
	tracer := otel.Tracer("repo.results")
	ctx, span := tracer.Start(ctx, "results.Create")
	defer span.End()
	processedAt := res.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}
	q := `INSERT INTO results (job_id, cv_match_rate, cv_feedback, project_score, project_feedback, overall_summary, processed_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.Pool.Exec(ctx, q, res.JobID, res.CVMatchRate, res.CVFeedback, res.ProjectScore, res.ProjectFeedback, res.OverallSummary, processedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("op=result.create: job %s: %w", res.JobID, domain.ErrDuplicateResult)
		}
		return fmt.Errorf("op=result.create: %w", err)
	}
	return nil
}

// GetByJobID loads a result by its job_id.
func (r *ResultRepo) GetByJobID(ctx domain.Context, jobID string) (domain.Result, error) {
	tracer := otel.Tracer("repo.results")
	ctx, span := tracer.Start(ctx, "results.GetByJobID")
	defer span.End()
	q := `SELECT job_id, cv_match_rate, cv_feedback, project_score, project_feedback, overall_summary, processed_at FROM results WHERE job_id=$1`
	row := r.Pool.QueryRow(ctx, q, jobID)
	var res domain.Result
	if err := row.Scan(&res.JobID, &res.CVMatchRate, &res.CVFeedback, &res.ProjectScore, &res.ProjectFeedback, &res.OverallSummary, &res.ProcessedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Result{}, fmt.Errorf("op=result.get: %w", domain.ErrNotFound)
		}
		return domain.Result{}, fmt.Errorf("op=result.get: %w", err)
	}
	return res, nil
}
