package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// JobRepo persists and loads evaluation jobs.
type JobRepo struct{ Pool PgxPool }

// NewJobRepo constructs a JobRepo with the given pool.
func NewJobRepo(p PgxPool) *JobRepo { return &JobRepo{Pool: p} }

// Create inserts a new job and returns its id.
func (r *JobRepo) Create(ctx domain.Context, j domain.Job) (string, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Create")
	defer span.End()
	id := j.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	q := `INSERT INTO jobs (id, author, vacancy_id, cv_document_id, project_document_id, status, error, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.Pool.Exec(ctx, q, id, j.Author, j.VacancyID, j.CVDocumentID, j.ProjectDocID, j.Status, j.Error, now, now)
	if err != nil {
		return "", fmt.Errorf("op=job.create: %w", err)
	}
	return id, nil
}

// Get loads a job by id.
func (r *JobRepo) Get(ctx domain.Context, id string) (domain.Job, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Get")
	defer span.End()
	q := `SELECT id, author, vacancy_id, cv_document_id, project_document_id, status, COALESCE(error,''), created_at, updated_at FROM jobs WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var j domain.Job
	if err := row.Scan(&j.ID, &j.Author, &j.VacancyID, &j.CVDocumentID, &j.ProjectDocID, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, fmt.Errorf("op=job.get: %w", domain.ErrNotFound)
		}
		return domain.Job{}, fmt.Errorf("op=job.get: %w", err)
	}
	return j, nil
}

// Transition writes the status and optional error message of a job. The
// write is unconditional; the single-writer guarantee comes from the queue's
// at-most-one-active-attempt-per-key semantics, not from the store.
func (r *JobRepo) Transition(ctx domain.Context, id string, status domain.JobStatus, errMsg *string) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Transition")
	defer span.End()
	errVal := ""
	if errMsg != nil {
		errVal = *errMsg
	}
	q := `UPDATE jobs SET status=$2, error=$3, updated_at=$4 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, status, errVal, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=job.transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job.transition: job %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Snapshot loads the job, both document texts, and any existing result in one
// consistent read.
func (r *JobRepo) Snapshot(ctx domain.Context, id string) (domain.JobSnapshot, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Snapshot")
	defer span.End()
	q := `SELECT j.id, j.author, j.vacancy_id, j.cv_document_id, j.project_document_id, j.status, COALESCE(j.error,''), j.created_at, j.updated_at,
	cv.text, pr.text,
	r.cv_match_rate, r.cv_feedback, r.project_score, r.project_feedback, r.overall_summary, r.processed_at
	FROM jobs j
	JOIN documents cv ON cv.id = j.cv_document_id
	JOIN documents pr ON pr.id = j.project_document_id
	LEFT JOIN results r ON r.job_id = j.id
	WHERE j.id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var snap domain.JobSnapshot
	var (
		cvMatchRate     *float64
		cvFeedback      *string
		projectScore    *float64
		projectFeedback *string
		overallSummary  *string
		processedAt     *time.Time
	)
	err := row.Scan(
		&snap.Job.ID, &snap.Job.Author, &snap.Job.VacancyID, &snap.Job.CVDocumentID, &snap.Job.ProjectDocID,
		&snap.Job.Status, &snap.Job.Error, &snap.Job.CreatedAt, &snap.Job.UpdatedAt,
		&snap.CVText, &snap.ProjectText,
		&cvMatchRate, &cvFeedback, &projectScore, &projectFeedback, &overallSummary, &processedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.JobSnapshot{}, fmt.Errorf("op=job.snapshot: %w", domain.ErrNotFound)
		}
		return domain.JobSnapshot{}, fmt.Errorf("op=job.snapshot: %w", err)
	}
	if cvMatchRate != nil {
		snap.Result = &domain.Result{
			JobID:           snap.Job.ID,
			CVMatchRate:     *cvMatchRate,
			CVFeedback:      deref(cvFeedback),
			ProjectScore:    deref(projectScore),
			ProjectFeedback: deref(projectFeedback),
			OverallSummary:  deref(overallSummary),
		}
		if processedAt != nil {
			snap.Result.ProcessedAt = *processedAt
		}
	}
	return snap, nil
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
