package usecase

import (
	"fmt"
	"time"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// EvaluateService creates evaluation jobs and admits them to the queue.
type EvaluateService struct {
	Jobs  domain.JobRepository
	Docs  domain.DocumentRepository
	Queue domain.Queue
}

// NewEvaluateService constructs an EvaluateService with its dependencies.
func NewEvaluateService(j domain.JobRepository, d domain.DocumentRepository, q domain.Queue) EvaluateService {
	return EvaluateService{Jobs: j, Docs: d, Queue: q}
}

// Submit validates the references, creates a QUEUED job, and enqueues its
// identifier. When the enqueue fails the job is marked FAILED immediately so
// it never dangles in QUEUED with no envelope behind it.
func (s EvaluateService) Submit(ctx domain.Context, author, vacancyID, cvDocID, projectDocID string) (string, error) {
	if vacancyID == "" || cvDocID == "" || projectDocID == "" {
		return "", fmt.Errorf("%w: vacancy and document ids required", domain.ErrInvalidArgument)
	}
	if _, err := s.Docs.Get(ctx, cvDocID); err != nil {
		return "", fmt.Errorf("cv document: %w", err)
	}
	if _, err := s.Docs.Get(ctx, projectDocID); err != nil {
		return "", fmt.Errorf("project document: %w", err)
	}
	now := time.Now().UTC()
	jobID, err := s.Jobs.Create(ctx, domain.Job{
		Author:       author,
		VacancyID:    vacancyID,
		CVDocumentID: cvDocID,
		ProjectDocID: projectDocID,
		Status:       domain.JobQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", err
	}
	if err := s.Queue.Enqueue(ctx, jobID); err != nil {
		msg := "enqueue failed"
		_ = s.Jobs.Transition(ctx, jobID, domain.JobFailed, &msg)
		return "", err
	}
	return jobID, nil
}
