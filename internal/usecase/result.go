package usecase

import (
	"errors"
	"time"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// ResultService provides read access to a job's status and result.
type ResultService struct {
	Jobs    domain.JobRepository
	Results domain.ResultRepository
}

// NewResultService constructs a ResultService with the given repositories.
func NewResultService(j domain.JobRepository, r domain.ResultRepository) ResultService {
	return ResultService{Jobs: j, Results: r}
}

// JobView is the response shape for a job status read. Result is present
// only for a completed job; Error only for a failed one.
type JobView struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Result    *ResultView `json:"result,omitempty"`
}

// ResultView mirrors the persisted result fields.
type ResultView struct {
	CVMatchRate     float64   `json:"cvMatchRate"`
	CVFeedback      string    `json:"cvFeedback"`
	ProjectScore    float64   `json:"projectScore"`
	ProjectFeedback string    `json:"projectFeedback"`
	OverallSummary  string    `json:"overallSummary"`
	ProcessedAt     time.Time `json:"processedAt"`
}

// Fetch loads the job and, when completed, its result.
func (s ResultService) Fetch(ctx domain.Context, jobID string) (JobView, error) {
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return JobView{}, err
	}
	view := JobView{
		ID:        job.ID,
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Status == domain.JobFailed {
		view.Error = job.Error
	}
	if job.Status != domain.JobCompleted {
		return view, nil
	}
	res, err := s.Results.GetByJobID(ctx, jobID)
	if err != nil {
		// A completed job without a result is an internal inconsistency.
		if errors.Is(err, domain.ErrNotFound) {
			return JobView{}, domain.ErrInternal
		}
		return JobView{}, err
	}
	view.Result = &ResultView{
		CVMatchRate:     res.CVMatchRate,
		CVFeedback:      res.CVFeedback,
		ProjectScore:    res.ProjectScore,
		ProjectFeedback: res.ProjectFeedback,
		OverallSummary:  res.OverallSummary,
		ProcessedAt:     res.ProcessedAt,
	}
	return view, nil
}
