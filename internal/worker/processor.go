// Package worker executes queue deliveries: it owns the job's lifecycle
// transitions around one pipeline run.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/observability"
	"github.com/evaluasi/cv-evaluator/internal/pipeline"
)

// Runner is the pipeline surface the processor drives.
type Runner interface {
	Run(ctx domain.Context, jobID string) (pipeline.FinalEvaluation, error)
}

// Processor handles one queue delivery per call. It is the only writer of
// job status during an attempt; the queue guarantees at most one active
// attempt per key.
type Processor struct {
	jobs    domain.JobRepository
	results domain.ResultRepository
	runner  Runner
}

// NewProcessor wires the processor's collaborators.
func NewProcessor(jobs domain.JobRepository, results domain.ResultRepository, runner Runner) *Processor {
	return &Processor{jobs: jobs, results: results, runner: runner}
}

// Handle runs the pipeline for one envelope. A returned error signals the
// queue to apply its retry policy; the job is marked FAILED first so its
// status is honest between attempts.
func (p *Processor) Handle(ctx context.Context, env domain.QueueEnvelope) error {
	log := slog.With(slog.String("job_id", env.JobID))
	start := time.Now()

	if err := p.jobs.Transition(ctx, env.JobID, domain.JobProcessing, nil); err != nil {
		return fmt.Errorf("op=worker.handle: %w", err)
	}
	observability.StartProcessingJob("evaluate")

	final, err := p.runner.Run(ctx, env.JobID)
	if err != nil {
		p.markFailed(ctx, env.JobID, err, log)
		return err
	}

	res := domain.Result{
		JobID:           env.JobID,
		CVMatchRate:     final.CVMatchRate,
		CVFeedback:      final.CVFeedback,
		ProjectScore:    final.ProjectScore,
		ProjectFeedback: final.ProjectFeedback,
		OverallSummary:  final.OverallSummary,
		ProcessedAt:     time.Now().UTC(),
	}
	if err := p.results.Create(ctx, res); err != nil {
		// A duplicate means a prior attempt persisted the result but died
		// before the COMPLETED transition; finish that transition instead
		// of failing the job.
		if !errors.Is(err, domain.ErrDuplicateResult) {
			p.markFailed(ctx, env.JobID, err, log)
			return err
		}
		log.Warn("result already persisted by a prior attempt")
	}

	if err := p.jobs.Transition(ctx, env.JobID, domain.JobCompleted, nil); err != nil {
		// The result is already persisted; surface the error so the
		// redelivery can finish the transition.
		p.markFailed(ctx, env.JobID, err, log)
		return err
	}
	observability.CompleteJob("evaluate")
	log.Info("evaluation completed",
		slog.Float64("cv_match_rate", final.CVMatchRate),
		slog.Float64("project_score", final.ProjectScore),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (p *Processor) markFailed(ctx context.Context, jobID string, cause error, log *slog.Logger) {
	msg := cause.Error()
	if err := p.jobs.Transition(ctx, jobID, domain.JobFailed, &msg); err != nil {
		log.Error("failed transition did not persist", slog.Any("error", err))
	}
	observability.FailJob("evaluate")
	log.Warn("evaluation attempt failed", slog.Any("error", cause))
}
