// Package pipeline sequences retrieval, structured extraction, rubric
// scoring, and summary synthesis into one evaluation run per job.
package pipeline

import (
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/observability"
)

// FinalEvaluation carries the four result fields a completed run produces.
type FinalEvaluation struct {
	CVMatchRate     float64
	CVFeedback      string
	ProjectScore    float64
	ProjectFeedback string
	OverallSummary  string
}

// Orchestrator runs the evaluation pipeline. All collaborators are injected
// at construction; it holds no mutable state and is safe for concurrent use
// by multiple workers.
type Orchestrator struct {
	jobs        domain.JobRepository
	ai          domain.AIClient
	embedder    domain.EmbeddingProvider
	vacancies   domain.VacancyFinder
	temperature float64
}

// NewOrchestrator wires the pipeline's collaborators.
func NewOrchestrator(jobs domain.JobRepository, ai domain.AIClient, embedder domain.EmbeddingProvider, vacancies domain.VacancyFinder, temperature float64) *Orchestrator {
	return &Orchestrator{
		jobs:        jobs,
		ai:          ai,
		embedder:    embedder,
		vacancies:   vacancies,
		temperature: temperature,
	}
}

// Run executes the full pipeline for one job: load the snapshot, evaluate
// the CV leg, evaluate the project leg, then synthesize the final summary.
// Within one run the CV extraction always completes before its scoring call
// and both legs complete before the summary call. Errors propagate to the
// caller; the worker owns the FAILED transition.
func (o *Orchestrator) Run(ctx domain.Context, jobID string) (FinalEvaluation, error) {
	tracer := otel.Tracer("pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	snap, err := o.jobs.Snapshot(ctx, jobID)
	if err != nil {
		return FinalEvaluation{}, fmt.Errorf("op=pipeline.run: %w", err)
	}

	cvEval, err := o.evaluateCV(ctx, snap.CVText, snap.Job.VacancyID)
	if err != nil {
		return FinalEvaluation{}, err
	}
	projectEval, err := o.evaluateProject(ctx, snap.ProjectText, snap.Job.VacancyID)
	if err != nil {
		return FinalEvaluation{}, err
	}

	summary, err := o.finalSummary(ctx, cvEval, projectEval)
	if err != nil {
		return FinalEvaluation{}, err
	}

	observability.ObserveEvaluation(cvEval.CVMatchRate, projectEval.ProjectScore)
	observability.ObserveScoreDrift(
		cvEval.CVMatchRate, domain.WeightedCV(cvEval.Scores),
		projectEval.ProjectScore, domain.WeightedProject(projectEval.Scores),
	)

	return FinalEvaluation{
		CVMatchRate:     cvEval.CVMatchRate,
		CVFeedback:      cvEval.CVFeedback,
		ProjectScore:    projectEval.ProjectScore,
		ProjectFeedback: projectEval.ProjectFeedback,
		OverallSummary:  summary,
	}, nil
}

// retrieve embeds the raw document text and looks up the vacancy record plus
// its similarity score.
func (o *Orchestrator) retrieve(ctx domain.Context, text, vacancyID string) (domain.VacancyMatch, error) {
	vector, err := o.embedder.Embed(ctx, text)
	if err != nil {
		return domain.VacancyMatch{}, fmt.Errorf("op=pipeline.embed: %w", err)
	}
	match, err := o.vacancies.FindVacancy(ctx, vacancyID, vector)
	if err != nil {
		return domain.VacancyMatch{}, err
	}
	return match, nil
}
