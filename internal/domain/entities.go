// Package domain defines the entities, ports, and error taxonomy of the
// evaluation pipeline. It has no dependencies on adapters.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrVacancyNotFound    = errors.New("vacancy not found")
	ErrDuplicateResult    = errors.New("duplicate result")
	ErrMalformedResponse  = errors.New("malformed model response")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal error")
)

// DocumentType enumerates stored document kinds.
const (
	DocumentTypeCV      = "cv"
	DocumentTypeProject = "project"
)

// Document is the stored plain text of an uploaded CV or project report.
// Binary extraction happens upstream; the pipeline only ever sees text.
type Document struct {
	ID        string
	Type      string
	Text      string
	Filename  string
	MIME      string
	Size      int64
	CreatedAt time.Time
}

// JobStatus is the lifecycle state of an evaluation job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether no further lifecycle transitions are permitted.
func (s JobStatus) Terminal() bool { return s == JobCompleted || s == JobFailed }

// Job is one evaluation request. Status transitions are monotonic along
// queued -> processing -> {completed, failed}; only the worker that owns the
// active queue attempt mutates a job.
type Job struct {
	ID           string
	Author       string
	VacancyID    string
	CVDocumentID string
	ProjectDocID string
	Status       JobStatus
	Error        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Result holds the final evaluation for a completed job. It exists iff the
// owning job is completed, is created exactly once, and is never mutated.
type Result struct {
	JobID           string
	CVMatchRate     float64 // normalized fraction [0,1], model-reported
	CVFeedback      string
	ProjectScore    float64 // [0,10], model-reported
	ProjectFeedback string
	OverallSummary  string
	ProcessedAt     time.Time
}

// JobSnapshot is a consistent read of a job together with its document texts
// and, when present, its result.
type JobSnapshot struct {
	Job         Job
	CVText      string
	ProjectText string
	Result      *Result
}

// Vacancy is immutable reference data seeded out-of-band into the vector
// collection. The pipeline only ever reads it back as a search payload.
type Vacancy struct {
	ID          string
	Title       string
	Description string
	Rubric      string
}

// VacancyMatch pairs a retrieved vacancy with its similarity score
// (1 - distance reported by the search backend).
type VacancyMatch struct {
	Vacancy    Vacancy
	Similarity float64
}

// QueueEnvelope is the only payload crossing the queue boundary. All other
// job state is re-read from the store by the worker to avoid stale reads.
type QueueEnvelope struct {
	JobID string `json:"job_id"`
}

// TokenUsage reports model token consumption for one generation call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Repositories (ports)

type DocumentRepository interface {
	Create(ctx Context, d Document) (string, error)
	Get(ctx Context, id string) (Document, error)
	GetText(ctx Context, id string) (string, error)
}

type JobRepository interface {
	Create(ctx Context, j Job) (string, error)
	Get(ctx Context, id string) (Job, error)
	// Transition performs the status write; ErrNotFound when the job is absent.
	Transition(ctx Context, id string, status JobStatus, errMsg *string) error
	// Snapshot loads the job, both document texts, and any result in one
	// consistent read.
	Snapshot(ctx Context, id string) (JobSnapshot, error)
}

type ResultRepository interface {
	// Create persists the result exactly once; ErrDuplicateResult when a
	// result already exists for the job.
	Create(ctx Context, r Result) error
	GetByJobID(ctx Context, jobID string) (Result, error)
}

// Queue (port). Enqueue admits one unit of work keyed by job ID; enqueueing a
// key that is already pending or active is a no-op.
type Queue interface {
	Enqueue(ctx Context, jobID string) error
}

// AIClient (port). ChatJSON requests strict JSON-object output from the
// text-generation backend; deterministic in mock mode.
type AIClient interface {
	ChatJSON(ctx Context, systemPrompt, userPrompt string, temperature float64) (string, TokenUsage, error)
}

// EmbeddingProvider (port). Embed converts text to a fixed-length vector;
// deterministic in local-hash mode.
type EmbeddingProvider interface {
	Embed(ctx Context, text string) ([]float32, error)
}

// VacancyFinder (port). FindVacancy runs a similarity search restricted to a
// single vacancy identifier, limit 1; ErrVacancyNotFound when no record
// matches the identifier.
type VacancyFinder interface {
	FindVacancy(ctx Context, vacancyID string, vector []float32) (VacancyMatch, error)
}

// Context is an alias so the domain package stays decoupled from adapters;
// everything passes context.Context through.
type Context = context.Context
