package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evaluasi/cv-evaluator/internal/adapter/repo/postgres"
	"github.com/evaluasi/cv-evaluator/internal/domain"
)

func TestJobRepo_Create_GeneratesID(t *testing.T) {
	t.Parallel()
	pool := &poolStub{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := postgres.NewJobRepo(pool)
	id, err := repo.Create(context.Background(), domain.Job{
		VacancyID:    "vac-1",
		CVDocumentID: "doc-cv",
		ProjectDocID: "doc-pr",
		Status:       domain.JobQueued,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestJobRepo_Create_KeepsProvidedID(t *testing.T) {
	t.Parallel()
	pool := &poolStub{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := postgres.NewJobRepo(pool)
	id, err := repo.Create(context.Background(), domain.Job{ID: "job-7", Status: domain.JobQueued})
	require.NoError(t, err)
	assert.Equal(t, "job-7", id)
}

func TestJobRepo_Get_NotFound(t *testing.T) {
	t.Parallel()
	pool := &poolStub{row: rowStub{scan: func(_ ...any) error { return pgx.ErrNoRows }}}
	repo := postgres.NewJobRepo(pool)
	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRepo_Transition_NotFound(t *testing.T) {
	t.Parallel()
	pool := &poolStub{execTag: pgconn.NewCommandTag("UPDATE 0")}
	repo := postgres.NewJobRepo(pool)
	err := repo.Transition(context.Background(), "missing", domain.JobProcessing, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRepo_Transition_WritesStatusAndError(t *testing.T) {
	t.Parallel()
	pool := &poolStub{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := postgres.NewJobRepo(pool)
	msg := "vacancy not found"
	require.NoError(t, repo.Transition(context.Background(), "job-1", domain.JobFailed, &msg))
	require.Len(t, pool.gotArgs, 4)
	assert.Equal(t, "job-1", pool.gotArgs[0])
	assert.Equal(t, domain.JobFailed, pool.gotArgs[1])
	assert.Equal(t, "vacancy not found", pool.gotArgs[2])
}

func TestJobRepo_Transition_NilErrorBecomesEmpty(t *testing.T) {
	t.Parallel()
	pool := &poolStub{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := postgres.NewJobRepo(pool)
	require.NoError(t, repo.Transition(context.Background(), "job-1", domain.JobProcessing, nil))
	assert.Equal(t, "", pool.gotArgs[2])
}

func TestJobRepo_Snapshot_WithResult(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	pool := &poolStub{row: rowStub{scan: func(dest ...any) error {
		*(dest[0].(*string)) = "job-1"
		*(dest[1].(*string)) = "Rahmat"
		*(dest[2].(*string)) = "vac-1"
		*(dest[3].(*string)) = "doc-cv"
		*(dest[4].(*string)) = "doc-pr"
		*(dest[5].(*domain.JobStatus)) = domain.JobCompleted
		*(dest[6].(*string)) = ""
		*(dest[7].(*time.Time)) = now
		*(dest[8].(*time.Time)) = now
		*(dest[9].(*string)) = "cv text"
		*(dest[10].(*string)) = "project text"
		rate := 0.82
		*(dest[11].(**float64)) = &rate
		fb := "good cv"
		*(dest[12].(**string)) = &fb
		score := 7.2
		*(dest[13].(**float64)) = &score
		pfb := "good project"
		*(dest[14].(**string)) = &pfb
		sum := "hire"
		*(dest[15].(**string)) = &sum
		*(dest[16].(**time.Time)) = &now
		return nil
	}}}
	repo := postgres.NewJobRepo(pool)
	snap, err := repo.Snapshot(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "cv text", snap.CVText)
	assert.Equal(t, "project text", snap.ProjectText)
	require.NotNil(t, snap.Result)
	assert.InDelta(t, 0.82, snap.Result.CVMatchRate, 1e-9)
	assert.InDelta(t, 7.2, snap.Result.ProjectScore, 1e-9)
	assert.Equal(t, "hire", snap.Result.OverallSummary)
}

func TestJobRepo_Snapshot_WithoutResult(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	pool := &poolStub{row: rowStub{scan: func(dest ...any) error {
		*(dest[0].(*string)) = "job-1"
		*(dest[5].(*domain.JobStatus)) = domain.JobQueued
		*(dest[7].(*time.Time)) = now
		*(dest[8].(*time.Time)) = now
		*(dest[9].(*string)) = "cv text"
		*(dest[10].(*string)) = "project text"
		return nil
	}}}
	repo := postgres.NewJobRepo(pool)
	snap, err := repo.Snapshot(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Nil(t, snap.Result)
}

func TestJobRepo_Create_Error(t *testing.T) {
	t.Parallel()
	pool := &poolStub{execErr: errors.New("connection refused")}
	repo := postgres.NewJobRepo(pool)
	_, err := repo.Create(context.Background(), domain.Job{Status: domain.JobQueued})
	require.Error(t, err)
}
