package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evaluasi/cv-evaluator/internal/adapter/repo/postgres"
	"github.com/evaluasi/cv-evaluator/internal/domain"
)

func TestResultRepo_Create(t *testing.T) {
	t.Parallel()
	pool := &poolStub{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := postgres.NewResultRepo(pool)
	err := repo.Create(context.Background(), domain.Result{
		JobID:        "job-1",
		CVMatchRate:  0.82,
		ProjectScore: 7.2,
	})
	require.NoError(t, err)
	require.Len(t, pool.gotArgs, 7)
	assert.Equal(t, "job-1", pool.gotArgs[0])
	// a zero ProcessedAt is filled in at write time
	assert.False(t, pool.gotArgs[6].(time.Time).IsZero())
}

func TestResultRepo_Create_Duplicate(t *testing.T) {
	t.Parallel()
	pool := &poolStub{execErr: &pgconn.PgError{Code: "23505"}}
	repo := postgres.NewResultRepo(pool)
	err := repo.Create(context.Background(), domain.Result{JobID: "job-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateResult)
}

func TestResultRepo_GetByJobID_NotFound(t *testing.T) {
	t.Parallel()
	pool := &poolStub{row: rowStub{scan: func(_ ...any) error { return pgx.ErrNoRows }}}
	repo := postgres.NewResultRepo(pool)
	_, err := repo.GetByJobID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Round-trip through the persistence boundary: the values handed to the
// store come back unchanged through a scan.
func TestResultRepo_RoundTrip(t *testing.T) {
	t.Parallel()
	want := domain.Result{
		JobID:           "job-9",
		CVMatchRate:     0.82,
		CVFeedback:      "Strong backend skills.",
		ProjectScore:    7.2,
		ProjectFeedback: "Solid error handling.",
		OverallSummary:  "Good candidate fit.",
		ProcessedAt:     time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	writer := &poolStub{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := postgres.NewResultRepo(writer)
	require.NoError(t, repo.Create(context.Background(), want))

	stored := writer.gotArgs
	reader := &poolStub{row: rowStub{scan: func(dest ...any) error {
		*(dest[0].(*string)) = stored[0].(string)
		*(dest[1].(*float64)) = stored[1].(float64)
		*(dest[2].(*string)) = stored[2].(string)
		*(dest[3].(*float64)) = stored[3].(float64)
		*(dest[4].(*string)) = stored[4].(string)
		*(dest[5].(*string)) = stored[5].(string)
		*(dest[6].(*time.Time)) = stored[6].(time.Time)
		return nil
	}}}
	got, err := postgres.NewResultRepo(reader).GetByJobID(context.Background(), "job-9")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
