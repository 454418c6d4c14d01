package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestEnqueueInsertsPendingJob(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	mock.ExpectExec("INSERT INTO enrichment_jobs").
		WithArgs(pgxmock.AnyArg(), int64(42), Payload{CrimeScore: 8.2, UserScore: 8.0, EnvScore: 5.0, OverallScore: 7.5}, StatusPending).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Enqueue(context.Background(), 42, Payload{CrimeScore: 8.2, UserScore: 8.0, EnvScore: 5.0, OverallScore: 7.5})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimFlipsOldestPendingToProcessing(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	jobID := uuid.New()
	created := time.Now().Add(-time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs(StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"id", "property_id", "payload", "status", "created_at"}).
			AddRow(jobID, int64(42), Payload{OverallScore: 7.5}, StatusPending, created))
	mock.ExpectExec("UPDATE enrichment_jobs SET status").
		WithArgs(StatusProcessing, jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	job, err := repo.Claim(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, int64(42), job.PropertyID)
	assert.Equal(t, StatusProcessing, job.Status)
	assert.InDelta(t, 7.5, job.Payload.OverallScore, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimEmptyQueueReturnsNil(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs(StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	job, err := repo.Claim(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkDonePatchesNarrativeThenResolvesJob(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	jobID := uuid.New()
	mock.ExpectExec("UPDATE property_safety_scores SET ai_summary").
		WithArgs("Quiet block, low incident history.", int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE enrichment_jobs SET status").
		WithArgs(StatusDone, jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.MarkDone(context.Background(), jobID, 42, "Quiet block, low incident history.")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailed(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	jobID := uuid.New()
	mock.ExpectExec("UPDATE enrichment_jobs SET status").
		WithArgs(StatusFailed, jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkFailed(context.Background(), jobID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountStuckProcessing(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(StatusProcessing, (30 * time.Minute).String()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountStuckProcessing(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
