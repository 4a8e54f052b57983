package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/match-api/internal/models"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
)

func queueColumns() []string {
	return []string{"id", "student_id", "listing_id", "status", "version", "attempts", "last_error", "enqueued_at", "next_attempt_at", "processed_at"}
}

func TestQueueRepositoryEnqueueDeduplicates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQueueRepository(db)

	entry := &models.RecomputationEntry{StudentID: "student-1", ListingID: "listing-1", Version: 2}

	mock.ExpectExec("INSERT INTO recomputation_queue").
		WillReturnResult(sqlmock.NewResult(0, 1))
	inserted, err := repo.Enqueue(context.Background(), entry)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.QueueStatusPending, entry.Status)

	// Same pair while still pending: ON CONFLICT DO NOTHING.
	mock.ExpectExec("INSERT INTO recomputation_queue").
		WillReturnResult(sqlmock.NewResult(0, 0))
	inserted, err = repo.Enqueue(context.Background(), &models.RecomputationEntry{StudentID: "student-1", ListingID: "listing-1", Version: 2})
	require.NoError(t, err)
	assert.False(t, inserted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepositoryClaimBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQueueRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(queueColumns()).
		AddRow("entry-1", "student-1", "listing-1", "PROCESSING", 2, 1, nil, now.Add(-time.Minute), now, nil).
		AddRow("entry-2", "student-2", "listing-1", "PROCESSING", 2, 1, nil, now.Add(-30*time.Second), now, nil)
	mock.ExpectQuery("UPDATE recomputation_queue SET status = 'PROCESSING'").
		WithArgs(10, now).
		WillReturnRows(rows)

	entries, err := repo.ClaimBatch(context.Background(), 10, now)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "entry-1", entries[0].ID)
	assert.Equal(t, models.QueueStatusProcessing, entries[0].Status)
	assert.Equal(t, 1, entries[0].Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepositoryLifecycleUpdates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQueueRepository(db)

	now := time.Now().UTC()

	mock.ExpectExec("UPDATE recomputation_queue SET status = 'PROCESSED'").
		WithArgs("entry-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkProcessed(context.Background(), "entry-1", now))

	mock.ExpectExec("UPDATE recomputation_queue SET status = 'PENDING'").
		WithArgs("entry-2", now.Add(time.Minute), "listing fetch failed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Release(context.Background(), "entry-2", now.Add(time.Minute), "listing fetch failed"))

	mock.ExpectExec("UPDATE recomputation_queue SET status = 'DEAD_LETTER'").
		WithArgs("entry-3", "exhausted retries").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeadLetter(context.Background(), "entry-3", "exhausted retries"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepositoryLostClaimIsConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQueueRepository(db)

	// The entry is no longer PROCESSING under this worker: zero rows update.
	mock.ExpectExec("UPDATE recomputation_queue SET status = 'PROCESSED'").
		WithArgs("entry-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkProcessed(context.Background(), "entry-1", time.Now().UTC())
	assert.ErrorIs(t, err, appErrors.ErrQueueClaimConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepositoryStats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQueueRepository(db)

	rows := sqlmock.NewRows([]string{"pending", "processing", "processed", "dead_letter"}).
		AddRow(12, 2, 340, 1)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Pending)
	assert.Equal(t, int64(1), stats.DeadLetter)
	assert.NoError(t, mock.ExpectationsWereMet())
}
