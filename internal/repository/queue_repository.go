package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/talentbridge/match-api/internal/models"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
)

// QueueRepository owns the recomputation_queue table. Dedup relies on a
// partial unique index over (student_id, listing_id) WHERE status =
// 'PENDING'; claims rely on FOR UPDATE SKIP LOCKED so concurrent workers
// never double-process a pair.
type QueueRepository struct {
	db *sqlx.DB
}

// NewQueueRepository constructs the repository.
func NewQueueRepository(db *sqlx.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// Enqueue inserts a pending entry for the pair. Returns false when an
// unprocessed entry for the pair already exists (the insert is a no-op).
func (r *QueueRepository) Enqueue(ctx context.Context, entry *models.RecomputationEntry) (bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = models.QueueStatusPending
	}
	now := time.Now().UTC()
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = now
	}
	if entry.NextAttempt.IsZero() {
		entry.NextAttempt = now
	}

	const query = `INSERT INTO recomputation_queue (id, student_id, listing_id, status, version, attempts, last_error, enqueued_at, next_attempt_at, processed_at)
		VALUES (:id, :student_id, :listing_id, :status, :version, :attempts, :last_error, :enqueued_at, :next_attempt_at, :processed_at)
		ON CONFLICT (student_id, listing_id) WHERE status = 'PENDING' DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return false, fmt.Errorf("enqueue recomputation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("enqueue recomputation rows: %w", err)
	}
	return affected > 0, nil
}

// ClaimBatch atomically claims up to limit due entries, oldest first. SKIP
// LOCKED guarantees a pair is claimed by exactly one concurrent worker.
func (r *QueueRepository) ClaimBatch(ctx context.Context, limit int, now time.Time) ([]models.RecomputationEntry, error) {
	const query = `UPDATE recomputation_queue SET status = 'PROCESSING', attempts = attempts + 1
		WHERE id IN (
			SELECT id FROM recomputation_queue
			WHERE status = 'PENDING' AND next_attempt_at <= $2
			ORDER BY enqueued_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, student_id, listing_id, status, version, attempts, last_error, enqueued_at, next_attempt_at, processed_at`
	entries := []models.RecomputationEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, limit, now); err != nil {
		return nil, fmt.Errorf("claim recomputation batch: %w", err)
	}
	return entries, nil
}

// MarkProcessed completes a claimed entry. Returns ErrQueueClaimConflict
// when the entry is no longer held by this worker.
func (r *QueueRepository) MarkProcessed(ctx context.Context, id string, processedAt time.Time) error {
	const query = `UPDATE recomputation_queue SET status = 'PROCESSED', processed_at = $2 WHERE id = $1 AND status = 'PROCESSING'`
	result, err := r.db.ExecContext(ctx, query, id, processedAt)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return claimGuard(result)
}

// Release returns a claimed entry to pending with a scheduled retry.
func (r *QueueRepository) Release(ctx context.Context, id string, nextAttempt time.Time, lastErr string) error {
	const query = `UPDATE recomputation_queue SET status = 'PENDING', next_attempt_at = $2, last_error = $3 WHERE id = $1 AND status = 'PROCESSING'`
	result, err := r.db.ExecContext(ctx, query, id, nextAttempt, lastErr)
	if err != nil {
		return fmt.Errorf("release queue entry: %w", err)
	}
	return claimGuard(result)
}

// DeadLetter parks an entry that exhausted its retry ceiling.
func (r *QueueRepository) DeadLetter(ctx context.Context, id string, lastErr string) error {
	const query = `UPDATE recomputation_queue SET status = 'DEAD_LETTER', last_error = $2 WHERE id = $1 AND status = 'PROCESSING'`
	result, err := r.db.ExecContext(ctx, query, id, lastErr)
	if err != nil {
		return fmt.Errorf("dead-letter queue entry: %w", err)
	}
	return claimGuard(result)
}

// claimGuard maps a zero-row lifecycle update to the claim-conflict error:
// the entry moved on under another worker and this one must not touch it.
func claimGuard(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("queue update rows: %w", err)
	}
	if affected == 0 {
		return appErrors.ErrQueueClaimConflict
	}
	return nil
}

// PendingCount returns the current backlog size.
func (r *QueueRepository) PendingCount(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM recomputation_queue WHERE status = 'PENDING'`
	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, err
	}
	return count, nil
}

// Stats aggregates queue health for the admin surface.
func (r *QueueRepository) Stats(ctx context.Context) (*models.QueueStats, error) {
	const query = `SELECT
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE status = 'PROCESSING') AS processing,
		COUNT(*) FILTER (WHERE status = 'PROCESSED') AS processed,
		COUNT(*) FILTER (WHERE status = 'DEAD_LETTER') AS dead_letter
		FROM recomputation_queue`
	var stats models.QueueStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListByStatus returns entries in a given state, oldest first, for the
// admin queue inspection endpoint.
func (r *QueueRepository) ListByStatus(ctx context.Context, status models.QueueEntryStatus, limit int) ([]models.RecomputationEntry, error) {
	const query = `SELECT id, student_id, listing_id, status, version, attempts, last_error, enqueued_at, next_attempt_at, processed_at
		FROM recomputation_queue WHERE status = $1 ORDER BY enqueued_at ASC LIMIT $2`
	entries := []models.RecomputationEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, status, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
