package models

import "time"

// QueueEntryStatus enumerates recomputation queue lifecycle states.
type QueueEntryStatus string

const (
	QueueStatusPending    QueueEntryStatus = "PENDING"
	QueueStatusProcessing QueueEntryStatus = "PROCESSING"
	QueueStatusProcessed  QueueEntryStatus = "PROCESSED"
	QueueStatusDeadLetter QueueEntryStatus = "DEAD_LETTER"
)

// RecomputationEntry is one unit of pending score work, resolved to a
// concrete (student, listing) pair at enqueue time. The partial unique index
// on (student_id, listing_id) WHERE status = 'PENDING' enforces dedup.
type RecomputationEntry struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	ListingID    string           `db:"listing_id" json:"listing_id"`
	Status       QueueEntryStatus `db:"status" json:"status"`
	Version      int64            `db:"version" json:"version"`
	Attempts     int              `db:"attempts" json:"attempts"`
	LastError    *string          `db:"last_error" json:"last_error,omitempty"`
	EnqueuedAt   time.Time        `db:"enqueued_at" json:"enqueued_at"`
	NextAttempt  time.Time        `db:"next_attempt_at" json:"next_attempt_at"`
	ProcessedAt  *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
}

// QueueStats aggregates queue health for the admin surface.
type QueueStats struct {
	Pending    int64 `db:"pending" json:"pending"`
	Processing int64 `db:"processing" json:"processing"`
	Processed  int64 `db:"processed" json:"processed"`
	DeadLetter int64 `db:"dead_letter" json:"dead_letter"`
}
