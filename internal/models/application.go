package models

import (
	"time"

	"github.com/lib/pq"
)

// ApplicationStatus enumerates pipeline states for an application.
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "PENDING"
	ApplicationStatusAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
	ApplicationStatusCompleted ApplicationStatus = "COMPLETED"
	ApplicationStatusWithdrawn ApplicationStatus = "WITHDRAWN"
)

// Successful reports whether the status counts as a positive outcome for the
// success-history and affinity terms.
func (s ApplicationStatus) Successful() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusCompleted
}

// ApplicationOutcome is a historical (student, listing) application record
// owned by the application pipeline. The skills snapshot captures the
// listing's requirements at the time of application, so later listing edits
// do not rewrite history.
type ApplicationOutcome struct {
	ID              string            `db:"id" json:"id"`
	StudentID       string            `db:"student_id" json:"student_id"`
	ListingID       string            `db:"listing_id" json:"listing_id"`
	ListingCategory string            `db:"listing_category" json:"listing_category"`
	Status          ApplicationStatus `db:"status" json:"status"`
	SkillsSnapshot  pq.StringArray    `db:"skills_snapshot" json:"skills_snapshot"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}
