package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/talentbridge/match-api/internal/models"
)

// HistoryRepository reads application outcomes and match feedback. Both are
// historical signal owned by external collaborators; the engine only reads.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// OutcomesByStudent returns the full application history for a student,
// oldest first, with the listing category joined in.
func (r *HistoryRepository) OutcomesByStudent(ctx context.Context, studentID string) ([]models.ApplicationOutcome, error) {
	const query = `SELECT a.id, a.student_id, a.listing_id, l.category AS listing_category, a.status, a.skills_snapshot, a.created_at, a.updated_at
		FROM application_outcomes a
		JOIN listings l ON l.id = a.listing_id
		WHERE a.student_id = $1
		ORDER BY a.created_at ASC`
	outcomes := []models.ApplicationOutcome{}
	if err := r.db.SelectContext(ctx, &outcomes, query, studentID); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// FeedbackByStudent returns every explicit rating a student has submitted.
func (r *HistoryRepository) FeedbackByStudent(ctx context.Context, studentID string) ([]models.MatchFeedback, error) {
	const query = `SELECT f.id, f.student_id, f.listing_id, l.category AS listing_category, f.rating, f.created_at
		FROM match_feedback f
		JOIN listings l ON l.id = f.listing_id
		WHERE f.student_id = $1
		ORDER BY f.created_at ASC`
	feedback := []models.MatchFeedback{}
	if err := r.db.SelectContext(ctx, &feedback, query, studentID); err != nil {
		return nil, err
	}
	return feedback, nil
}

// AppliedListingIDs returns the listings a student has already applied to,
// excluding withdrawn applications, for recommendation exclusion.
func (r *HistoryRepository) AppliedListingIDs(ctx context.Context, studentID string) (map[string]struct{}, error) {
	const query = `SELECT listing_id FROM application_outcomes WHERE student_id = $1 AND status <> 'WITHDRAWN'`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// AppliedStudentIDs returns the students who already applied to a listing.
func (r *HistoryRepository) AppliedStudentIDs(ctx context.Context, listingID string) (map[string]struct{}, error) {
	const query = `SELECT student_id FROM application_outcomes WHERE listing_id = $1`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, listingID); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// InterestedStudentIDs resolves the fan-out set for a listing-level change:
// students with an existing cached score for the listing or an application
// against it. It deliberately does not reach every student in the system.
func (r *HistoryRepository) InterestedStudentIDs(ctx context.Context, listingID string) ([]string, error) {
	const query = `SELECT student_id FROM match_scores WHERE listing_id = $1
		UNION
		SELECT student_id FROM application_outcomes WHERE listing_id = $1
		ORDER BY student_id ASC`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, listingID); err != nil {
		return nil, err
	}
	return ids, nil
}

// FeedbackStats aggregates the feedback table for the admin surface.
func (r *HistoryRepository) FeedbackStats(ctx context.Context) (*models.FeedbackStats, error) {
	const query = `SELECT COUNT(*) AS total_feedback, COALESCE(AVG(rating), 0) AS average_rating FROM match_feedback`
	var stats models.FeedbackStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}
