package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/talentbridge/match-api/internal/models"
)

// StalePair identifies a (student, listing) pair invalidated by an upstream
// change, with the version stamp its recomputation must carry.
type StalePair struct {
	StudentID string `db:"student_id"`
	ListingID string `db:"listing_id"`
	Version   int64  `db:"version"`
}

// ScoreRepository owns the match_scores table: one live row per (student,
// listing) pair, updated in place, marked stale rather than deleted.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository constructs the repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Upsert writes a computed score. The version guard rejects out-of-order
// writes: a slow worker carrying an older version loses to a fresher row
// without error (zero rows affected).
func (r *ScoreRepository) Upsert(ctx context.Context, score *models.MatchScore) (bool, error) {
	const query = `INSERT INTO match_scores (student_id, listing_id, composite_score, skill_match, category_affinity, availability, recency_boost, success_history, is_stale, version, computed_at, computation_time_ms)
		VALUES (:student_id, :listing_id, :composite_score, :skill_match, :category_affinity, :availability, :recency_boost, :success_history, :is_stale, :version, :computed_at, :computation_time_ms)
		ON CONFLICT (student_id, listing_id) DO UPDATE
		SET composite_score = EXCLUDED.composite_score,
		    skill_match = EXCLUDED.skill_match,
		    category_affinity = EXCLUDED.category_affinity,
		    availability = EXCLUDED.availability,
		    recency_boost = EXCLUDED.recency_boost,
		    success_history = EXCLUDED.success_history,
		    is_stale = EXCLUDED.is_stale,
		    version = EXCLUDED.version,
		    computed_at = EXCLUDED.computed_at,
		    computation_time_ms = EXCLUDED.computation_time_ms
		WHERE match_scores.version <= EXCLUDED.version`
	result, err := r.db.NamedExecContext(ctx, query, score)
	if err != nil {
		return false, fmt.Errorf("upsert match score: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert match score rows: %w", err)
	}
	return affected > 0, nil
}

// Get returns the live row for a pair, stale or not.
func (r *ScoreRepository) Get(ctx context.Context, studentID, listingID string) (*models.MatchScore, error) {
	const query = `SELECT student_id, listing_id, composite_score, skill_match, category_affinity, availability, recency_boost, success_history, is_stale, version, computed_at, computation_time_ms
		FROM match_scores WHERE student_id = $1 AND listing_id = $2`
	var score models.MatchScore
	if err := r.db.GetContext(ctx, &score, query, studentID, listingID); err != nil {
		return nil, err
	}
	return &score, nil
}

// ListByStudent returns every cached score for a student.
func (r *ScoreRepository) ListByStudent(ctx context.Context, studentID string) ([]models.MatchScore, error) {
	const query = `SELECT student_id, listing_id, composite_score, skill_match, category_affinity, availability, recency_boost, success_history, is_stale, version, computed_at, computation_time_ms
		FROM match_scores WHERE student_id = $1`
	scores := []models.MatchScore{}
	if err := r.db.SelectContext(ctx, &scores, query, studentID); err != nil {
		return nil, err
	}
	return scores, nil
}

// MarkStaleByStudent flags every score touching the student and bumps the
// version stamp, returning the affected pairs for fan-out.
func (r *ScoreRepository) MarkStaleByStudent(ctx context.Context, studentID string) ([]StalePair, error) {
	const query = `UPDATE match_scores SET is_stale = true, version = version + 1
		WHERE student_id = $1
		RETURNING student_id, listing_id, version`
	pairs := []StalePair{}
	if err := r.db.SelectContext(ctx, &pairs, query, studentID); err != nil {
		return nil, fmt.Errorf("mark stale by student: %w", err)
	}
	return pairs, nil
}

// MarkStaleByListing flags every score touching the listing and bumps the
// version stamp, returning the affected pairs for fan-out.
func (r *ScoreRepository) MarkStaleByListing(ctx context.Context, listingID string) ([]StalePair, error) {
	const query = `UPDATE match_scores SET is_stale = true, version = version + 1
		WHERE listing_id = $1
		RETURNING student_id, listing_id, version`
	pairs := []StalePair{}
	if err := r.db.SelectContext(ctx, &pairs, query, listingID); err != nil {
		return nil, fmt.Errorf("mark stale by listing: %w", err)
	}
	return pairs, nil
}

// MarkStalePair flags one pair, returning its bumped version. Zero pairs
// means no cached row exists yet; the caller decides whether to compute
// fresh.
func (r *ScoreRepository) MarkStalePair(ctx context.Context, studentID, listingID string) ([]StalePair, error) {
	const query = `UPDATE match_scores SET is_stale = true, version = version + 1
		WHERE student_id = $1 AND listing_id = $2
		RETURNING student_id, listing_id, version`
	pairs := []StalePair{}
	if err := r.db.SelectContext(ctx, &pairs, query, studentID, listingID); err != nil {
		return nil, fmt.Errorf("mark stale pair: %w", err)
	}
	return pairs, nil
}

// Stats aggregates the score table for the admin surface.
func (r *ScoreRepository) Stats(ctx context.Context) (*models.ScoreStats, error) {
	const query = `SELECT COUNT(*) AS total_scores,
		COUNT(*) FILTER (WHERE is_stale) AS stale_scores,
		COALESCE(AVG(composite_score), 0) AS average_score,
		COALESCE(MIN(composite_score), 0) AS min_score,
		COALESCE(MAX(composite_score), 0) AS max_score,
		COALESCE(AVG(computation_time_ms), 0) AS avg_computation_ms
		FROM match_scores`
	var stats models.ScoreStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}
