package models

import "time"

// ScoreBreakdown holds the per-factor components of a match score. Every
// component is expressed on the same 0-100 integer scale as the composite.
type ScoreBreakdown struct {
	SkillMatch       int `db:"skill_match" json:"skill_match"`
	CategoryAffinity int `db:"category_affinity" json:"category_affinity"`
	Availability     int `db:"availability" json:"availability"`
	RecencyBoost     int `db:"recency_boost" json:"recency_boost"`
	SuccessHistory   int `db:"success_history" json:"success_history"`
}

// MatchScore is the engine-owned cached score for a (student, listing) pair.
// At most one live row exists per pair; recomputes update it in place.
// Version is bumped by every staleness-triggering event so a slow worker
// carrying an older version cannot overwrite a fresher write.
type MatchScore struct {
	StudentID         string    `db:"student_id" json:"student_id"`
	ListingID         string    `db:"listing_id" json:"listing_id"`
	CompositeScore    int       `db:"composite_score" json:"composite_score"`
	SkillMatch        int       `db:"skill_match" json:"skill_match"`
	CategoryAffinity  int       `db:"category_affinity" json:"category_affinity"`
	Availability      int       `db:"availability" json:"availability"`
	RecencyBoost      int       `db:"recency_boost" json:"recency_boost"`
	SuccessHistory    int       `db:"success_history" json:"success_history"`
	IsStale           bool      `db:"is_stale" json:"is_stale"`
	Version           int64     `db:"version" json:"version"`
	ComputedAt        time.Time `db:"computed_at" json:"computed_at"`
	ComputationTimeMs int64     `db:"computation_time_ms" json:"computation_time_ms"`
}

// Breakdown returns the component view of the stored row.
func (m *MatchScore) Breakdown() ScoreBreakdown {
	return ScoreBreakdown{
		SkillMatch:       m.SkillMatch,
		CategoryAffinity: m.CategoryAffinity,
		Availability:     m.Availability,
		RecencyBoost:     m.RecencyBoost,
		SuccessHistory:   m.SuccessHistory,
	}
}

// ScoreStats aggregates the engine-owned score table for the admin surface.
type ScoreStats struct {
	TotalScores       int64   `db:"total_scores" json:"total_scores"`
	StaleScores       int64   `db:"stale_scores" json:"stale_scores"`
	AverageScore      float64 `db:"average_score" json:"average_score"`
	MinScore          int     `db:"min_score" json:"min_score"`
	MaxScore          int     `db:"max_score" json:"max_score"`
	AvgComputationMs  float64 `db:"avg_computation_ms" json:"avg_computation_ms"`
}
