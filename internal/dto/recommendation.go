package dto

import (
	"time"

	"github.com/talentbridge/match-api/internal/models"
)

// RecommendedListing is one entry of the student-facing ranking.
type RecommendedListing struct {
	Listing        models.Listing        `json:"listing"`
	CompositeScore int                   `json:"composite_score"`
	Breakdown      models.ScoreBreakdown `json:"breakdown"`
	MatchedSkills  []string              `json:"matched_skills"`
	MissingSkills  []string              `json:"missing_skills"`
	Stale          bool                  `json:"stale"`
}

// RecommendedStudent is one entry of the corporate-facing ranking. Only the
// skill-match term applies in this direction.
type RecommendedStudent struct {
	Student       models.StudentProfile `json:"student"`
	SkillScore    int                   `json:"composite_score"`
	MatchedSkills []string              `json:"matched_skills"`
	MissingSkills []string              `json:"missing_skills"`
}

// MatchExplanation is the single-pair "why did we match you" payload.
type MatchExplanation struct {
	StudentID      string                `json:"student_id"`
	ListingID      string                `json:"listing_id"`
	CompositeScore int                   `json:"composite_score"`
	Breakdown      models.ScoreBreakdown `json:"breakdown"`
	MatchedSkills  []string              `json:"matched_skills"`
	MissingSkills  []string              `json:"missing_skills"`
	ComputedAt     time.Time             `json:"computed_at"`
	Degraded       bool                  `json:"degraded"`
}
