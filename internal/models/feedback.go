package models

import "time"

// MatchFeedback is an explicit post-engagement rating for a (student,
// listing) pair, collected by an external survey surface. Read-only here.
type MatchFeedback struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	ListingID       string    `db:"listing_id" json:"listing_id"`
	ListingCategory string    `db:"listing_category" json:"listing_category"`
	Rating          int       `db:"rating" json:"rating"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
