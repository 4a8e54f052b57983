package models

import (
	"time"

	"github.com/lib/pq"
)

// ListingStatus enumerates listing publication states.
type ListingStatus string

const (
	ListingStatusPublished   ListingStatus = "PUBLISHED"
	ListingStatusUnpublished ListingStatus = "UNPUBLISHED"
)

// Listing is a read-only snapshot of an opportunity owned by the listing
// catalog service.
type Listing struct {
	ID             string         `db:"id" json:"id"`
	TenantID       string         `db:"tenant_id" json:"tenant_id"`
	Title          string         `db:"title" json:"title"`
	RequiredSkills pq.StringArray `db:"required_skills" json:"required_skills"`
	Category       string         `db:"category" json:"category"`
	HoursPerWeek   int            `db:"hours_per_week" json:"hours_per_week"`
	Status         ListingStatus  `db:"status" json:"status"`
	PublishedAt    time.Time      `db:"published_at" json:"published_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// RequiredSkillSet returns the listing's requirements as a normalized set.
func (l *Listing) RequiredSkillSet() map[string]struct{} {
	return NormalizeSkillSet(l.RequiredSkills)
}
