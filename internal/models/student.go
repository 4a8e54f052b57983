package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// StudentProfile is a read-only snapshot of a student owned by the platform
// user directory. The engine never writes to this table.
type StudentProfile struct {
	ID           string         `db:"id" json:"id"`
	TenantID     string         `db:"tenant_id" json:"tenant_id"`
	FullName     string         `db:"full_name" json:"full_name"`
	Skills       pq.StringArray `db:"skills" json:"skills"`
	HoursPerWeek int            `db:"hours_per_week" json:"hours_per_week"`
	Sport        *string        `db:"sport" json:"sport,omitempty"`
	Position     *string        `db:"position" json:"position,omitempty"`
	Active       bool           `db:"active" json:"active"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// SkillSet returns the student's skills as a normalized lookup set.
func (s *StudentProfile) SkillSet() map[string]struct{} {
	return NormalizeSkillSet(s.Skills)
}

// NormalizeSkill lowercases and trims a skill name so comparisons across
// snapshots are stable.
func NormalizeSkill(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeSkillSet builds a set of normalized skill names, dropping empties.
func NormalizeSkillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		normalized := NormalizeSkill(skill)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}
