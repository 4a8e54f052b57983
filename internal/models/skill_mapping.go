package models

import "time"

// SkillMapping translates sport/position experience into a professional
// skill with a 0-1 transfer strength. Curated by administrators; the scoring
// path treats the table as read-only reference data. Position is empty for
// sport-wide mappings, which act as the fallback when no position-specific
// row exists.
type SkillMapping struct {
	ID                string    `db:"id" json:"id"`
	Sport             string    `db:"sport" json:"sport"`
	Position          string    `db:"position" json:"position"`
	ProfessionalSkill string    `db:"professional_skill" json:"professional_skill"`
	TransferStrength  float64   `db:"transfer_strength" json:"transfer_strength"`
	SkillCategory     string    `db:"skill_category" json:"skill_category"`
	Description       string    `db:"description" json:"description"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
