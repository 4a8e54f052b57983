package dto

// UpsertSkillMappingRequest captures the admin payload for creating or
// updating an athletic skill mapping row.
type UpsertSkillMappingRequest struct {
	Sport             string  `json:"sport" validate:"required"`
	Position          string  `json:"position"`
	ProfessionalSkill string  `json:"professional_skill" validate:"required"`
	TransferStrength  float64 `json:"transfer_strength" validate:"gte=0,lte=1"`
	SkillCategory     string  `json:"skill_category" validate:"required"`
	Description       string  `json:"description"`
}
