package matching

import (
	"strings"

	"github.com/talentbridge/match-api/internal/models"
)

// Transfer is a resolved athletic-to-professional skill equivalence. The
// strength is the partial credit a mapped skill earns toward a requirement.
type Transfer struct {
	ProfessionalSkill string  `json:"professional_skill"`
	Strength          float64 `json:"strength"`
	SkillCategory     string  `json:"skill_category"`
}

// TransferIndex answers (sport, position) lookups over the admin-curated
// skill mapping table. Rows with an empty position apply to the whole sport
// and serve as the fallback when no position-specific rows exist.
type TransferIndex struct {
	rows map[string][]Transfer
}

// NewTransferIndex builds an index from mapping rows. Invalid strengths are
// clamped into [0,1] at the boundary so a bad admin row cannot push a factor
// outside its scale.
func NewTransferIndex(mappings []models.SkillMapping) *TransferIndex {
	idx := &TransferIndex{rows: make(map[string][]Transfer, len(mappings))}
	for _, m := range mappings {
		skill := models.NormalizeSkill(m.ProfessionalSkill)
		if skill == "" {
			continue
		}
		strength := m.TransferStrength
		if strength < 0 {
			strength = 0
		}
		if strength > 1 {
			strength = 1
		}
		key := transferKey(m.Sport, m.Position)
		idx.rows[key] = append(idx.rows[key], Transfer{
			ProfessionalSkill: skill,
			Strength:          strength,
			SkillCategory:     models.NormalizeSkill(m.SkillCategory),
		})
	}
	return idx
}

// Resolve returns the transfers for a student's sport and position. When no
// position-specific rows exist the sport-wide rows are returned instead.
// A nil index, or a student without a sport, resolves to nothing, which makes
// the mapper a no-op for standard tenants.
func (i *TransferIndex) Resolve(sport, position *string) []Transfer {
	if i == nil || sport == nil {
		return nil
	}
	if position != nil {
		if rows, ok := i.rows[transferKey(*sport, *position)]; ok && len(rows) > 0 {
			return rows
		}
	}
	return i.rows[transferKey(*sport, "")]
}

func transferKey(sport, position string) string {
	return models.NormalizeSkill(sport) + "|" + strings.ToLower(strings.TrimSpace(position))
}
