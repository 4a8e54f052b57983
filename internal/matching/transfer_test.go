package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/match-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestTransferIndexPositionSpecific(t *testing.T) {
	idx := NewTransferIndex([]models.SkillMapping{
		{Sport: "Football", Position: "Quarterback", ProfessionalSkill: "Decision-Making Under Pressure", TransferStrength: 0.8},
		{Sport: "football", Position: "", ProfessionalSkill: "teamwork", TransferStrength: 0.9},
	})

	transfers := idx.Resolve(strPtr("football"), strPtr("quarterback"))
	require.Len(t, transfers, 1)
	assert.Equal(t, "decision-making under pressure", transfers[0].ProfessionalSkill)
	assert.Equal(t, 0.8, transfers[0].Strength)
}

func TestTransferIndexFallsBackToSportWide(t *testing.T) {
	idx := NewTransferIndex([]models.SkillMapping{
		{Sport: "football", Position: "", ProfessionalSkill: "teamwork", TransferStrength: 0.9},
	})

	transfers := idx.Resolve(strPtr("football"), strPtr("linebacker"))
	require.Len(t, transfers, 1)
	assert.Equal(t, "teamwork", transfers[0].ProfessionalSkill)
}

func TestTransferIndexNoSportResolvesNothing(t *testing.T) {
	idx := NewTransferIndex([]models.SkillMapping{
		{Sport: "football", ProfessionalSkill: "teamwork", TransferStrength: 0.9},
	})

	assert.Nil(t, idx.Resolve(nil, nil))
	assert.Empty(t, idx.Resolve(strPtr("basketball"), nil))
}

func TestTransferIndexClampsStrength(t *testing.T) {
	idx := NewTransferIndex([]models.SkillMapping{
		{Sport: "football", ProfessionalSkill: "grit", TransferStrength: 1.7},
		{Sport: "football", ProfessionalSkill: "focus", TransferStrength: -0.3},
	})

	transfers := idx.Resolve(strPtr("football"), nil)
	require.Len(t, transfers, 2)
	for _, tr := range transfers {
		assert.GreaterOrEqual(t, tr.Strength, 0.0)
		assert.LessOrEqual(t, tr.Strength, 1.0)
	}
}
