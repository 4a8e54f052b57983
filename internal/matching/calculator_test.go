package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/match-api/internal/models"
)

func baseInput(now time.Time) ComputeInput {
	return ComputeInput{
		Student: models.StudentProfile{
			ID:           "student-1",
			Skills:       []string{"python", "sql"},
			HoursPerWeek: 20,
		},
		Listing: models.Listing{
			ID:             "listing-1",
			RequiredSkills: []string{"python", "sql", "aws"},
			Category:       "engineering",
			HoursPerWeek:   20,
			PublishedAt:    now.AddDate(0, 0, -3),
		},
		History: BuildAffinityProfile(nil, nil),
		Now:     now,
	}
}

func TestComputePartialSkillOverlap(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	result := Compute(baseInput(now))

	assert.Equal(t, 67, result.Breakdown.SkillMatch)
	assert.Equal(t, []string{"python", "sql"}, result.MatchedSkills)
	assert.Equal(t, []string{"aws"}, result.MissingSkills)
}

func TestComputeFullOverlapScoresHundred(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	in := baseInput(now)
	in.Listing.RequiredSkills = []string{"python", "sql"}

	result := Compute(in)
	assert.Equal(t, 100, result.Breakdown.SkillMatch)
	assert.Empty(t, result.MissingSkills)
}

func TestComputeNoRequiredSkillsBase(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	in := baseInput(now)
	in.Listing.RequiredSkills = nil

	result := Compute(in)
	assert.Equal(t, 30, result.Breakdown.SkillMatch)

	in.Student.Skills = nil
	result = Compute(in)
	assert.Equal(t, 0, result.Breakdown.SkillMatch)
}

func TestComputeRecencySteps(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		ageDays int
		want    int
	}{
		{3, 100},
		{10, 80},
		{20, 50},
		{45, 20},
	}
	for _, tc := range cases {
		in := baseInput(now)
		in.Listing.PublishedAt = now.AddDate(0, 0, -tc.ageDays)
		result := Compute(in)
		assert.Equalf(t, tc.want, result.Breakdown.RecencyBoost, "age %d days", tc.ageDays)
	}
}

func TestComputeAvailabilitySteps(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		studentHours int
		listingHours int
		want         int
	}{
		{20, 20, 100},
		{20, 25, 100},
		{20, 28, 70},
		{20, 35, 40},
		{20, 45, 20},
	}
	for _, tc := range cases {
		in := baseInput(now)
		in.Student.HoursPerWeek = tc.studentHours
		in.Listing.HoursPerWeek = tc.listingHours
		result := Compute(in)
		assert.Equalf(t, tc.want, result.Breakdown.Availability, "hours %d vs %d", tc.studentHours, tc.listingHours)
	}
}

func TestComputeTransferPartialCredit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	sport := "football"
	position := "quarterback"

	idx := NewTransferIndex([]models.SkillMapping{
		{Sport: "football", Position: "quarterback", ProfessionalSkill: "decision-making under pressure", TransferStrength: 0.8, SkillCategory: "leadership"},
	})

	in := baseInput(now)
	in.Student.Sport = &sport
	in.Student.Position = &position
	in.Listing.RequiredSkills = []string{"decision-making under pressure"}
	in.Transfers = idx.Resolve(in.Student.Sport, in.Student.Position)

	result := Compute(in)
	assert.Equal(t, 80, result.Breakdown.SkillMatch)
	assert.Equal(t, []string{"decision-making under pressure"}, result.MatchedSkills)
	assert.Empty(t, result.MissingSkills)
}

func TestComputeTransferCreditCappedByLiteralSkill(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	in := baseInput(now)
	in.Listing.RequiredSkills = []string{"python"}
	in.Transfers = []Transfer{{ProfessionalSkill: "python", Strength: 0.5}}

	// Literal possession wins over a weaker transfer mapping.
	result := Compute(in)
	assert.Equal(t, 100, result.Breakdown.SkillMatch)
}

func TestComputeSuccessHistoryOverlap(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	in := baseInput(now)
	in.History = BuildAffinityProfile([]models.ApplicationOutcome{
		{StudentID: "student-1", ListingID: "old-1", ListingCategory: "engineering", Status: models.ApplicationStatusCompleted, SkillsSnapshot: []string{"python", "docker"}},
	}, nil)

	result := Compute(in)
	// One of the three required skills appears in successful history.
	assert.Equal(t, 33, result.Breakdown.SuccessHistory)
}

func TestComputeCompositeIsWeightedSumOfComponents(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	in := baseInput(now)
	in.History = BuildAffinityProfile([]models.ApplicationOutcome{
		{StudentID: "student-1", ListingID: "old-1", ListingCategory: "engineering", Status: models.ApplicationStatusAccepted, SkillsSnapshot: []string{"sql"}},
		{StudentID: "student-1", ListingID: "old-2", ListingCategory: "design", Status: models.ApplicationStatusRejected},
	}, nil)

	result := Compute(in)
	b := result.Breakdown

	weighted := WeightSkillMatch*float64(b.SkillMatch) +
		WeightCategoryAffinity*float64(b.CategoryAffinity) +
		WeightAvailability*float64(b.Availability) +
		WeightRecencyBoost*float64(b.RecencyBoost) +
		WeightSuccessHistory*float64(b.SuccessHistory)
	assert.InDelta(t, weighted, float64(result.Composite), 0.5)

	for _, component := range []int{b.SkillMatch, b.CategoryAffinity, b.Availability, b.RecencyBoost, b.SuccessHistory, result.Composite} {
		assert.GreaterOrEqual(t, component, 0)
		assert.LessOrEqual(t, component, 100)
	}
}

func TestComputeDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	in := baseInput(now)
	in.History = BuildAffinityProfile([]models.ApplicationOutcome{
		{StudentID: "student-1", ListingID: "old-1", ListingCategory: "engineering", Status: models.ApplicationStatusAccepted, SkillsSnapshot: []string{"python"}},
	}, []models.MatchFeedback{
		{StudentID: "student-1", ListingID: "old-1", ListingCategory: "engineering", Rating: 5},
	})

	first := Compute(in)
	second := Compute(in)
	require.Equal(t, first, second)
}

func TestSkillOnlyIgnoresStudentContextFactors(t *testing.T) {
	student := models.StudentProfile{ID: "student-1", Skills: []string{"python"}, HoursPerWeek: 5}
	listing := models.Listing{
		ID:             "listing-1",
		RequiredSkills: []string{"python", "go"},
		HoursPerWeek:   40,
		PublishedAt:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	result := SkillOnly(student, listing, nil)
	assert.Equal(t, 50, result.Composite)
	assert.Equal(t, 0, result.Breakdown.Availability)
	assert.Equal(t, 0, result.Breakdown.RecencyBoost)
	assert.Equal(t, 0, result.Breakdown.CategoryAffinity)
}
