package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentbridge/match-api/internal/models"
)

func TestBuildAffinityProfileCounts(t *testing.T) {
	profile := BuildAffinityProfile([]models.ApplicationOutcome{
		{ListingCategory: "engineering", Status: models.ApplicationStatusAccepted, SkillsSnapshot: []string{"Python", "sql"}},
		{ListingCategory: "engineering", Status: models.ApplicationStatusRejected},
		{ListingCategory: "design", Status: models.ApplicationStatusWithdrawn},
	}, []models.MatchFeedback{
		{ListingCategory: "engineering", Rating: 5},
		{ListingCategory: "engineering", Rating: 2},
	})

	assert.Equal(t, 3, profile.TotalApplications)
	assert.Equal(t, 2, profile.Categories["engineering"].Applications)
	assert.Equal(t, 1, profile.Categories["engineering"].Successes)
	assert.Equal(t, 1, profile.Categories["engineering"].PositiveFeedback)
	assert.Equal(t, 1, profile.Categories["design"].Applications)
	assert.Contains(t, profile.SuccessSkills, "python")
	assert.Contains(t, profile.SuccessSkills, "sql")
}

func TestCategoryAffinityEmptyHistory(t *testing.T) {
	profile := BuildAffinityProfile(nil, nil)
	affinity := profile.CategoryAffinity("engineering", profile.DerivedCategories())
	assert.Equal(t, 0.0, affinity)
}

func TestCategoryAffinityCapsAtOne(t *testing.T) {
	outcomes := make([]models.ApplicationOutcome, 0, 5)
	for i := 0; i < 5; i++ {
		outcomes = append(outcomes, models.ApplicationOutcome{
			ListingCategory: "engineering",
			Status:          models.ApplicationStatusCompleted,
			SkillsSnapshot:  []string{"python"},
		})
	}
	profile := BuildAffinityProfile(outcomes, nil)
	affinity := profile.CategoryAffinity("engineering", profile.DerivedCategories())
	assert.Equal(t, 1.0, affinity)
}

func TestPositiveFeedbackNeverDecreasesAffinity(t *testing.T) {
	outcomes := []models.ApplicationOutcome{
		{ListingCategory: "engineering", Status: models.ApplicationStatusPending},
		{ListingCategory: "design", Status: models.ApplicationStatusPending},
		{ListingCategory: "design", Status: models.ApplicationStatusPending},
	}

	without := BuildAffinityProfile(outcomes, nil)
	with := BuildAffinityProfile(outcomes, []models.MatchFeedback{
		{ListingCategory: "engineering", Rating: 5},
	})

	baseline := without.CategoryAffinity("engineering", without.DerivedCategories())
	boosted := with.CategoryAffinity("engineering", with.DerivedCategories())
	assert.GreaterOrEqual(t, boosted, baseline)
}

func TestLowRatingFeedbackIgnored(t *testing.T) {
	outcomes := []models.ApplicationOutcome{{ListingCategory: "engineering", Status: models.ApplicationStatusPending}}

	without := BuildAffinityProfile(outcomes, nil)
	with := BuildAffinityProfile(outcomes, []models.MatchFeedback{{ListingCategory: "engineering", Rating: 1}})

	assert.Equal(t,
		without.CategoryAffinity("engineering", without.DerivedCategories()),
		with.CategoryAffinity("engineering", with.DerivedCategories()))
}

func TestDerivedCategoriesIncludesExtras(t *testing.T) {
	profile := BuildAffinityProfile([]models.ApplicationOutcome{
		{ListingCategory: "design", Status: models.ApplicationStatusPending},
	}, nil)

	derived := profile.DerivedCategories("Leadership")
	assert.Contains(t, derived, "design")
	assert.Contains(t, derived, "leadership")
}
