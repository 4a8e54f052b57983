package matching

import "github.com/talentbridge/match-api/internal/models"

// positiveFeedbackFloor is the minimum rating (on the survey's 1-5 scale)
// counted as an explicit positive signal.
const positiveFeedbackFloor = 4

// CategorySignal aggregates a student's history within one listing category.
type CategorySignal struct {
	Applications     int `json:"applications"`
	Successes        int `json:"successes"`
	PositiveFeedback int `json:"positive_feedback"`
}

// AffinityProfile is the learner's read-side aggregation of a student's
// application outcomes and explicit feedback. It is rebuilt from history on
// every calculator run; there is no separate mutable model store.
type AffinityProfile struct {
	TotalApplications int                       `json:"total_applications"`
	Categories        map[string]CategorySignal `json:"categories"`
	SuccessSkills     map[string]struct{}       `json:"-"`
}

// BuildAffinityProfile derives per-category counts and the success skill set
// from historical outcomes and feedback. Withdrawn applications still count
// toward the smoothing denominator; only accepted/completed outcomes
// contribute successes and success skills.
func BuildAffinityProfile(outcomes []models.ApplicationOutcome, feedback []models.MatchFeedback) AffinityProfile {
	profile := AffinityProfile{
		Categories:    make(map[string]CategorySignal),
		SuccessSkills: make(map[string]struct{}),
	}

	for _, outcome := range outcomes {
		profile.TotalApplications++
		category := models.NormalizeSkill(outcome.ListingCategory)
		signal := profile.Categories[category]
		signal.Applications++
		if outcome.Status.Successful() {
			signal.Successes++
			for _, skill := range outcome.SkillsSnapshot {
				normalized := models.NormalizeSkill(skill)
				if normalized != "" {
					profile.SuccessSkills[normalized] = struct{}{}
				}
			}
		}
		profile.Categories[category] = signal
	}

	for _, fb := range feedback {
		if fb.Rating < positiveFeedbackFloor {
			continue
		}
		category := models.NormalizeSkill(fb.ListingCategory)
		signal := profile.Categories[category]
		signal.PositiveFeedback++
		profile.Categories[category] = signal
	}

	return profile
}

// DerivedCategories is the set of categories a student is connected to:
// every category in their application history plus any extra categories the
// caller derives from skills (for athletic tenants, the mapping table's
// skill categories).
func (p AffinityProfile) DerivedCategories(extra ...string) map[string]struct{} {
	derived := make(map[string]struct{}, len(p.Categories)+len(extra))
	for category, signal := range p.Categories {
		if category == "" || signal.Applications == 0 {
			continue
		}
		derived[category] = struct{}{}
	}
	for _, category := range extra {
		normalized := models.NormalizeSkill(category)
		if normalized != "" {
			derived[normalized] = struct{}{}
		}
	}
	return derived
}

// CategoryAffinity computes the 0-1 affinity term for a listing category:
// a 0.3 base when the category overlaps the student's derived categories, a
// learned share of up to 0.4 proportional to the fraction of all
// applications that landed in the category (positive feedback adds to the
// numerator, so an extra positive rating can never lower the term), and a
// flat 0.3 success bonus once the student has an accepted or completed
// outcome there.
func (p AffinityProfile) CategoryAffinity(category string, derived map[string]struct{}) float64 {
	normalized := models.NormalizeSkill(category)
	signal := p.Categories[normalized]

	affinity := 0.0
	if _, ok := derived[normalized]; ok {
		affinity += 0.3
	}

	denominator := p.TotalApplications
	if denominator < 1 {
		denominator = 1
	}
	learned := float64(signal.Applications+signal.PositiveFeedback) / float64(denominator)
	if learned > 1 {
		learned = 1
	}
	affinity += 0.4 * learned

	if signal.Successes > 0 {
		affinity += 0.3
	}

	if affinity > 1 {
		affinity = 1
	}
	return affinity
}

// HasSuccessHistory reports whether any accepted/completed outcome exists.
func (p AffinityProfile) HasSuccessHistory() bool {
	return len(p.SuccessSkills) > 0
}
