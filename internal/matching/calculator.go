package matching

import (
	"math"
	"sort"
	"time"

	"github.com/talentbridge/match-api/internal/models"
)

// Factor weights. They must sum to 1.
const (
	WeightSkillMatch       = 0.40
	WeightCategoryAffinity = 0.20
	WeightAvailability     = 0.15
	WeightRecencyBoost     = 0.10
	WeightSuccessHistory   = 0.15
)

// noRequirementsBase is the skill-match credit for listings that declare no
// required skills, granted only when the student has at least one skill.
const noRequirementsBase = 0.3

// ComputeInput carries every snapshot the calculator needs. Now is injected
// so recomputing with identical inputs is byte-identical.
type ComputeInput struct {
	Student   models.StudentProfile
	Listing   models.Listing
	History   AffinityProfile
	Transfers []Transfer
	Now       time.Time
}

// Result is a computed breakdown plus the skill detail the recommendation
// payloads expose. MatchedSkills and MissingSkills are sorted for stable
// output.
type Result struct {
	Composite     int
	Breakdown     models.ScoreBreakdown
	MatchedSkills []string
	MissingSkills []string
}

// Compute scores one (student, listing) pair. Pure: no I/O, no wall clock,
// no randomness. Each factor is rounded onto the 0-100 integer scale after
// weighting inside the factor, and the composite is the rounded weighted sum
// of the integer components.
func Compute(in ComputeInput) Result {
	skill, matched, missing := skillMatch(in.Student, in.Listing, in.Transfers)

	derived := in.History.DerivedCategories(transferCategories(in.Transfers)...)
	affinity := in.History.CategoryAffinity(in.Listing.Category, derived)

	breakdown := models.ScoreBreakdown{
		SkillMatch:       toScale(skill),
		CategoryAffinity: toScale(affinity),
		Availability:     toScale(availability(in.Student.HoursPerWeek, in.Listing.HoursPerWeek)),
		RecencyBoost:     toScale(recencyBoost(in.Listing.PublishedAt, in.Now)),
		SuccessHistory:   toScale(successHistory(in.Listing, in.History)),
	}

	composite := int(math.Round(
		WeightSkillMatch*float64(breakdown.SkillMatch) +
			WeightCategoryAffinity*float64(breakdown.CategoryAffinity) +
			WeightAvailability*float64(breakdown.Availability) +
			WeightRecencyBoost*float64(breakdown.RecencyBoost) +
			WeightSuccessHistory*float64(breakdown.SuccessHistory)))

	return Result{
		Composite:     clampScale(composite),
		Breakdown:     breakdown,
		MatchedSkills: matched,
		MissingSkills: missing,
	}
}

// SkillOnly scores the corporate-facing direction: the skill-match term
// alone, without the student-context factors.
func SkillOnly(student models.StudentProfile, listing models.Listing, transfers []Transfer) Result {
	skill, matched, missing := skillMatch(student, listing, transfers)
	score := toScale(skill)
	return Result{
		Composite:     score,
		Breakdown:     models.ScoreBreakdown{SkillMatch: score},
		MatchedSkills: matched,
		MissingSkills: missing,
	}
}

// skillMatch computes the 0-1 overlap between required and held skills. A
// requirement met literally earns 1.0; one met through a transfer mapping
// earns the mapping's strength, capped at 1.0 per skill.
func skillMatch(student models.StudentProfile, listing models.Listing, transfers []Transfer) (float64, []string, []string) {
	required := listing.RequiredSkills
	if len(required) == 0 {
		if len(student.Skills) > 0 {
			return noRequirementsBase, nil, nil
		}
		return 0, nil, nil
	}

	held := student.SkillSet()
	bestTransfer := make(map[string]float64, len(transfers))
	for _, t := range transfers {
		if t.Strength > bestTransfer[t.ProfessionalSkill] {
			bestTransfer[t.ProfessionalSkill] = t.Strength
		}
	}

	var sum float64
	var count int
	matched := make([]string, 0, len(required))
	missing := make([]string, 0)
	seen := make(map[string]struct{}, len(required))

	for _, raw := range required {
		skill := models.NormalizeSkill(raw)
		if skill == "" {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		count++

		if _, ok := held[skill]; ok {
			sum++
			matched = append(matched, skill)
			continue
		}
		if strength, ok := bestTransfer[skill]; ok && strength > 0 {
			sum += strength
			matched = append(matched, skill)
			continue
		}
		missing = append(missing, skill)
	}

	if count == 0 {
		if len(student.Skills) > 0 {
			return noRequirementsBase, nil, nil
		}
		return 0, nil, nil
	}

	sort.Strings(matched)
	sort.Strings(missing)
	return sum / float64(count), matched, missing
}

// availability is a step function on the weekly-hours gap.
func availability(studentHours, listingHours int) float64 {
	diff := studentHours - listingHours
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 5:
		return 1.0
	case diff <= 10:
		return 0.7
	case diff <= 20:
		return 0.4
	default:
		return 0.2
	}
}

// recencyBoost is a step function on listing age in days since publish.
func recencyBoost(publishedAt, now time.Time) float64 {
	days := now.Sub(publishedAt).Hours() / 24
	switch {
	case days <= 7:
		return 1.0
	case days <= 14:
		return 0.8
	case days <= 30:
		return 0.5
	default:
		return 0.2
	}
}

// successHistory is the fraction of required skills covered by skills drawn
// from the student's accepted or completed applications.
func successHistory(listing models.Listing, history AffinityProfile) float64 {
	required := listing.RequiredSkillSet()
	if len(required) == 0 || !history.HasSuccessHistory() {
		return 0
	}
	var hits int
	for skill := range required {
		if _, ok := history.SuccessSkills[skill]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(required))
}

func transferCategories(transfers []Transfer) []string {
	if len(transfers) == 0 {
		return nil
	}
	categories := make([]string, 0, len(transfers))
	for _, t := range transfers {
		if t.SkillCategory != "" {
			categories = append(categories, t.SkillCategory)
		}
	}
	return categories
}

func toScale(fraction float64) int {
	return clampScale(int(math.Round(fraction * 100)))
}

func clampScale(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
