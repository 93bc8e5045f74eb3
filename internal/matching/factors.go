// internal/matching/factors.go
package matching

import (
	"fmt"
	"math"
	"strings"
)

// Factor display names, in the fixed breakdown order.
const (
	FactorSkills       = "Skills Match"
	FactorAvailability = "Availability"
	FactorPersonality  = "Personality Fit"
	FactorDomain       = "Domain Interest"
	FactorEngagement   = "Engagement Level"
)

// shareOf converts a fraction of a factor's max into integer points,
// rounding half away from zero.
func shareOf(max int, share float64) int {
	return int(math.Round(float64(max) * share))
}

func clampPoints(points, max int) int {
	if points < 0 {
		return 0
	}
	if points > max {
		return max
	}
	return points
}

func newBreakdown(name string, points, max int, explanation string, matched []string) ScoreBreakdown {
	points = clampPoints(points, max)
	return ScoreBreakdown{
		FactorName:   name,
		Points:       points,
		MaxPoints:    max,
		Percentage:   int(math.Round(float64(points) / float64(max) * 100)),
		Explanation:  explanation,
		MatchedItems: matched,
	}
}

// scoreSkills compares the mission's required skills against the member's
// specialties plus job title under the fuzzy containment rule.
func (e *Engine) scoreSkills(member MemberProfile, mission Mission) ScoreBreakdown {
	max := e.weights.Skills

	required := cleanTerms(mission.RequiredSkills)
	if len(required) == 0 {
		return newBreakdown(FactorSkills, shareOf(max, neutralShare), max,
			"This mission is open to all skill sets", nil)
	}

	pool := cleanTerms(member.Specialties)
	if title := strings.TrimSpace(member.JobTitle); title != "" {
		pool = append(pool, title)
	}
	if len(pool) == 0 {
		return newBreakdown(FactorSkills, shareOf(max, incompleteProfileShare), max,
			"Add your specialties to your profile to improve skill matching", nil)
	}

	var matched []string
	for _, req := range required {
		for _, candidate := range pool {
			if skillsOverlap(req, candidate) {
				matched = append(matched, req)
				break
			}
		}
	}

	points := int(math.Round(float64(len(matched)) / float64(len(required)) * float64(max)))
	explanation := fmt.Sprintf("You match %d of %d required skills", len(matched), len(required))
	if len(matched) == 0 {
		explanation = "You have skills listed, but none match this mission's requirements"
	}
	return newBreakdown(FactorSkills, points, max, explanation, matched)
}

// scoreAvailability sums a days sub-score (70% of the factor) and a
// time-slot sub-score (30%). An entirely unconstrained schedule is neutral.
func (e *Engine) scoreAvailability(member MemberProfile, mission Mission) ScoreBreakdown {
	max := e.weights.Availability
	daysMax := shareOf(max, availabilityDaysShare)
	timeMax := max - daysMax

	requiredDays := cleanTerms(mission.ScheduleDays)
	if len(requiredDays) == 0 && mission.ScheduleTime == nil {
		return newBreakdown(FactorAvailability, shareOf(max, neutralShare), max,
			"This mission has no schedule requirements", nil)
	}

	var matched []string
	daysPoints := daysMax
	memberDays := cleanTerms(member.AvailabilityDays)
	if len(requiredDays) > 0 {
		if len(memberDays) == 0 {
			daysPoints = 0
		} else {
			for _, req := range requiredDays {
				for _, day := range memberDays {
					if termsEqual(req, day) {
						matched = append(matched, req)
						break
					}
				}
			}
			daysPoints = int(math.Round(float64(len(matched)) / float64(len(requiredDays)) * float64(daysMax)))
		}
	}

	timePoints := shareOf(timeMax, neutralShare)
	if mission.ScheduleTime != nil && member.AvailabilityTime != nil {
		switch {
		case *member.AvailabilityTime == TimeFullDay, *member.AvailabilityTime == *mission.ScheduleTime:
			timePoints = timeMax
		default:
			timePoints = 0
		}
	}

	var explanation string
	switch {
	case len(requiredDays) > 0 && len(memberDays) == 0:
		explanation = "Add your available days to your profile to improve schedule matching"
	case len(requiredDays) > 0:
		explanation = fmt.Sprintf("You are available on %d of %d scheduled days", len(matched), len(requiredDays))
	default:
		explanation = "This mission has no required days; matched on time slot compatibility"
	}

	return newBreakdown(FactorAvailability, daysPoints+timePoints, max, explanation, matched)
}

// scorePersonality awards full credit when the member's type is in the
// mission's accepted set, and a small consolation otherwise so a mismatch
// deprioritizes rather than eliminates.
func (e *Engine) scorePersonality(member MemberProfile, mission Mission) ScoreBreakdown {
	max := e.weights.Personality

	if len(mission.PersonalityFit) == 0 {
		return newBreakdown(FactorPersonality, shareOf(max, neutralShare), max,
			"This mission is open to all personality types", nil)
	}
	if member.PersonalityType == nil {
		return newBreakdown(FactorPersonality, shareOf(max, incompleteProfileShare), max,
			"Set your personality type in your profile to improve matching", nil)
	}

	for _, accepted := range mission.PersonalityFit {
		if accepted == *member.PersonalityType {
			return newBreakdown(FactorPersonality, max, max,
				fmt.Sprintf("Your %s personality is a great fit for this mission", *member.PersonalityType),
				[]string{string(*member.PersonalityType)})
		}
	}
	return newBreakdown(FactorPersonality, shareOf(max, 0.10), max,
		"Your personality type differs from this mission's preference", nil)
}

// scoreDomain compares the mission category against the member's preferred
// committee (exact beats partial) and preferred activity type (partial).
func (e *Engine) scoreDomain(member MemberProfile, mission Mission) ScoreBreakdown {
	max := e.weights.Domain

	category := strings.TrimSpace(mission.Category)
	if category == "" {
		return newBreakdown(FactorDomain, shareOf(max, neutralShare), max,
			"This mission has no specific category", nil)
	}

	committee := strings.TrimSpace(member.PreferredCommittee)
	activityType := strings.TrimSpace(member.PreferredActivityType)
	if committee == "" && activityType == "" {
		return newBreakdown(FactorDomain, shareOf(max, incompleteProfileShare), max,
			"Set your preferred committee or activity type to improve matching", nil)
	}

	if termsEqual(committee, category) {
		return newBreakdown(FactorDomain, max, max,
			fmt.Sprintf("The %s category matches your preferred committee", category),
			[]string{category})
	}
	if skillsOverlap(committee, category) || skillsOverlap(activityType, category) {
		return newBreakdown(FactorDomain, shareOf(max, neutralShare), max,
			fmt.Sprintf("The %s category is close to your stated interests", category),
			[]string{category})
	}
	return newBreakdown(FactorDomain, shareOf(max, 0.10), max,
		"This mission's category differs from your usual interests", nil)
}

// scoreEngagement is the only mission-independent factor: two linear
// sub-scores over the member's engagement points and engagement index.
func (e *Engine) scoreEngagement(member MemberProfile) ScoreBreakdown {
	max := e.weights.Engagement
	scale := e.scale

	points := float64(member.EngagementPoints)
	if points > float64(scale.PointsCeiling) {
		points = float64(scale.PointsCeiling)
	}
	if points < 0 {
		points = 0
	}
	pointsSub := points / float64(scale.PointsCeiling) * scale.PointsSubMax

	index := member.EngagementIndex
	if index > scale.IndexCeiling {
		index = scale.IndexCeiling
	}
	if index < 0 {
		index = 0
	}
	indexSub := index / scale.IndexCeiling * scale.IndexSubMax

	total := clampPoints(int(math.Round(pointsSub+indexSub)), max)

	var explanation string
	switch {
	case total >= 12:
		explanation = fmt.Sprintf("Highly active member (%d points, engagement index %.1f)",
			member.EngagementPoints, member.EngagementIndex)
	case total >= 8:
		explanation = fmt.Sprintf("Good activity level (%d points, engagement index %.1f)",
			member.EngagementPoints, member.EngagementIndex)
	case total >= 4:
		explanation = fmt.Sprintf("Moderate activity (%d points, engagement index %.1f)",
			member.EngagementPoints, member.EngagementIndex)
	default:
		explanation = fmt.Sprintf("Start participating in activities to raise your engagement (%d points, engagement index %.1f)",
			member.EngagementPoints, member.EngagementIndex)
	}

	return newBreakdown(FactorEngagement, total, max, explanation, nil)
}
