// internal/matching/engine.go
package matching

import "sort"

// WellOptimizedMessage is returned by TopImprovementTip when every factor
// already scores at or above the improvement threshold.
const WellOptimizedMessage = "Your profile is well optimized for this kind of mission"

// Engine computes member/mission compatibility scores. It is stateless apart
// from its immutable weight and scaling tables, so a single Engine is safe
// for concurrent use from any number of goroutines.
type Engine struct {
	weights FactorWeights
	scale   EngagementScale
}

// NewEngine returns an engine using the production weights and scaling.
func NewEngine() *Engine {
	return &Engine{weights: DefaultWeights, scale: DefaultEngagementScale}
}

// Weights returns the engine's factor weight table.
func (e *Engine) Weights() FactorWeights {
	return e.weights
}

// ComputeMatchScore scores one member against one mission. It is a pure
// function of its inputs: same member and mission always produce the same
// result, explanations included. The breakdown holds the five factors in
// fixed order and the total is the clamped sum of their points.
func (e *Engine) ComputeMatchScore(member MemberProfile, mission Mission) ScoringResult {
	breakdown := []ScoreBreakdown{
		e.scoreSkills(member, mission),
		e.scoreAvailability(member, mission),
		e.scorePersonality(member, mission),
		e.scoreDomain(member, mission),
		e.scoreEngagement(member),
	}

	total := 0
	for _, b := range breakdown {
		total += b.Points
	}
	score := clampPoints(total, e.weights.Total())

	return ScoringResult{
		Score:     score,
		Grade:     GradeForScore(score),
		Breakdown: breakdown,
	}
}

// RankMissions scores every mission for one member and returns them in
// descending score order. The sort is stable: missions with equal scores
// keep their input order.
func (e *Engine) RankMissions(member MemberProfile, missions []Mission) []RankedMission {
	ranked := make([]RankedMission, 0, len(missions))
	for _, m := range missions {
		ranked = append(ranked, RankedMission{Mission: m, Result: e.ComputeMatchScore(member, m)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.Score > ranked[j].Result.Score
	})
	return ranked
}

// RankMembers scores every member for one mission and returns them in
// descending score order, stable on input order for equal scores.
func (e *Engine) RankMembers(members []MemberProfile, mission Mission) []RankedMember {
	ranked := make([]RankedMember, 0, len(members))
	for _, m := range members {
		ranked = append(ranked, RankedMember{Member: m, Result: e.ComputeMatchScore(m, mission)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.Score > ranked[j].Result.Score
	})
	return ranked
}

// TopImprovementTip picks, among factors below 70% of their max, the one
// with the largest relative gap and returns its explanation. One suggestion
// at a time keeps the feedback actionable. Ties keep the earlier factor.
func (e *Engine) TopImprovementTip(breakdown []ScoreBreakdown) string {
	best := -1
	bestGap := 0.0
	for i, b := range breakdown {
		if b.MaxPoints == 0 {
			continue
		}
		if float64(b.Points) >= improvementThreshold*float64(b.MaxPoints) {
			continue
		}
		gap := float64(b.MaxPoints-b.Points) / float64(b.MaxPoints)
		if gap > bestGap {
			best = i
			bestGap = gap
		}
	}
	if best < 0 {
		return WellOptimizedMessage
	}
	return breakdown[best].Explanation
}
