// internal/matching/weights.go
package matching

// FactorWeights holds the maximum points of each factor. The five maxima
// always sum to 100 so that total points are directly a 0-100 score.
type FactorWeights struct {
	Skills       int
	Availability int
	Personality  int
	Domain       int
	Engagement   int
}

// DefaultWeights is the production weighting.
var DefaultWeights = FactorWeights{
	Skills:       35,
	Availability: 20,
	Personality:  15,
	Domain:       15,
	Engagement:   15,
}

// Total returns the sum of all factor maxima.
func (w FactorWeights) Total() int {
	return w.Skills + w.Availability + w.Personality + w.Domain + w.Engagement
}

// EngagementScale defines how raw engagement numbers convert into factor
// points. Points scale linearly from 0 up to full credit at PointsCeiling;
// the engagement index likewise up to IndexCeiling. The ceilings come from
// the product's gamification tuning and are kept as data, not literals.
type EngagementScale struct {
	PointsCeiling int     // engagement points granting full PointsSubMax credit
	PointsSubMax  float64 // sub-score max for engagement points
	IndexCeiling  float64 // engagement index granting full IndexSubMax credit
	IndexSubMax   float64 // sub-score max for the engagement index
}

// DefaultEngagementScale is the production engagement scaling.
var DefaultEngagementScale = EngagementScale{
	PointsCeiling: 500,
	PointsSubMax:  10,
	IndexCeiling:  50,
	IndexSubMax:   5,
}

// Availability decomposes into a days part and a time-slot part.
const (
	availabilityDaysShare = 0.70
	availabilityTimeShare = 0.30
)

// Factors scoring below this share of their max are improvement candidates.
const improvementThreshold = 0.70

// Share of a factor's max awarded when the mission places no constraint on it.
const neutralShare = 0.50

// Share awarded when the mission constrains a factor but the member has not
// filled in the corresponding profile data. Low enough to keep profile
// completion worthwhile, never zero so an empty profile is not eliminated.
const incompleteProfileShare = 0.30
