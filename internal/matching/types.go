// internal/matching/types.go
package matching

// TimeSlot is a daily availability window. A mission's ScheduleTime and a
// member's AvailabilityTime use the same vocabulary; FullDay on the member
// side is compatible with any mission slot.
type TimeSlot string

const (
	TimeMorning   TimeSlot = "morning"
	TimeAfternoon TimeSlot = "afternoon"
	TimeFullDay   TimeSlot = "full_day"
)

// PersonalityType is a DISC personality classification.
type PersonalityType string

const (
	PersonalityDominant      PersonalityType = "Dominant"
	PersonalityInfluence     PersonalityType = "Influence"
	PersonalitySteadiness    PersonalityType = "Steadiness"
	PersonalityConscientious PersonalityType = "Conscientious"
)

// MemberProfile is the read-only member side of a scoring pair.
//
// Optional enum fields are pointers: nil means the member has not filled the
// field in. Optional free-text fields use the empty string for "not
// provided"; all string comparisons trim and case-fold first.
type MemberProfile struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name,omitempty"`
	Specialties           []string         `json:"specialties"`
	JobTitle              string           `json:"jobTitle,omitempty"`
	AvailabilityDays      []string         `json:"availabilityDays"`
	AvailabilityTime      *TimeSlot        `json:"availabilityTime,omitempty"`
	PersonalityType       *PersonalityType `json:"personalityType,omitempty"`
	PreferredCommittee    string           `json:"preferredCommittee,omitempty"`
	PreferredActivityType string           `json:"preferredActivityType,omitempty"`
	EngagementPoints      int              `json:"engagementPoints"`
	EngagementIndex       float64          `json:"engagementIndex"`
}

// Mission is the read-only mission side of a scoring pair. Empty slices and
// nil/empty optionals mean the mission places no constraint on that factor.
type Mission struct {
	ID             string            `json:"id"`
	Title          string            `json:"title,omitempty"`
	RequiredSkills []string          `json:"requiredSkills"`
	PersonalityFit []PersonalityType `json:"personalityFit"`
	ScheduleDays   []string          `json:"scheduleDays"`
	ScheduleTime   *TimeSlot         `json:"scheduleTime,omitempty"`
	Category       string            `json:"category,omitempty"`
}

// Grade is the display label derived from the total score.
type Grade string

const (
	GradeExcellent Grade = "Excellent"
	GradeGood      Grade = "Good"
	GradeFair      Grade = "Fair"
	GradeLow       Grade = "Low"
)

// GradeForScore maps a 0-100 score to its grade band.
func GradeForScore(score int) Grade {
	switch {
	case score >= 80:
		return GradeExcellent
	case score >= 60:
		return GradeGood
	case score >= 40:
		return GradeFair
	default:
		return GradeLow
	}
}

// ScoreBreakdown is the per-factor detail justifying the total score.
type ScoreBreakdown struct {
	FactorName   string   `json:"factorName"`
	Points       int      `json:"points"`
	MaxPoints    int      `json:"maxPoints"`
	Percentage   int      `json:"percentage"`
	Explanation  string   `json:"explanation"`
	MatchedItems []string `json:"matchedItems,omitempty"`
}

// ScoringResult is the outcome of scoring one member against one mission.
// Breakdown always holds the five factors in fixed order: Skills Match,
// Availability, Personality Fit, Domain Interest, Engagement Level.
type ScoringResult struct {
	Score     int              `json:"score"`
	Grade     Grade            `json:"grade"`
	Breakdown []ScoreBreakdown `json:"breakdown"`
}

// RankedMission pairs a mission with its scoring result for one member.
type RankedMission struct {
	Mission Mission       `json:"mission"`
	Result  ScoringResult `json:"result"`
}

// RankedMember pairs a member with their scoring result for one mission.
type RankedMember struct {
	Member MemberProfile `json:"member"`
	Result ScoringResult `json:"result"`
}
