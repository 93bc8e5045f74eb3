// internal/matching/factors_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func slotPtr(s TimeSlot) *TimeSlot {
	return &s
}

func personalityPtr(p PersonalityType) *PersonalityType {
	return &p
}

// ==========================
// Skills Match (max 35)
// ==========================

func TestScoreSkills(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name            string
		member          MemberProfile
		mission         Mission
		expectedPoints  int
		expectedMatched []string
	}{
		{
			name:            "no required skills is neutral",
			member:          MemberProfile{Specialties: []string{"Design"}},
			mission:         Mission{},
			expectedPoints:  18,
			expectedMatched: nil,
		},
		{
			name:            "member without skills gets low non-zero credit",
			member:          MemberProfile{},
			mission:         Mission{RequiredSkills: []string{"Design", "Marketing"}},
			expectedPoints:  11,
			expectedMatched: nil,
		},
		{
			name:            "partial fuzzy match",
			member:          MemberProfile{Specialties: []string{"Web Development", "SEO"}},
			mission:         Mission{RequiredSkills: []string{"Development", "Marketing"}},
			expectedPoints:  18,
			expectedMatched: []string{"Development"},
		},
		{
			name:            "full match",
			member:          MemberProfile{Specialties: []string{"Design", "Marketing"}},
			mission:         Mission{RequiredSkills: []string{"Design", "Marketing"}},
			expectedPoints:  35,
			expectedMatched: []string{"Design", "Marketing"},
		},
		{
			name:            "job title counts as a skill",
			member:          MemberProfile{JobTitle: "Accountant"},
			mission:         Mission{RequiredSkills: []string{"Accounting"}},
			expectedPoints:  35,
			expectedMatched: []string{"Accounting"},
		},
		{
			name:            "skills listed but nothing matches",
			member:          MemberProfile{Specialties: []string{"Photography"}},
			mission:         Mission{RequiredSkills: []string{"Accounting", "Legal"}},
			expectedPoints:  0,
			expectedMatched: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := engine.scoreSkills(tt.member, tt.mission)
			assert.Equal(t, FactorSkills, b.FactorName)
			assert.Equal(t, 35, b.MaxPoints)
			assert.Equal(t, tt.expectedPoints, b.Points)
			assert.Equal(t, tt.expectedMatched, b.MatchedItems)
			assert.NotEmpty(t, b.Explanation)
		})
	}
}

func TestScoreSkills_ExplanationDistinguishesEmptyFromMismatch(t *testing.T) {
	engine := NewEngine()
	mission := Mission{RequiredSkills: []string{"Accounting"}}

	noSkills := engine.scoreSkills(MemberProfile{}, mission)
	mismatch := engine.scoreSkills(MemberProfile{Specialties: []string{"Photography"}}, mission)

	assert.NotEqual(t, noSkills.Explanation, mismatch.Explanation)
	assert.Greater(t, noSkills.Points, 0, "missing profile data is never scored zero")
	assert.Equal(t, 0, mismatch.Points, "a real mismatch is scored zero")
}

// ==========================
// Availability (max 20)
// ==========================

func TestScoreAvailability(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name           string
		member         MemberProfile
		mission        Mission
		expectedPoints int
	}{
		{
			name:           "no schedule requirements is neutral",
			member:         MemberProfile{AvailabilityDays: []string{"Monday"}},
			mission:        Mission{},
			expectedPoints: 10,
		},
		{
			name: "partial days with full_day member time",
			member: MemberProfile{
				AvailabilityDays: []string{"Monday"},
				AvailabilityTime: slotPtr(TimeFullDay),
			},
			mission: Mission{
				ScheduleDays: []string{"Monday", "Wednesday"},
				ScheduleTime: slotPtr(TimeMorning),
			},
			expectedPoints: 13, // round(1/2*14)=7 days + 6 time
		},
		{
			name: "full days and matching time",
			member: MemberProfile{
				AvailabilityDays: []string{"Monday", "Wednesday"},
				AvailabilityTime: slotPtr(TimeMorning),
			},
			mission: Mission{
				ScheduleDays: []string{"Monday", "Wednesday"},
				ScheduleTime: slotPtr(TimeMorning),
			},
			expectedPoints: 20,
		},
		{
			name:   "member without days scores zero on the days part",
			member: MemberProfile{AvailabilityTime: slotPtr(TimeMorning)},
			mission: Mission{
				ScheduleDays: []string{"Monday"},
				ScheduleTime: slotPtr(TimeMorning),
			},
			expectedPoints: 6, // 0 days + full time credit
		},
		{
			name: "time mismatch scores zero on the time part",
			member: MemberProfile{
				AvailabilityDays: []string{"Monday"},
				AvailabilityTime: slotPtr(TimeAfternoon),
			},
			mission: Mission{
				ScheduleDays: []string{"Monday"},
				ScheduleTime: slotPtr(TimeMorning),
			},
			expectedPoints: 14,
		},
		{
			name: "unspecified member time is neutral on the time part",
			member: MemberProfile{
				AvailabilityDays: []string{"Monday"},
			},
			mission: Mission{
				ScheduleDays: []string{"Monday"},
				ScheduleTime: slotPtr(TimeMorning),
			},
			expectedPoints: 17, // 14 days + 3 neutral time
		},
		{
			name: "time-only requirement keeps full days credit",
			member: MemberProfile{
				AvailabilityTime: slotPtr(TimeMorning),
			},
			mission: Mission{
				ScheduleTime: slotPtr(TimeMorning),
			},
			expectedPoints: 20, // 14 unconstrained days + 6 time
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := engine.scoreAvailability(tt.member, tt.mission)
			assert.Equal(t, FactorAvailability, b.FactorName)
			assert.Equal(t, 20, b.MaxPoints)
			assert.Equal(t, tt.expectedPoints, b.Points)
		})
	}
}

func TestScoreAvailability_MatchedDaysKeepMissionOrder(t *testing.T) {
	engine := NewEngine()
	b := engine.scoreAvailability(
		MemberProfile{AvailabilityDays: []string{"friday", "monday"}},
		Mission{ScheduleDays: []string{"Monday", "Wednesday", "Friday"}},
	)
	assert.Equal(t, []string{"Monday", "Friday"}, b.MatchedItems)
}

// ==========================
// Personality Fit (max 15)
// ==========================

func TestScorePersonality(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name           string
		member         MemberProfile
		mission        Mission
		expectedPoints int
	}{
		{
			name:           "no preference is neutral",
			member:         MemberProfile{PersonalityType: personalityPtr(PersonalityDominant)},
			mission:        Mission{},
			expectedPoints: 8,
		},
		{
			name:           "member type unset",
			member:         MemberProfile{},
			mission:        Mission{PersonalityFit: []PersonalityType{PersonalityInfluence}},
			expectedPoints: 5,
		},
		{
			name:           "type accepted",
			member:         MemberProfile{PersonalityType: personalityPtr(PersonalityInfluence)},
			mission:        Mission{PersonalityFit: []PersonalityType{PersonalityDominant, PersonalityInfluence}},
			expectedPoints: 15,
		},
		{
			name:           "type mismatch keeps small consolation",
			member:         MemberProfile{PersonalityType: personalityPtr(PersonalityConscientious)},
			mission:        Mission{PersonalityFit: []PersonalityType{PersonalityDominant}},
			expectedPoints: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := engine.scorePersonality(tt.member, tt.mission)
			assert.Equal(t, 15, b.MaxPoints)
			assert.Equal(t, tt.expectedPoints, b.Points)
		})
	}
}

// ==========================
// Domain Interest (max 15)
// ==========================

func TestScoreDomain(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name           string
		member         MemberProfile
		mission        Mission
		expectedPoints int
	}{
		{
			name:           "no category is neutral",
			member:         MemberProfile{PreferredCommittee: "Events"},
			mission:        Mission{},
			expectedPoints: 8,
		},
		{
			name:           "no preferences set",
			member:         MemberProfile{},
			mission:        Mission{Category: "Events"},
			expectedPoints: 5,
		},
		{
			name:           "exact committee match",
			member:         MemberProfile{PreferredCommittee: "events"},
			mission:        Mission{Category: "Events"},
			expectedPoints: 15,
		},
		{
			name:           "partial committee match",
			member:         MemberProfile{PreferredCommittee: "Community Events"},
			mission:        Mission{Category: "Events"},
			expectedPoints: 8,
		},
		{
			name:           "activity type partial match",
			member:         MemberProfile{PreferredActivityType: "Fundraising"},
			mission:        Mission{Category: "Fundraising Gala"},
			expectedPoints: 8,
		},
		{
			name:           "no relation keeps minimal credit",
			member:         MemberProfile{PreferredCommittee: "Logistics"},
			mission:        Mission{Category: "Media"},
			expectedPoints: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := engine.scoreDomain(tt.member, tt.mission)
			assert.Equal(t, 15, b.MaxPoints)
			assert.Equal(t, tt.expectedPoints, b.Points)
		})
	}
}

// ==========================
// Engagement Level (max 15)
// ==========================

func TestScoreEngagement(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name           string
		points         int
		index          float64
		expectedPoints int
	}{
		{"no activity", 0, 0, 0},
		{"half points half index", 250, 25, 8}, // 5 + 2.5 rounds to 8
		{"full credit at ceilings", 500, 50, 15},
		{"above ceilings is clamped", 2000, 300, 15},
		{"points only", 500, 0, 10},
		{"index only", 0, 50, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := engine.scoreEngagement(MemberProfile{
				EngagementPoints: tt.points,
				EngagementIndex:  tt.index,
			})
			assert.Equal(t, 15, b.MaxPoints)
			assert.Equal(t, tt.expectedPoints, b.Points)
		})
	}
}

func TestScoreEngagement_ExplanationCitesRawValues(t *testing.T) {
	engine := NewEngine()
	b := engine.scoreEngagement(MemberProfile{EngagementPoints: 320, EngagementIndex: 12.5})
	assert.Contains(t, b.Explanation, "320")
	assert.Contains(t, b.Explanation, "12.5")
}

func TestScoreEngagement_Bands(t *testing.T) {
	engine := NewEngine()

	highly := engine.scoreEngagement(MemberProfile{EngagementPoints: 500, EngagementIndex: 50})
	good := engine.scoreEngagement(MemberProfile{EngagementPoints: 250, EngagementIndex: 25})
	moderate := engine.scoreEngagement(MemberProfile{EngagementPoints: 200, EngagementIndex: 0})
	low := engine.scoreEngagement(MemberProfile{EngagementPoints: 50, EngagementIndex: 0})

	assert.Contains(t, highly.Explanation, "Highly active")
	assert.Contains(t, good.Explanation, "Good activity")
	assert.Contains(t, moderate.Explanation, "Moderate activity")
	assert.Contains(t, low.Explanation, "Start participating")
}
