package models

import "volunteer-match-workers/internal/matching"

// MemberRecord mirrors the members table. Specialties and availability_days
// are stored as JSONB arrays; availability_time and personality_type are
// nullable text columns.
type MemberRecord struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Specialties           []string `json:"specialties"`
	JobTitle              string   `json:"jobTitle"`
	AvailabilityDays      []string `json:"availabilityDays"`
	AvailabilityTime      *string  `json:"availabilityTime,omitempty"`
	PersonalityType       *string  `json:"personalityType,omitempty"`
	PreferredCommittee    string   `json:"preferredCommittee"`
	PreferredActivityType string   `json:"preferredActivityType"`
	EngagementPoints      int      `json:"engagementPoints"`
	EngagementIndex       float64  `json:"engagementIndex"`
}

// ToProfile converts the row into the scoring engine's profile type.
func (r MemberRecord) ToProfile() matching.MemberProfile {
	profile := matching.MemberProfile{
		ID:                    r.ID,
		Name:                  r.Name,
		Specialties:           r.Specialties,
		JobTitle:              r.JobTitle,
		AvailabilityDays:      r.AvailabilityDays,
		PreferredCommittee:    r.PreferredCommittee,
		PreferredActivityType: r.PreferredActivityType,
		EngagementPoints:      r.EngagementPoints,
		EngagementIndex:       r.EngagementIndex,
	}
	if r.AvailabilityTime != nil && *r.AvailabilityTime != "" {
		slot := matching.TimeSlot(*r.AvailabilityTime)
		profile.AvailabilityTime = &slot
	}
	if r.PersonalityType != nil && *r.PersonalityType != "" {
		pt := matching.PersonalityType(*r.PersonalityType)
		profile.PersonalityType = &pt
	}
	return profile
}
