package models

import "volunteer-match-workers/internal/matching"

// MissionRecord mirrors the missions table.
type MissionRecord struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"requiredSkills"`
	PersonalityFit []string `json:"personalityFit"`
	ScheduleDays   []string `json:"scheduleDays"`
	ScheduleTime   *string  `json:"scheduleTime,omitempty"`
	Category       string   `json:"category"`
	Status         string   `json:"status"`
}

// ToMission converts the row into the scoring engine's mission type.
func (r MissionRecord) ToMission() matching.Mission {
	mission := matching.Mission{
		ID:             r.ID,
		Title:          r.Title,
		RequiredSkills: r.RequiredSkills,
		ScheduleDays:   r.ScheduleDays,
		Category:       r.Category,
	}
	for _, p := range r.PersonalityFit {
		mission.PersonalityFit = append(mission.PersonalityFit, matching.PersonalityType(p))
	}
	if r.ScheduleTime != nil && *r.ScheduleTime != "" {
		slot := matching.TimeSlot(*r.ScheduleTime)
		mission.ScheduleTime = &slot
	}
	return mission
}
