// internal/workers/matching/rank-missions/models.go
package rankmissions

import "volunteer-match-workers/internal/matching"

type Input struct {
	MemberID      string                  `json:"memberId"`
	MemberProfile *matching.MemberProfile `json:"memberProfile,omitempty"`
	Missions      []matching.Mission      `json:"missions"`
}

type RankedMission struct {
	MissionID  string         `json:"missionId"`
	Title      string         `json:"title"`
	MatchScore int            `json:"matchScore"`
	MatchGrade matching.Grade `json:"matchGrade"`
}

type Output struct {
	RankedMissions []RankedMission `json:"rankedMissions"`
}
