// internal/workers/matching/rank-members/models.go
package rankmembers

import "volunteer-match-workers/internal/matching"

type Input struct {
	MissionID   string                   `json:"missionId"`
	MissionData *matching.Mission        `json:"missionData,omitempty"`
	Members     []matching.MemberProfile `json:"members"`
}

type RankedMember struct {
	MemberID   string         `json:"memberId"`
	Name       string         `json:"name"`
	MatchScore int            `json:"matchScore"`
	MatchGrade matching.Grade `json:"matchGrade"`
}

type Output struct {
	RankedMembers []RankedMember `json:"rankedMembers"`
}
