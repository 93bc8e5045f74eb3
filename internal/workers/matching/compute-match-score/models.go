// internal/workers/matching/compute-match-score/models.go
package computematchscore

import "volunteer-match-workers/internal/matching"

type Input struct {
	MemberID      string                  `json:"memberId"`
	MissionID     string                  `json:"missionId"`
	MemberProfile *matching.MemberProfile `json:"memberProfile,omitempty"`
	MissionData   *matching.Mission       `json:"missionData,omitempty"`
}

type Output struct {
	MatchScore     int                       `json:"matchScore"`
	MatchGrade     matching.Grade            `json:"matchGrade"`
	ScoreBreakdown []matching.ScoreBreakdown `json:"scoreBreakdown"`
	ImprovementTip string                    `json:"improvementTip"`
}
