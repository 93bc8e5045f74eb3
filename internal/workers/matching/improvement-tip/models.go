// internal/workers/matching/improvement-tip/models.go
package improvementtip

import "volunteer-match-workers/internal/matching"

// Input carries either a precomputed breakdown or the raw member and mission
// pair to score first.
type Input struct {
	ScoreBreakdown []matching.ScoreBreakdown `json:"scoreBreakdown,omitempty"`
	MemberProfile  *matching.MemberProfile   `json:"memberProfile,omitempty"`
	MissionData    *matching.Mission         `json:"missionData,omitempty"`
}

type Output struct {
	ImprovementTip string `json:"improvementTip"`
	WellOptimized  bool   `json:"wellOptimized"`
}
