// internal/workers/engagement/record-participation/models.go
package recordparticipation

type Input struct {
	MemberID    string                 `json:"memberId"`
	MissionID   string                 `json:"missionId"`
	Role        string                 `json:"role,omitempty"`
	HoursServed float64                `json:"hoursServed"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	ParticipationID string `json:"participationId"`
	PointsAwarded   int    `json:"pointsAwarded"`
	Status          string `json:"participationStatus"`
	RecordedAt      string `json:"recordedAt"`
}
