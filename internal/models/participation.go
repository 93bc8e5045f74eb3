package models

// Participation statuses.
const (
	ParticipationStatusRecorded  = "recorded"
	ParticipationStatusCancelled = "cancelled"
)

// ParticipationRecord mirrors the participations table.
type ParticipationRecord struct {
	ID            string  `json:"id"`
	MemberID      string  `json:"memberId"`
	MissionID     string  `json:"missionId"`
	Role          string  `json:"role"`
	HoursServed   float64 `json:"hoursServed"`
	PointsAwarded int     `json:"pointsAwarded"`
	Status        string  `json:"status"`
	RecordedAt    string  `json:"recordedAt"`
}
