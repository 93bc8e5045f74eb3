// internal/workers/communication/match-notify/models.go
package matchnotify

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"` // "member" or "organizer"
	NotificationType string                 `json:"notificationType"`
	MissionID        string                 `json:"missionId,omitempty"`
	MissionTitle     string                 `json:"missionTitle,omitempty"`
	MatchScore       int                    `json:"matchScore,omitempty"`
	MatchGrade       string                 `json:"matchGrade,omitempty"`
	ImprovementTip   string                 `json:"improvementTip,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeMatchFound      = "match_found"
	TypeMissionAssigned = "mission_assigned"
	TypeMissionReminder = "mission_reminder"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Recipient types
const (
	RecipientTypeMember    = "member"
	RecipientTypeOrganizer = "organizer"
)
