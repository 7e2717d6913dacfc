package notification

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Type represents notification type
type Type string

const (
	TypeReportFiled    Type = "report_filed"    // Moderators: new report awaits triage
	TypeDecisionMade   Type = "decision_made"   // Reporter: verdict on their report
	TypeActionTaken    Type = "action_taken"    // Sanctioned user: action against them
	TypeAppealReviewed Type = "appeal_reviewed" // Appellant: appeal outcome
)

// Notification represents an in-app notification
type Notification struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      sql.NullString  `db:"body" json:"body,omitempty"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Data payload linking a notification to moderation entities
type NotificationData struct {
	ReportID *int64 `json:"report_id,omitempty"`
	ActionID *int64 `json:"action_id,omitempty"`
	AppealID *int64 `json:"appeal_id,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *NotificationData) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}
