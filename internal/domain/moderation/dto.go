package moderation

import "time"

// CreateReportRequest represents a report submission
type CreateReportRequest struct {
	TargetType     string `json:"target_type" validate:"required,target_type"`
	TargetID       int64  `json:"target_id" validate:"required,gte=1"`
	Reason         string `json:"reason" validate:"required,report_reason"`
	Description    string `json:"description,omitempty" validate:"max=1000"`
	ReportedUserID *int64 `json:"reported_user_id,omitempty"`
}

// RecordDecisionRequest represents a moderator verdict on a report
type RecordDecisionRequest struct {
	Decision   string `json:"decision" validate:"required,decision_kind"`
	Reasoning  string `json:"reasoning" validate:"required,min=1,max=1000"`
	Appealable *bool  `json:"appealable,omitempty"`
}

// ApplyActionRequest represents a sanction to enforce
type ApplyActionRequest struct {
	Kind         string `json:"kind" validate:"required,action_kind"`
	UserID       *int64 `json:"user_id,omitempty"`
	TargetType   string `json:"target_type,omitempty"`
	TargetID     *int64 `json:"target_id,omitempty"`
	ReportID     *int64 `json:"report_id,omitempty"`
	DurationDays *int   `json:"duration_days,omitempty"`
	Reason       string `json:"reason" validate:"required,max=500"`
	Notes        string `json:"notes,omitempty" validate:"max=1000"`
}

// FileAppealRequest represents a sanctioned user's appeal
type FileAppealRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=1000"`
}

// ReviewAppealRequest represents a reviewer's verdict on an appeal
type ReviewAppealRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=approved rejected"`
	Notes   string `json:"notes,omitempty" validate:"max=1000"`
}

// QueueFilter narrows the review-queue listing
type QueueFilter struct {
	Priority   Priority
	AssignedTo *int64
	Limit      int
	Offset     int
}

// ReportFilter narrows report listings
type ReportFilter struct {
	Status     ReportStatus
	Reason     ReportReason
	ReporterID *int64
	Limit      int
	Offset     int
}

// StatusView is the externally visible moderation status for a user
type StatusView struct {
	UserID           int64      `json:"user_id"`
	IsSuspended      bool       `json:"is_suspended"`
	IsBanned         bool       `json:"is_banned"`
	SuspensionEndsAt *time.Time `json:"suspension_ends_at,omitempty"`
	WarningCount     int        `json:"warning_count"`
	CanAccess        bool       `json:"can_access"`
}

// Statistics summarizes moderation workload
type Statistics struct {
	PendingReports   int `json:"pending_reports" db:"pending_reports"`
	UnderReview      int `json:"under_review" db:"under_review"`
	ResolvedReports  int `json:"resolved_reports" db:"resolved_reports"`
	DismissedReports int `json:"dismissed_reports" db:"dismissed_reports"`
	TotalActions     int `json:"total_actions" db:"total_actions"`
	SuspendedUsers   int `json:"suspended_users" db:"suspended_users"`
	BannedUsers      int `json:"banned_users" db:"banned_users"`
	PendingAppeals   int `json:"pending_appeals" db:"pending_appeals"`
	ApprovedAppeals  int `json:"approved_appeals" db:"approved_appeals"`
}
