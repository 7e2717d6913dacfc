package moderation

import (
	"database/sql"
	"time"

	"github.com/toolindex/toolindex-api/internal/domain/content"
)

// ReportReason represents the category of a report
type ReportReason string

const (
	ReasonSpam          ReportReason = "spam"
	ReasonHarassment    ReportReason = "harassment"
	ReasonHateSpeech    ReportReason = "hate_speech"
	ReasonInappropriate ReportReason = "inappropriate_content"
	ReasonMisinfo       ReportReason = "misinformation"
	ReasonCopyright     ReportReason = "copyright_violation"
	ReasonScam          ReportReason = "scam"
	ReasonViolent       ReportReason = "violent_content"
	ReasonExplicit      ReportReason = "explicit_content"
	ReasonOther         ReportReason = "other"
)

// ReportStatus represents the status of a report
type ReportStatus string

const (
	ReportStatusPending     ReportStatus = "pending"
	ReportStatusUnderReview ReportStatus = "under_review"
	ReportStatusResolved    ReportStatus = "resolved"
	ReportStatusDismissed   ReportStatus = "dismissed"
)

// IsOpen returns true while the report still awaits a terminal decision
func (s ReportStatus) IsOpen() bool {
	return s == ReportStatusPending || s == ReportStatusUnderReview
}

// TargetType identifies what a report points at: a content item or a user
type TargetType string

const (
	TargetTool    TargetType = "tool"
	TargetComment TargetType = "comment"
	TargetReview  TargetType = "review"
	TargetUser    TargetType = "user"
)

// ContentKind maps a target type onto the content store's kind. Returns
// false for user targets, which resolve through the user directory instead.
func (t TargetType) ContentKind() (content.Kind, bool) {
	switch t {
	case TargetTool:
		return content.KindTool, true
	case TargetComment:
		return content.KindComment, true
	case TargetReview:
		return content.KindReview, true
	}
	return "", false
}

// Report represents a user complaint about content or another user
type Report struct {
	ID             int64          `db:"id" json:"id"`
	ReporterID     int64          `db:"reporter_id" json:"reporter_id"`
	ReportedUserID sql.NullInt64  `db:"reported_user_id" json:"reported_user_id,omitempty"`
	TargetType     TargetType     `db:"target_type" json:"target_type"`
	TargetID       int64          `db:"target_id" json:"target_id"`
	Reason         ReportReason   `db:"reason" json:"reason"`
	Description    sql.NullString `db:"description" json:"description,omitempty"`
	Status         ReportStatus   `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Priority represents a review-queue priority band
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// QueueEntry is the triage work item wrapping one open report
type QueueEntry struct {
	ID         int64         `db:"id" json:"id"`
	ReportID   int64         `db:"report_id" json:"report_id"`
	AssignedTo sql.NullInt64 `db:"assigned_to" json:"assigned_to,omitempty"`
	Priority   Priority      `db:"priority" json:"priority"`
	AssignedAt sql.NullTime  `db:"assigned_at" json:"assigned_at,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// IsAssigned returns true if a moderator currently owns the entry
func (q *QueueEntry) IsAssigned() bool {
	return q.AssignedTo.Valid
}

// DecisionKind represents a moderator's verdict on a report
type DecisionKind string

const (
	DecisionApproveAction DecisionKind = "approve_action"
	DecisionRejectReport  DecisionKind = "reject_report"
	DecisionEscalate      DecisionKind = "escalate"
)

// Terminal returns true for verdicts that close the report
func (d DecisionKind) Terminal() bool {
	return d == DecisionApproveAction || d == DecisionRejectReport
}

// Decision records a moderator's verdict. Immutable once created.
type Decision struct {
	ID          int64        `db:"id" json:"id"`
	ReportID    int64        `db:"report_id" json:"report_id"`
	ModeratorID int64        `db:"moderator_id" json:"moderator_id"`
	Decision    DecisionKind `db:"decision" json:"decision"`
	Reasoning   string       `db:"reasoning" json:"reasoning"`
	Appealable  bool         `db:"appealable" json:"appealable"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// ActionKind represents a concrete sanction
type ActionKind string

const (
	ActionContentRemove ActionKind = "content_remove"
	ActionContentHide   ActionKind = "content_hide"
	ActionUserWarn      ActionKind = "user_warn"
	ActionUserSuspend   ActionKind = "user_suspend"
	ActionUserBan       ActionKind = "user_ban"
	ActionUserRestore   ActionKind = "user_restore"
)

// IsUserAction returns true for sanctions targeting a user account
func (k ActionKind) IsUserAction() bool {
	switch k {
	case ActionUserWarn, ActionUserSuspend, ActionUserBan, ActionUserRestore:
		return true
	}
	return false
}

// IsContentAction returns true for sanctions targeting a content item
func (k ActionKind) IsContentAction() bool {
	return k == ActionContentRemove || k == ActionContentHide
}

// Action is the immutable audit record of an enforcement step
type Action struct {
	ID             int64          `db:"id" json:"id"`
	ModeratorID    int64          `db:"moderator_id" json:"moderator_id"`
	ReportID       sql.NullInt64  `db:"report_id" json:"report_id,omitempty"`
	UserID         sql.NullInt64  `db:"user_id" json:"user_id,omitempty"`
	ActionableType sql.NullString `db:"actionable_type" json:"actionable_type,omitempty"`
	ActionableID   sql.NullInt64  `db:"actionable_id" json:"actionable_id,omitempty"`
	Kind           ActionKind     `db:"kind" json:"kind"`
	Reason         string         `db:"reason" json:"reason"`
	DurationDays   sql.NullInt64  `db:"duration_days" json:"duration_days,omitempty"`
	Notes          sql.NullString `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// IsTemporary returns true for time-bounded sanctions
func (a *Action) IsTemporary() bool {
	return a.DurationDays.Valid
}

// AppealStatus represents the state of an appeal
type AppealStatus string

const (
	AppealStatusPending  AppealStatus = "pending"
	AppealStatusApproved AppealStatus = "approved"
	AppealStatusRejected AppealStatus = "rejected"
)

// Appeal is a sanctioned user's contest of an action
type Appeal struct {
	ID          int64          `db:"id" json:"id"`
	UserID      int64          `db:"user_id" json:"user_id"`
	ActionID    int64          `db:"action_id" json:"action_id"`
	Reason      string         `db:"reason" json:"reason"`
	Status      AppealStatus   `db:"status" json:"status"`
	ReviewedBy  sql.NullInt64  `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes sql.NullString `db:"review_notes" json:"review_notes,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// UserModerationStatus is the single authoritative row answering "may this
// user act now". The suspended_by/banned_by action IDs track the last writer
// of each field so a reversal only undoes the action that set it.
type UserModerationStatus struct {
	UserID              int64          `db:"user_id" json:"user_id"`
	IsSuspended         bool           `db:"is_suspended" json:"is_suspended"`
	IsBanned            bool           `db:"is_banned" json:"is_banned"`
	SuspensionEndsAt    sql.NullTime   `db:"suspension_ends_at" json:"suspension_ends_at,omitempty"`
	WarningCount        int            `db:"warning_count" json:"warning_count"`
	SuspensionReason    sql.NullString `db:"suspension_reason" json:"suspension_reason,omitempty"`
	BanReason           sql.NullString `db:"ban_reason" json:"ban_reason,omitempty"`
	SuspendedByActionID sql.NullInt64  `db:"suspended_by_action_id" json:"-"`
	BannedByActionID    sql.NullInt64  `db:"banned_by_action_id" json:"-"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// Suspended evaluates the suspension lazily: the stored flag may be stale
// after the end date passes, so callers must use this predicate, never the
// raw flag. A null ends-at means indefinite.
func (s *UserModerationStatus) Suspended(now time.Time) bool {
	if !s.IsSuspended {
		return false
	}
	return !s.SuspensionEndsAt.Valid || s.SuspensionEndsAt.Time.After(now)
}

// CanAccess returns true if the user may act right now
func (s *UserModerationStatus) CanAccess(now time.Time) bool {
	return !s.IsBanned && !s.Suspended(now)
}
