package moderation

import "errors"

var (
	// Report intake
	ErrSelfReport           = errors.New("cannot report yourself")
	ErrUnknownTargetType    = errors.New("unknown report target type")
	ErrTargetNotFound       = errors.New("report target not found")
	ErrReportedUserNotFound = errors.New("reported user not found")
	ErrReportNotFound       = errors.New("report not found")

	// Review queue
	ErrReportNotPending   = errors.New("report is not pending")
	ErrAlreadyQueued      = errors.New("report is already queued")
	ErrQueueEntryNotFound = errors.New("queue entry not found")
	ErrAlreadyAssigned    = errors.New("queue entry is already assigned")

	// Decision recording
	ErrReportNotUnderReview = errors.New("report is not under review")
	ErrDecisionExists       = errors.New("report already has a decision")
	ErrReasoningRequired    = errors.New("decision reasoning is required")

	// Sanction enforcement
	ErrActionNotFound     = errors.New("moderation action not found")
	ErrActionableRequired = errors.New("content action requires a content reference")
	ErrTargetUserRequired = errors.New("user action requires a target user")
	ErrInvalidDuration    = errors.New("suspension duration must be positive or omitted")
	ErrDuplicateAction    = errors.New("identical action was just applied")
	ErrContentStoreFailed = errors.New("content store operation failed")

	// Appeals
	ErrAppealNotFound      = errors.New("appeal not found")
	ErrNotActionTarget     = errors.New("only the sanctioned user may appeal")
	ErrNotAppealable       = errors.New("this action cannot be appealed")
	ErrAppealPendingExists = errors.New("a pending appeal already exists for this action")
	ErrAppealClosed        = errors.New("appeal has already been reviewed")
	ErrNotReversible       = errors.New("action kind cannot be reversed")
)
