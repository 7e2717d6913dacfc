package moderation

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toolindex/toolindex-api/internal/domain/content"
)

// An identical action re-applied inside this window is treated as a
// double-click and rejected.
const duplicateActionWindow = time.Minute

// UserDirectory is the slice of the user domain the engine needs
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
	ListModeratorIDs(ctx context.Context) ([]int64, error)
}

// Notifier delivers fire-and-forget notifications. Implementations must not
// return errors into the moderation flow.
type Notifier interface {
	NotifyReportFiled(ctx context.Context, moderatorIDs []int64, reportID int64, reason string)
	NotifyDecisionMade(ctx context.Context, reporterID, reportID int64, outcome string)
	NotifyActionTaken(ctx context.Context, targetUserID, actionID int64, kind, reason string)
	NotifyAppealOutcome(ctx context.Context, appellantID, appealID int64, outcome string)
}

// ActivityLogger appends audit entries; failures are swallowed by the
// implementation
type ActivityLogger interface {
	Record(ctx context.Context, actorID int64, action, entityType string, entityID int64, meta interface{})
}

// Service implements the moderation workflow: intake, queueing, decisions,
// sanctions, appeals, and the status ledger
type Service struct {
	repo     Repository
	actions  ActionRepository
	statuses StatusRepository
	content  content.Store
	users    UserDirectory
	notifier Notifier
	activity ActivityLogger
	cache    StatusCache

	now func() time.Time
}

// NewService creates moderation service
func NewService(
	repo Repository,
	actions ActionRepository,
	statuses StatusRepository,
	contentStore content.Store,
	users UserDirectory,
	notifier Notifier,
	activity ActivityLogger,
	cache StatusCache,
) *Service {
	return &Service{
		repo:     repo,
		actions:  actions,
		statuses: statuses,
		content:  contentStore,
		users:    users,
		notifier: notifier,
		activity: activity,
		cache:    cache,
		now:      time.Now,
	}
}

// FileReport records a report against content or a user. Resubmitting while
// an identical report is still open returns the open report instead of
// creating a second one; created reports false in that case.
func (s *Service) FileReport(ctx context.Context, reporterID int64, req *CreateReportRequest) (*Report, bool, error) {
	targetType := TargetType(req.TargetType)
	reason := ReportReason(req.Reason)

	reportedUserID := sql.NullInt64{}
	if kind, ok := targetType.ContentKind(); ok {
		exists, err := s.content.Exists(ctx, kind, req.TargetID)
		if err != nil {
			return nil, false, err
		}
		if !exists {
			return nil, false, ErrTargetNotFound
		}
		if req.ReportedUserID != nil {
			if *req.ReportedUserID == reporterID {
				return nil, false, ErrSelfReport
			}
			ok, err := s.users.Exists(ctx, *req.ReportedUserID)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, ErrReportedUserNotFound
			}
			reportedUserID = sql.NullInt64{Int64: *req.ReportedUserID, Valid: true}
		}
	} else if targetType == TargetUser {
		if req.TargetID == reporterID {
			return nil, false, ErrSelfReport
		}
		exists, err := s.users.Exists(ctx, req.TargetID)
		if err != nil {
			return nil, false, err
		}
		if !exists {
			return nil, false, ErrTargetNotFound
		}
		reportedUserID = sql.NullInt64{Int64: req.TargetID, Valid: true}
	} else {
		return nil, false, ErrUnknownTargetType
	}

	if existing, err := s.repo.FindOpenDuplicate(ctx, reporterID, targetType, req.TargetID, reason); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, false, nil
	}

	now := s.now().UTC()
	report := &Report{
		ReporterID:     reporterID,
		ReportedUserID: reportedUserID,
		TargetType:     targetType,
		TargetID:       req.TargetID,
		Reason:         reason,
		Description:    nullString(req.Description),
		Status:         ReportStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, false, err
	}

	s.activity.Record(ctx, reporterID, "report.filed", "report", report.ID, map[string]interface{}{
		"target_type": targetType,
		"target_id":   req.TargetID,
		"reason":      reason,
	})

	if moderatorIDs, err := s.users.ListModeratorIDs(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to resolve moderators for report notification")
	} else {
		s.notifier.NotifyReportFiled(ctx, moderatorIDs, report.ID, string(reason))
	}

	return report, true, nil
}

// GetReport returns a report by id
func (s *Service) GetReport(ctx context.Context, id int64) (*Report, error) {
	report, err := s.repo.GetReportByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// ListReports returns reports matching the filter
func (s *Service) ListReports(ctx context.Context, filter *ReportFilter) ([]*Report, error) {
	return s.repo.ListReports(ctx, filter)
}

// Enqueue places a pending report into the review queue at the priority its
// reason maps to. A report already queued is left where it is.
func (s *Service) Enqueue(ctx context.Context, reportID int64) (*QueueEntry, error) {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != ReportStatusPending {
		return nil, ErrReportNotPending
	}

	entry := &QueueEntry{
		ReportID:  reportID,
		Priority:  PriorityForReason(report.Reason),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateQueueEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListQueue returns queue entries ordered urgent first, oldest first within
// a band
func (s *Service) ListQueue(ctx context.Context, filter *QueueFilter) ([]*QueueEntry, error) {
	return s.repo.ListQueue(ctx, filter)
}

// Assign claims a queue entry for a moderator and moves its report under
// review. Exactly one of two concurrent claimers wins.
func (s *Service) Assign(ctx context.Context, entryID, moderatorID int64) (*QueueEntry, error) {
	if err := s.repo.AssignEntry(ctx, entryID, moderatorID); err != nil {
		return nil, err
	}
	entry, err := s.repo.GetQueueEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrQueueEntryNotFound
	}

	s.activity.Record(ctx, moderatorID, "queue.assigned", "queue_entry", entryID, map[string]interface{}{
		"report_id": entry.ReportID,
	})
	return entry, nil
}

// Unassign releases a claimed entry back to the pool and reverts its report
// to pending
func (s *Service) Unassign(ctx context.Context, entryID, moderatorID int64) error {
	if err := s.repo.UnassignEntry(ctx, entryID); err != nil {
		return err
	}
	s.activity.Record(ctx, moderatorID, "queue.unassigned", "queue_entry", entryID, nil)
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
