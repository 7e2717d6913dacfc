package moderation

import (
	"context"
)

// FileAppeal opens an appeal against a sanction. Only the sanctioned user
// may appeal, restores are not appealable, and an action whose originating
// decision was marked non-appealable is closed to appeal.
func (s *Service) FileAppeal(ctx context.Context, userID, actionID int64, req *FileAppealRequest) (*Appeal, error) {
	action, err := s.GetAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if !action.UserID.Valid || action.UserID.Int64 != userID {
		return nil, ErrNotActionTarget
	}
	if !action.Kind.IsUserAction() || action.Kind == ActionUserRestore {
		return nil, ErrNotAppealable
	}
	if action.ReportID.Valid {
		decision, err := s.repo.GetTerminalDecisionByReportID(ctx, action.ReportID.Int64)
		if err != nil {
			return nil, err
		}
		if decision != nil && !decision.Appealable {
			return nil, ErrNotAppealable
		}
	}

	appeal := &Appeal{
		UserID:    userID,
		ActionID:  actionID,
		Reason:    req.Reason,
		Status:    AppealStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.actions.CreateAppeal(ctx, appeal); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, "appeal.filed", "appeal", appeal.ID, map[string]interface{}{
		"action_id": actionID,
	})
	return appeal, nil
}

// ReviewAppeal closes a pending appeal one-shot. Approval reverses the
// sanction and lifts the user's restriction; rejection leaves the ledger
// untouched.
func (s *Service) ReviewAppeal(ctx context.Context, reviewerID, appealID int64, req *ReviewAppealRequest) (*Appeal, error) {
	outcome := AppealStatus(req.Outcome)

	appeal, err := s.actions.ReviewAppeal(ctx, appealID, reviewerID, outcome, req.Notes)
	if err != nil {
		return nil, err
	}

	if outcome == AppealStatusApproved {
		s.invalidateStatus(ctx, appeal.UserID)
	}

	s.activity.Record(ctx, reviewerID, "appeal.reviewed", "appeal", appealID, map[string]interface{}{
		"outcome": outcome,
	})
	s.notifier.NotifyAppealOutcome(ctx, appeal.UserID, appealID, string(outcome))

	return appeal, nil
}

// GetAppeal returns an appeal by id
func (s *Service) GetAppeal(ctx context.Context, id int64) (*Appeal, error) {
	appeal, err := s.actions.GetAppealByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appeal == nil {
		return nil, ErrAppealNotFound
	}
	return appeal, nil
}

// ListPendingAppeals returns open appeals oldest first
func (s *Service) ListPendingAppeals(ctx context.Context, limit, offset int) ([]*Appeal, error) {
	return s.actions.ListPendingAppeals(ctx, limit, offset)
}
