package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/toolindex/toolindex-api/internal/domain/content"
)

// ApplyAction enforces a sanction. Content kinds mutate the content store
// before anything is persisted here, so a store failure leaves no action
// record behind. User kinds write the action and the status ledger in one
// transaction. May be called without a report for ad-hoc moderation.
func (s *Service) ApplyAction(ctx context.Context, moderatorID int64, req *ApplyActionRequest) (*Action, error) {
	kind := ActionKind(req.Kind)
	now := s.now().UTC()

	action := &Action{
		ModeratorID: moderatorID,
		ReportID:    nullInt64(req.ReportID),
		UserID:      nullInt64(req.UserID),
		Kind:        kind,
		Reason:      req.Reason,
		Notes:       nullString(req.Notes),
		CreatedAt:   now,
	}

	var contentKind content.Kind
	switch {
	case kind.IsContentAction():
		if req.TargetType == "" || req.TargetID == nil {
			return nil, ErrActionableRequired
		}
		ck, ok := TargetType(req.TargetType).ContentKind()
		if !ok {
			return nil, ErrActionableRequired
		}
		contentKind = ck
		action.ActionableType = sql.NullString{String: req.TargetType, Valid: true}
		action.ActionableID = sql.NullInt64{Int64: *req.TargetID, Valid: true}

	case kind.IsUserAction():
		if req.UserID == nil {
			return nil, ErrTargetUserRequired
		}
		exists, err := s.users.Exists(ctx, *req.UserID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrTargetNotFound
		}
		if kind == ActionUserSuspend {
			if req.DurationDays != nil {
				if *req.DurationDays <= 0 {
					return nil, ErrInvalidDuration
				}
				action.DurationDays = sql.NullInt64{Int64: int64(*req.DurationDays), Valid: true}
			}
			// nil duration means an indefinite suspension
		}

	default:
		return nil, fmt.Errorf("unknown action kind: %s", req.Kind)
	}

	if req.ReportID != nil {
		if _, err := s.GetReport(ctx, *req.ReportID); err != nil {
			return nil, err
		}
	}

	dup, err := s.actions.FindRecentDuplicate(ctx, action, now.Add(-duplicateActionWindow))
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, ErrDuplicateAction
	}

	if kind.IsContentAction() {
		var storeErr error
		switch kind {
		case ActionContentRemove:
			storeErr = s.content.Remove(ctx, contentKind, *req.TargetID)
		case ActionContentHide:
			storeErr = s.content.Hide(ctx, contentKind, *req.TargetID)
		}
		if storeErr != nil {
			if errors.Is(storeErr, content.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, fmt.Errorf("%w: %v", ErrContentStoreFailed, storeErr)
		}
		if err := s.actions.CreateAction(ctx, action); err != nil {
			return nil, err
		}
	} else {
		if err := s.actions.ApplyUserSanction(ctx, action); err != nil {
			return nil, err
		}
		s.invalidateStatus(ctx, action.UserID.Int64)
	}

	s.activity.Record(ctx, moderatorID, "action.applied", "action", action.ID, map[string]interface{}{
		"kind":      kind,
		"user_id":   req.UserID,
		"target_id": req.TargetID,
	})
	if action.UserID.Valid {
		s.notifier.NotifyActionTaken(ctx, action.UserID.Int64, action.ID, string(kind), action.Reason)
	}

	return action, nil
}

// GetAction returns an action by id
func (s *Service) GetAction(ctx context.Context, id int64) (*Action, error) {
	action, err := s.actions.GetActionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, ErrActionNotFound
	}
	return action, nil
}

// ListUserActions returns the sanctions taken against a user, newest first
func (s *Service) ListUserActions(ctx context.Context, userID int64, limit, offset int) ([]*Action, error) {
	return s.actions.ListActionsByUser(ctx, userID, limit, offset)
}

func (s *Service) invalidateStatus(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("failed to invalidate status cache")
	}
}
