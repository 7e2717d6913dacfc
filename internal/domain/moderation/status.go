package moderation

import (
	"context"

	"github.com/rs/zerolog/log"
)

// GetStatus returns the moderation standing for a user. A user with no
// ledger row gets a clean-standing row on first read.
func (s *Service) GetStatus(ctx context.Context, userID int64) (*StatusView, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTargetNotFound
	}

	status, err := s.loadStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.viewOf(status), nil
}

// CanAccess reports whether the user may act on the platform right now. An
// absent ledger row means clean standing; this path never writes.
func (s *Service) CanAccess(ctx context.Context, userID int64) (bool, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, userID); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("status cache read failed")
		} else if cached != nil {
			return cached.CanAccess(s.now()), nil
		}
	}

	status, err := s.statuses.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if status == nil {
		return true, nil
	}
	s.cacheStatus(ctx, status)
	return status.CanAccess(s.now()), nil
}

// ExpireSuspensions clears suspensions whose window has closed and returns
// the number of users restored. Meant to run from a periodic sweeper; reads
// stay correct without it because the predicates compare against ends-at.
func (s *Service) ExpireSuspensions(ctx context.Context) (int64, error) {
	n, err := s.statuses.ExpireSuspensions(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("users", n).Msg("expired suspensions cleared")
	}
	return n, nil
}

// GetStatistics summarizes the moderation workload
func (s *Service) GetStatistics(ctx context.Context) (*Statistics, error) {
	return s.statuses.GetStatistics(ctx)
}

func (s *Service) loadStatus(ctx context.Context, userID int64) (*UserModerationStatus, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, userID); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("status cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	status, err := s.statuses.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cacheStatus(ctx, status)
	return status, nil
}

func (s *Service) cacheStatus(ctx context.Context, status *UserModerationStatus) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, status); err != nil {
		log.Warn().Err(err).Int64("user_id", status.UserID).Msg("status cache write failed")
	}
}

func (s *Service) viewOf(status *UserModerationStatus) *StatusView {
	now := s.now()
	view := &StatusView{
		UserID:       status.UserID,
		IsSuspended:  status.Suspended(now),
		IsBanned:     status.IsBanned,
		WarningCount: status.WarningCount,
		CanAccess:    status.CanAccess(now),
	}
	if view.IsSuspended && status.SuspensionEndsAt.Valid {
		endsAt := status.SuspensionEndsAt.Time
		view.SuspensionEndsAt = &endsAt
	}
	return view
}
