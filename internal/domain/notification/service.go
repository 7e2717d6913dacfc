package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
)

// Service handles notification logic. Moderation notify helpers are
// fire-and-forget: delivery failure never rolls back the moderation change.
type Service struct {
	repo Repository
}

// NewService creates notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a notification
func (s *Service) Create(ctx context.Context, userID int64, notifType Type, title, body string, data *NotificationData) (*Notification, error) {
	n := &Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks single notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// --- Moderation notify helpers (fire-and-forget) ---

// NotifyReportFiled tells moderators a new report awaits triage
func (s *Service) NotifyReportFiled(ctx context.Context, moderatorIDs []int64, reportID int64, reason string) {
	for _, id := range moderatorIDs {
		s.send(ctx, id, TypeReportFiled,
			"New content report",
			"A report for \""+reason+"\" is waiting in the moderation queue",
			&NotificationData{ReportID: &reportID},
		)
	}
}

// NotifyDecisionMade tells the reporter their report was decided
func (s *Service) NotifyDecisionMade(ctx context.Context, reporterID, reportID int64, outcome string) {
	s.send(ctx, reporterID, TypeDecisionMade,
		"Your report has been reviewed",
		"A moderator reviewed your report: "+outcome,
		&NotificationData{ReportID: &reportID},
	)
}

// NotifyActionTaken tells a sanctioned user what happened
func (s *Service) NotifyActionTaken(ctx context.Context, targetUserID, actionID int64, kind, reason string) {
	s.send(ctx, targetUserID, TypeActionTaken,
		"A moderation action affects your account",
		kind+": "+reason,
		&NotificationData{ActionID: &actionID},
	)
}

// NotifyAppealOutcome tells the appellant how their appeal was decided
func (s *Service) NotifyAppealOutcome(ctx context.Context, appellantID, appealID int64, outcome string) {
	s.send(ctx, appellantID, TypeAppealReviewed,
		"Your appeal has been reviewed",
		"Appeal "+outcome,
		&NotificationData{AppealID: &appealID},
	)
}

func (s *Service) send(ctx context.Context, userID int64, notifType Type, title, body string, data *NotificationData) {
	if _, err := s.Create(ctx, userID, notifType, title, body, data); err != nil {
		log.Error().Err(err).
			Int64("user_id", userID).
			Str("type", string(notifType)).
			Msg("Failed to create notification")
	}
}
