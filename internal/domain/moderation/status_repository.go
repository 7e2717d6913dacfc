package moderation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// StatusRepository reads and sweeps the per-user moderation status ledger.
// Sanction writes go through ActionRepository so the action record and the
// ledger mutation share one transaction.
type StatusRepository interface {
	Get(ctx context.Context, userID int64) (*UserModerationStatus, error)
	GetOrCreate(ctx context.Context, userID int64) (*UserModerationStatus, error)
	ExpireSuspensions(ctx context.Context, now time.Time) (int64, error)
	GetStatistics(ctx context.Context) (*Statistics, error)
}

type statusRepository struct {
	db *sqlx.DB
}

// NewStatusRepository creates status repository
func NewStatusRepository(db *sqlx.DB) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) Get(ctx context.Context, userID int64) (*UserModerationStatus, error) {
	query := `SELECT * FROM user_moderation_status WHERE user_id = $1`
	var status UserModerationStatus
	err := r.db.GetContext(ctx, &status, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

// GetOrCreate returns the ledger row for a user, inserting a clean-standing
// row on first contact
func (r *statusRepository) GetOrCreate(ctx context.Context, userID int64) (*UserModerationStatus, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_moderation_status (user_id, created_at, updated_at)
		VALUES ($1, now(), now())
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

// ExpireSuspensions clears every suspension whose window has closed and
// returns how many rows it touched
func (r *statusRepository) ExpireSuspensions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE user_moderation_status
		SET is_suspended = FALSE,
		    suspension_ends_at = NULL,
		    suspension_reason = NULL,
		    suspended_by_action_id = NULL,
		    updated_at = now()
		WHERE is_suspended = TRUE AND suspension_ends_at IS NOT NULL AND suspension_ends_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *statusRepository) GetStatistics(ctx context.Context) (*Statistics, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM content_reports WHERE status = 'pending')      AS pending_reports,
			(SELECT COUNT(*) FROM content_reports WHERE status = 'under_review') AS under_review,
			(SELECT COUNT(*) FROM content_reports WHERE status = 'resolved')     AS resolved_reports,
			(SELECT COUNT(*) FROM content_reports WHERE status = 'dismissed')    AS dismissed_reports,
			(SELECT COUNT(*) FROM moderation_actions)                            AS total_actions,
			(SELECT COUNT(*) FROM user_moderation_status WHERE is_suspended)     AS suspended_users,
			(SELECT COUNT(*) FROM user_moderation_status WHERE is_banned)        AS banned_users,
			(SELECT COUNT(*) FROM moderation_appeals WHERE status = 'pending')   AS pending_appeals,
			(SELECT COUNT(*) FROM moderation_appeals WHERE status = 'approved')  AS approved_appeals
	`
	var stats Statistics
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}
