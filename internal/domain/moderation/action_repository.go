package moderation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ActionRepository persists sanctions and appeals. User-targeting sanctions
// mutate the status ledger in the same transaction that records the action,
// so a recorded sanction always matches the ledger.
type ActionRepository interface {
	CreateAction(ctx context.Context, a *Action) error
	ApplyUserSanction(ctx context.Context, a *Action) error
	GetActionByID(ctx context.Context, id int64) (*Action, error)
	FindRecentDuplicate(ctx context.Context, a *Action, since time.Time) (*Action, error)
	ListActionsByUser(ctx context.Context, userID int64, limit, offset int) ([]*Action, error)

	CreateAppeal(ctx context.Context, ap *Appeal) error
	GetAppealByID(ctx context.Context, id int64) (*Appeal, error)
	ListPendingAppeals(ctx context.Context, limit, offset int) ([]*Appeal, error)
	ReviewAppeal(ctx context.Context, appealID, reviewerID int64, outcome AppealStatus, notes string) (*Appeal, error)
}

type actionRepository struct {
	db *sqlx.DB
}

// NewActionRepository creates action repository
func NewActionRepository(db *sqlx.DB) ActionRepository {
	return &actionRepository{db: db}
}

// CreateAction records a content-targeting action. The ledger is untouched;
// the content store side effect has already happened by the time this runs.
func (r *actionRepository) CreateAction(ctx context.Context, a *Action) error {
	return insertAction(ctx, r.db, a)
}

// ApplyUserSanction records the action and mutates the target user's ledger
// row atomically
func (r *actionRepository) ApplyUserSanction(ctx context.Context, a *Action) error {
	if !a.UserID.Valid {
		return ErrTargetUserRequired
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertAction(ctx, tx, a); err != nil {
		return err
	}

	userID := a.UserID.Int64
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_moderation_status (user_id, created_at, updated_at)
		VALUES ($1, now(), now())
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return err
	}

	var status UserModerationStatus
	if err := tx.GetContext(ctx, &status, `
		SELECT * FROM user_moderation_status WHERE user_id = $1 FOR UPDATE
	`, userID); err != nil {
		return err
	}

	switch a.Kind {
	case ActionUserWarn:
		_, err = tx.ExecContext(ctx, `
			UPDATE user_moderation_status
			SET warning_count = warning_count + 1, updated_at = now()
			WHERE user_id = $1
		`, userID)
	case ActionUserSuspend:
		var endsAt sql.NullTime
		if a.DurationDays.Valid {
			endsAt = sql.NullTime{
				Time:  a.CreatedAt.Add(time.Duration(a.DurationDays.Int64) * 24 * time.Hour),
				Valid: true,
			}
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE user_moderation_status
			SET is_suspended = TRUE,
			    suspension_ends_at = $2,
			    suspension_reason = $3,
			    suspended_by_action_id = $4,
			    updated_at = now()
			WHERE user_id = $1
		`, userID, endsAt, a.Reason, a.ID)
	case ActionUserBan:
		_, err = tx.ExecContext(ctx, `
			UPDATE user_moderation_status
			SET is_banned = TRUE,
			    ban_reason = $2,
			    banned_by_action_id = $3,
			    updated_at = now()
			WHERE user_id = $1
		`, userID, a.Reason, a.ID)
	case ActionUserRestore:
		// Warning count survives a restore
		_, err = tx.ExecContext(ctx, `
			UPDATE user_moderation_status
			SET is_suspended = FALSE,
			    is_banned = FALSE,
			    suspension_ends_at = NULL,
			    suspension_reason = NULL,
			    ban_reason = NULL,
			    suspended_by_action_id = NULL,
			    banned_by_action_id = NULL,
			    updated_at = now()
			WHERE user_id = $1
		`, userID)
	default:
		return ErrTargetUserRequired
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *actionRepository) GetActionByID(ctx context.Context, id int64) (*Action, error) {
	query := `SELECT * FROM moderation_actions WHERE id = $1`
	var a Action
	err := r.db.GetContext(ctx, &a, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// FindRecentDuplicate looks for the same moderator applying the same kind to
// the same target since the given cutoff
func (r *actionRepository) FindRecentDuplicate(ctx context.Context, a *Action, since time.Time) (*Action, error) {
	query := `
		SELECT * FROM moderation_actions
		WHERE moderator_id = $1 AND kind = $2 AND created_at > $3
		  AND user_id IS NOT DISTINCT FROM $4
		  AND actionable_type IS NOT DISTINCT FROM $5
		  AND actionable_id IS NOT DISTINCT FROM $6
		ORDER BY created_at DESC
		LIMIT 1
	`
	var dup Action
	err := r.db.GetContext(ctx, &dup, query,
		a.ModeratorID, a.Kind, since, a.UserID, a.ActionableType, a.ActionableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &dup, nil
}

func (r *actionRepository) ListActionsByUser(ctx context.Context, userID int64, limit, offset int) ([]*Action, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT * FROM moderation_actions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var actions []*Action
	err := r.db.SelectContext(ctx, &actions, query, userID, limit, offset)
	return actions, err
}

// --- Appeals ---

func (r *actionRepository) CreateAppeal(ctx context.Context, ap *Appeal) error {
	query := `
		INSERT INTO moderation_appeals (user_id, action_id, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		ap.UserID, ap.ActionID, ap.Reason, ap.Status, ap.CreatedAt,
	).Scan(&ap.ID)
	return mapActionDBError(err)
}

func (r *actionRepository) GetAppealByID(ctx context.Context, id int64) (*Appeal, error) {
	query := `SELECT * FROM moderation_appeals WHERE id = $1`
	var ap Appeal
	err := r.db.GetContext(ctx, &ap, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ap, nil
}

func (r *actionRepository) ListPendingAppeals(ctx context.Context, limit, offset int) ([]*Appeal, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT * FROM moderation_appeals
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`
	var appeals []*Appeal
	err := r.db.SelectContext(ctx, &appeals, query, limit, offset)
	return appeals, err
}

// ReviewAppeal closes a pending appeal. On approval the underlying sanction
// is reversed in the same transaction; a sanction that a later action has
// overwritten is left alone.
func (r *actionRepository) ReviewAppeal(ctx context.Context, appealID, reviewerID int64, outcome AppealStatus, notes string) (*Appeal, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var ap Appeal
	err = tx.GetContext(ctx, &ap, `
		UPDATE moderation_appeals
		SET status = $2, reviewed_by = $3, review_notes = $4, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, appealID, outcome, reviewerID, notes)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if checkErr := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM moderation_appeals WHERE id = $1)`, appealID); checkErr != nil {
			return nil, checkErr
		}
		if !exists {
			return nil, ErrAppealNotFound
		}
		return nil, ErrAppealClosed
	}
	if err != nil {
		return nil, err
	}

	if outcome == AppealStatusApproved {
		if err := reverseSanction(ctx, tx, ap.ActionID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &ap, nil
}

func reverseSanction(ctx context.Context, tx *sqlx.Tx, actionID int64) error {
	var a Action
	err := tx.GetContext(ctx, &a, `SELECT * FROM moderation_actions WHERE id = $1`, actionID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrActionNotFound
	}
	if err != nil {
		return err
	}
	if !a.UserID.Valid {
		return ErrNotReversible
	}
	userID := a.UserID.Int64

	var status UserModerationStatus
	if err := tx.GetContext(ctx, &status, `
		SELECT * FROM user_moderation_status WHERE user_id = $1 FOR UPDATE
	`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	switch a.Kind {
	case ActionUserWarn:
		_, err = tx.ExecContext(ctx, `
			UPDATE user_moderation_status
			SET warning_count = GREATEST(warning_count - 1, 0), updated_at = now()
			WHERE user_id = $1
		`, userID)
	case ActionUserSuspend:
		// Only lift the suspension this action wrote; a newer suspension
		// from a different action stands
		_, err = tx.ExecContext(ctx, `
			UPDATE user_moderation_status
			SET is_suspended = FALSE,
			    suspension_ends_at = NULL,
			    suspension_reason = NULL,
			    suspended_by_action_id = NULL,
			    updated_at = now()
			WHERE user_id = $1 AND suspended_by_action_id = $2
		`, userID, actionID)
	case ActionUserBan:
		_, err = tx.ExecContext(ctx, `
			UPDATE user_moderation_status
			SET is_banned = FALSE,
			    ban_reason = NULL,
			    banned_by_action_id = NULL,
			    updated_at = now()
			WHERE user_id = $1 AND banned_by_action_id = $2
		`, userID, actionID)
	default:
		return ErrNotReversible
	}
	return err
}

func insertAction(ctx context.Context, q sqlx.QueryerContext, a *Action) error {
	err := sqlx.GetContext(ctx, q, &a.ID, `
		INSERT INTO moderation_actions (
			moderator_id, report_id, user_id, actionable_type, actionable_id,
			kind, reason, duration_days, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, a.ModeratorID, a.ReportID, a.UserID, a.ActionableType, a.ActionableID,
		a.Kind, a.Reason, a.DurationDays, a.Notes, a.CreatedAt)
	return mapActionDBError(err)
}

func mapActionDBError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		if pqErr.Constraint == "uq_moderation_appeals_pending" {
			return ErrAppealPendingExists
		}
	case "23503": // foreign_key_violation
		switch pqErr.Constraint {
		case "moderation_appeals_action_id_fkey":
			return ErrActionNotFound
		case "moderation_actions_report_id_fkey":
			return ErrReportNotFound
		}
	}
	return err
}
