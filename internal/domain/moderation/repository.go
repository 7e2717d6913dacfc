package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines data access for reports, the review queue, and
// decisions. Multi-row state transitions run inside one transaction so a
// decision can never exist while its report is still open, and vice versa.
type Repository interface {
	// Reports
	CreateReport(ctx context.Context, r *Report) error
	GetReportByID(ctx context.Context, id int64) (*Report, error)
	FindOpenDuplicate(ctx context.Context, reporterID int64, targetType TargetType, targetID int64, reason ReportReason) (*Report, error)
	ListReports(ctx context.Context, filter *ReportFilter) ([]*Report, error)

	// Queue
	CreateQueueEntry(ctx context.Context, e *QueueEntry) error
	GetQueueEntryByID(ctx context.Context, id int64) (*QueueEntry, error)
	GetQueueEntryByReportID(ctx context.Context, reportID int64) (*QueueEntry, error)
	ListQueue(ctx context.Context, filter *QueueFilter) ([]*QueueEntry, error)
	AssignEntry(ctx context.Context, entryID, moderatorID int64) error
	UnassignEntry(ctx context.Context, entryID int64) error

	// Decisions
	GetTerminalDecisionByReportID(ctx context.Context, reportID int64) (*Decision, error)
	CreateTerminalDecision(ctx context.Context, d *Decision, status ReportStatus) error
	CreateEscalateDecision(ctx context.Context, d *Decision) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates moderation repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// --- Reports ---

func (r *repository) CreateReport(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO content_reports (
			reporter_id, reported_user_id, target_type, target_id,
			reason, description, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		report.ReporterID,
		report.ReportedUserID,
		report.TargetType,
		report.TargetID,
		report.Reason,
		report.Description,
		report.Status,
		report.CreatedAt,
	).Scan(&report.ID)
	return mapReportDBError(err)
}

func (r *repository) GetReportByID(ctx context.Context, id int64) (*Report, error) {
	query := `SELECT * FROM content_reports WHERE id = $1`
	var report Report
	err := r.db.GetContext(ctx, &report, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *repository) FindOpenDuplicate(ctx context.Context, reporterID int64, targetType TargetType, targetID int64, reason ReportReason) (*Report, error) {
	query := `
		SELECT * FROM content_reports
		WHERE reporter_id = $1 AND target_type = $2 AND target_id = $3
		  AND reason = $4 AND status IN ('pending', 'under_review')
		ORDER BY created_at ASC
		LIMIT 1
	`
	var report Report
	err := r.db.GetContext(ctx, &report, query, reporterID, targetType, targetID, reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *repository) ListReports(ctx context.Context, filter *ReportFilter) ([]*Report, error) {
	query := `SELECT * FROM content_reports WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter != nil {
		if filter.Status != "" {
			query += fmt.Sprintf(` AND status = $%d`, argPos)
			args = append(args, filter.Status)
			argPos++
		}
		if filter.Reason != "" {
			query += fmt.Sprintf(` AND reason = $%d`, argPos)
			args = append(args, filter.Reason)
			argPos++
		}
		if filter.ReporterID != nil {
			query += fmt.Sprintf(` AND reporter_id = $%d`, argPos)
			args = append(args, *filter.ReporterID)
			argPos++
		}
	}

	query += ` ORDER BY created_at DESC`

	limit := 50
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}
	query += fmt.Sprintf(` LIMIT $%d`, argPos)
	args = append(args, limit)
	argPos++

	if filter != nil && filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argPos)
		args = append(args, filter.Offset)
	}

	var reports []*Report
	err := r.db.SelectContext(ctx, &reports, query, args...)
	return reports, err
}

// --- Queue ---

func (r *repository) CreateQueueEntry(ctx context.Context, e *QueueEntry) error {
	query := `
		INSERT INTO moderation_queue (report_id, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query, e.ReportID, e.Priority, e.CreatedAt).Scan(&e.ID)
	return mapReportDBError(err)
}

func (r *repository) GetQueueEntryByID(ctx context.Context, id int64) (*QueueEntry, error) {
	query := `SELECT * FROM moderation_queue WHERE id = $1`
	var e QueueEntry
	err := r.db.GetContext(ctx, &e, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) GetQueueEntryByReportID(ctx context.Context, reportID int64) (*QueueEntry, error) {
	query := `SELECT * FROM moderation_queue WHERE report_id = $1`
	var e QueueEntry
	err := r.db.GetContext(ctx, &e, query, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// ListQueue orders urgent > high > medium > low, oldest first within a band
func (r *repository) ListQueue(ctx context.Context, filter *QueueFilter) ([]*QueueEntry, error) {
	query := `SELECT * FROM moderation_queue WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter != nil {
		if filter.Priority != "" {
			query += fmt.Sprintf(` AND priority = $%d`, argPos)
			args = append(args, filter.Priority)
			argPos++
		}
		if filter.AssignedTo != nil {
			query += fmt.Sprintf(` AND assigned_to = $%d`, argPos)
			args = append(args, *filter.AssignedTo)
			argPos++
		}
	}

	query += `
		ORDER BY CASE priority
			WHEN 'urgent' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			ELSE 3
		END, created_at ASC
	`

	limit := 50
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}
	query += fmt.Sprintf(` LIMIT $%d`, argPos)
	args = append(args, limit)
	argPos++

	if filter != nil && filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argPos)
		args = append(args, filter.Offset)
	}

	var entries []*QueueEntry
	err := r.db.SelectContext(ctx, &entries, query, args...)
	return entries, err
}

// AssignEntry atomically claims an unassigned entry and moves its report to
// under_review. A concurrent claimer loses with ErrAlreadyAssigned.
func (r *repository) AssignEntry(ctx context.Context, entryID, moderatorID int64) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var reportID int64
	err = tx.GetContext(ctx, &reportID, `
		UPDATE moderation_queue
		SET assigned_to = $2, assigned_at = now(), updated_at = now()
		WHERE id = $1 AND assigned_to IS NULL
		RETURNING report_id
	`, entryID, moderatorID)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing entry from a lost claim race
		var exists bool
		if checkErr := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM moderation_queue WHERE id = $1)`, entryID); checkErr != nil {
			return checkErr
		}
		if !exists {
			return ErrQueueEntryNotFound
		}
		return ErrAlreadyAssigned
	}
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE content_reports SET status = 'under_review', updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, reportID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReportNotPending
	}

	return tx.Commit()
}

// UnassignEntry releases the entry back to the pool and reverts its report
// to pending
func (r *repository) UnassignEntry(ctx context.Context, entryID int64) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var reportID int64
	err = tx.GetContext(ctx, &reportID, `
		UPDATE moderation_queue
		SET assigned_to = NULL, assigned_at = NULL, updated_at = now()
		WHERE id = $1
		RETURNING report_id
	`, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrQueueEntryNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE content_reports SET status = 'pending', updated_at = now()
		WHERE id = $1 AND status = 'under_review'
	`, reportID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// --- Decisions ---

func (r *repository) GetTerminalDecisionByReportID(ctx context.Context, reportID int64) (*Decision, error) {
	query := `SELECT * FROM moderation_decisions WHERE report_id = $1 AND decision != 'escalate' LIMIT 1`
	var d Decision
	err := r.db.GetContext(ctx, &d, query, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// CreateTerminalDecision records an approve/reject verdict, closes the
// report, and removes its queue entry in one atomic unit
func (r *repository) CreateTerminalDecision(ctx context.Context, d *Decision, status ReportStatus) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockReportUnderReview(ctx, tx, d.ReportID); err != nil {
		return err
	}

	if err := insertDecision(ctx, tx, d); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE content_reports SET status = $2, updated_at = now() WHERE id = $1
	`, d.ReportID, status); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM moderation_queue WHERE report_id = $1
	`, d.ReportID); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateEscalateDecision records an escalate verdict, bumps the queue entry
// one band, unassigns it, and returns the report to the pending pool
func (r *repository) CreateEscalateDecision(ctx context.Context, d *Decision) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockReportUnderReview(ctx, tx, d.ReportID); err != nil {
		return err
	}

	if err := insertDecision(ctx, tx, d); err != nil {
		return err
	}

	var priority Priority
	err = tx.GetContext(ctx, &priority, `
		SELECT priority FROM moderation_queue WHERE report_id = $1 FOR UPDATE
	`, d.ReportID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrQueueEntryNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE moderation_queue
		SET priority = $2, assigned_to = NULL, assigned_at = NULL, updated_at = now()
		WHERE report_id = $1
	`, d.ReportID, priority.Bump()); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE content_reports SET status = 'pending', updated_at = now() WHERE id = $1
	`, d.ReportID); err != nil {
		return err
	}

	return tx.Commit()
}

func lockReportUnderReview(ctx context.Context, tx *sqlx.Tx, reportID int64) error {
	var status ReportStatus
	err := tx.GetContext(ctx, &status, `SELECT status FROM content_reports WHERE id = $1 FOR UPDATE`, reportID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReportNotFound
	}
	if err != nil {
		return err
	}
	if status != ReportStatusUnderReview {
		return ErrReportNotUnderReview
	}
	return nil
}

func insertDecision(ctx context.Context, tx *sqlx.Tx, d *Decision) error {
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO moderation_decisions (report_id, moderator_id, decision, reasoning, appealable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, d.ReportID, d.ModeratorID, d.Decision, d.Reasoning, d.Appealable, d.CreatedAt).Scan(&d.ID)
	return mapReportDBError(err)
}

// mapReportDBError translates constraint violations into domain sentinels
func mapReportDBError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case "uq_moderation_queue_report":
			return ErrAlreadyQueued
		case "uq_moderation_decisions_terminal":
			return ErrDecisionExists
		}
	case "23503": // foreign_key_violation
		switch pqErr.Constraint {
		case "moderation_queue_report_id_fkey", "moderation_decisions_report_id_fkey":
			return ErrReportNotFound
		}
	}
	return err
}
