package notification

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("notification not found")

// Repository defines notification data access
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Notification, error)
	CountUnreadByUser(ctx context.Context, userID int64) (int, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates notification repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, body, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.db.QueryRowxContext(ctx, query,
		n.UserID,
		n.Type,
		n.Title,
		n.Body,
		n.Data,
		n.IsRead,
		n.CreatedAt,
	).Scan(&n.ID)
}

func (r *repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT * FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var items []*Notification
	err := r.db.SelectContext(ctx, &items, query, userID, limit, offset)
	return items, err
}

func (r *repository) CountUnreadByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`, userID)
	return count, err
}

func (r *repository) MarkAsRead(ctx context.Context, id, userID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true, read_at = now()
		WHERE id = $1 AND user_id = $2 AND is_read = false
	`, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarkAllAsRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true, read_at = now()
		WHERE user_id = $1 AND is_read = false
	`, userID)
	return err
}
